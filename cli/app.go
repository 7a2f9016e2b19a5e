// Package cli contains the openspace command line, which plans scenarios read from JSON files.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"go.viam.com/openspace/logging"
)

const (
	generalFlagDebug   = "debug"
	generalFlagLogFile = "log-file"

	planFlagScenario = "scenario"
	planFlagConfig   = "config"
	planFlagFormat   = "format"

	renderFlagOut     = "out"
	renderFlagScale   = "scale"
	renderFlagProfile = "profile"

	formatTable = "table"
	formatJSON  = "json"
)

var scenarioFlag = &cli.PathFlag{
	Name:     planFlagScenario,
	Aliases:  []string{"s"},
	Required: true,
	Usage:    "read the planning problem from `FILE`",
}

var configFlag = &cli.PathFlag{
	Name:    planFlagConfig,
	Aliases: []string{"c"},
	Usage:   "override planner attributes with the JSON object in `FILE`",
}

var app = &cli.App{
	Name:            "openspace",
	Usage:           "plan car-like vehicle trajectories in open space",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    generalFlagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.PathFlag{
			Name:  generalFlagLogFile,
			Usage: "also write debug logs as JSON to `FILE`, rotated at 10MB",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "plan",
			Usage:     "plan a trajectory for a scenario",
			UsageText: "openspace plan --scenario <file> [--config <file>] [--format table|json]",
			Flags: []cli.Flag{
				scenarioFlag,
				configFlag,
				&cli.StringFlag{
					Name:    planFlagFormat,
					Aliases: []string{"f"},
					Value:   formatTable,
					Usage:   "print the trajectory as table or json",
				},
			},
			Action: PlanAction,
		},
		{
			Name:      "render",
			Usage:     "plan a scenario and draw it to a PNG image",
			UsageText: "openspace render --scenario <file> --out <file.png>",
			Flags: []cli.Flag{
				scenarioFlag,
				configFlag,
				&cli.PathFlag{
					Name:     renderFlagOut,
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "write the image to `FILE`",
				},
				&cli.Float64Flag{
					Name:  renderFlagScale,
					Value: defaultPixelsPerMeter,
					Usage: "pixels per meter",
				},
				&cli.PathFlag{
					Name:  renderFlagProfile,
					Usage: "also plot speed, acceleration and steering over distance to `FILE`",
				},
			},
			Action: RenderAction,
		},
		{
			Name:      "batch",
			Usage:     "plan several scenarios concurrently and print a summary of each",
			UsageText: "openspace batch [--workers <n>] <file> [<file>...]",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    batchFlagWorkers,
					Aliases: []string{"w"},
					Usage:   "plan at most `N` scenarios at once, defaults to the number of CPUs",
				},
			},
			Action: BatchAction,
		},
		{
			Name:   "schema",
			Usage:  "print the JSON schema of scenario files",
			Action: SchemaAction,
		},
		{
			Name:   "defaults",
			Usage:  "print the default planner config and vehicle parameters as JSON",
			Action: DefaultsAction,
		},
	},
}

// NewApp returns the app with its output writers set.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}

func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, color.YellowString("Warning: ")+format+"\n", a...)
}

// newLogger logs to the app's error writer, so that the plan output stays machine readable, and
// to the log file if one is given. The logger is at info level; the planner's debug records are
// switched on per plan by planContext.
func newLogger(c *cli.Context) logging.Logger {
	cfg := logging.NewLoggerConfig()
	var cores []zapcore.Core
	if c.Bool(generalFlagDebug) {
		encoder := zapcore.NewConsoleEncoder(cfg.EncoderConfig)
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(c.App.ErrWriter), logging.DEBUG.AsZap()))
	}
	if path := c.Path(generalFlagLogFile); path != "" {
		file := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10,
			MaxBackups: 2,
		}
		fileConfig := cfg.EncoderConfig
		fileConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileConfig), zapcore.AddSync(file), logging.DEBUG.AsZap()))
	}
	if len(cores) == 0 {
		return logging.NewBlankLogger("openspace")
	}
	return logging.NewLoggerFromCore("openspace", logging.INFO, zapcore.NewTee(cores...))
}

// planContext returns the command's context, in debug mode if debug output was requested.
func planContext(c *cli.Context) context.Context {
	if c.Bool(generalFlagDebug) || c.Path(generalFlagLogFile) != "" {
		return logging.EnableDebugMode(c.Context, "plan")
	}
	return c.Context
}
