package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"go.viam.com/openspace/logging"
)

const batchFlagWorkers = "workers"

// BatchResult is the outcome of planning one scenario file.
type BatchResult struct {
	Path    string
	Summary Summary
	Err     error
}

// PlanBatch plans every scenario file with its own planner, running at most workers plans at once.
// Results are in the order of paths. Planning failures are reported per result; only a cancelled
// context fails the whole batch.
func PlanBatch(ctx context.Context, paths []string, workers int, logger logging.Logger) ([]BatchResult, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]BatchResult, len(paths))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		group.Go(func() error {
			results[i] = planFile(ctx, path, logger.Sublogger(filepath.Base(path)))
			return ctx.Err()
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func planFile(ctx context.Context, path string, logger logging.Logger) BatchResult {
	result := BatchResult{Path: path}
	scenario, err := LoadScenario(path)
	if err != nil {
		result.Err = err
		return result
	}
	planner, err := scenario.NewPlanner(nil, logger)
	if err != nil {
		result.Err = err
		return result
	}
	traj, err := planner.Plan(ctx, scenario.Start, scenario.Goal, scenario.Bounds, scenario.Obstacles)
	if err != nil {
		result.Err = err
		return result
	}
	result.Summary = Summarize(traj, planner.Stats())
	return result
}

// BatchAction plans every scenario given as argument and prints one row per scenario.
func BatchAction(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return errors.New("no scenario files given")
	}
	results, err := PlanBatch(planContext(c), paths, c.Int(batchFlagWorkers), newLogger(c))
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Scenario", "Result", "Length", "Gear switches", "Expanded", "Elapsed (ms)"})
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			t.AppendRow(table.Row{r.Path, r.Err.Error(), "", "", "", ""})
			continue
		}
		t.AppendRow(table.Row{
			r.Path,
			"ok",
			fmt.Sprintf("%.3f", r.Summary.Length),
			r.Summary.GearSwitches,
			r.Summary.Expanded,
			fmt.Sprintf("%.1f", r.Summary.ElapsedMilli),
		})
	}
	printf(c.App.Writer, "%s", t.Render())
	if failed > 0 {
		return errors.Errorf("%d of %d scenarios failed", failed, len(results))
	}
	return nil
}
