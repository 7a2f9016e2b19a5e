package cli

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"go.viam.com/openspace/motionplan/hybridastar"
	"go.viam.com/openspace/vehicle"
)

// Summary describes a planned trajectory and the search that found it.
type Summary struct {
	Points       int     `json:"points"`
	Length       float64 `json:"length"`
	GearSwitches int     `json:"gear_switches"`
	// Number of single-gear pieces.
	Pieces       int     `json:"pieces"`
	MaxSpeed     float64 `json:"max_speed"`
	MeanSpeed    float64 `json:"mean_speed"`
	MaxAccel     float64 `json:"max_accel"`
	MaxSteer     float64 `json:"max_steer"`
	Expanded     int     `json:"expanded"`
	Generated    int     `json:"generated"`
	CacheHits    int     `json:"cache_hits"`
	ElapsedMilli float64 `json:"elapsed_ms"`
}

// Summarize computes the summary of traj found with the given search statistics.
func Summarize(traj *hybridastar.Trajectory, st hybridastar.Stats) Summary {
	abs := func(v float64, _ int) float64 { return math.Abs(v) }
	speeds := stats.Float64Data(lo.Map(traj.V, abs))
	sum := Summary{
		Points:       traj.Len(),
		Length:       traj.Length(),
		GearSwitches: traj.GearSwitches(),
		Pieces:       len(traj.Partition()),
		Expanded:     st.Expanded,
		Generated:    st.Generated,
		CacheHits:    st.CacheHits,
		ElapsedMilli: float64(st.Duration.Microseconds()) / 1000,
	}
	// the stats functions return NaN on empty input, which json cannot encode.
	if traj.Len() == 0 {
		return sum
	}
	sum.MaxSpeed, _ = speeds.Max()
	sum.MeanSpeed, _ = speeds.Mean()
	sum.MaxAccel, _ = stats.Max(lo.Map(traj.A, abs))
	sum.MaxSteer, _ = stats.Max(lo.Map(traj.Steer, abs))
	return sum
}

type planOutput struct {
	Trajectory *hybridastar.Trajectory `json:"trajectory"`
	Summary    Summary                 `json:"summary"`
}

// planScenario loads the scenario named by the command's flags and plans it.
func planScenario(c *cli.Context) (*Scenario, *hybridastar.Trajectory, hybridastar.Stats, error) {
	scenario, err := LoadScenario(c.Path(planFlagScenario))
	if err != nil {
		return nil, nil, hybridastar.Stats{}, err
	}
	var overrides map[string]interface{}
	if path := c.Path(planFlagConfig); path != "" {
		if overrides, err = loadAttributes(path); err != nil {
			return nil, nil, hybridastar.Stats{}, err
		}
	}
	planner, err := scenario.NewPlanner(overrides, newLogger(c))
	if err != nil {
		return nil, nil, hybridastar.Stats{}, err
	}
	traj, err := planner.Plan(planContext(c), scenario.Start, scenario.Goal, scenario.Bounds, scenario.Obstacles)
	if err != nil {
		return scenario, nil, planner.Stats(), errors.Wrapf(err, "cannot plan from %v to %v", scenario.Start, scenario.Goal)
	}
	return scenario, traj, planner.Stats(), nil
}

// PlanAction plans a scenario and prints the trajectory.
func PlanAction(c *cli.Context) error {
	format := strings.ToLower(c.String(planFlagFormat))
	if format != formatTable && format != formatJSON {
		return errors.Errorf("unknown format %q, must be %q or %q", format, formatTable, formatJSON)
	}
	_, traj, st, err := planScenario(c)
	if err != nil {
		return err
	}
	sum := Summarize(traj, st)
	if format == formatJSON {
		data, err := json.MarshalIndent(planOutput{Trajectory: traj, Summary: sum}, "", "  ")
		if err != nil {
			return err
		}
		printf(c.App.Writer, "%s", data)
		return nil
	}
	printf(c.App.Writer, "%s", trajectoryTable(traj))
	printSummary(c, sum)
	return nil
}

func trajectoryTable(traj *hybridastar.Trajectory) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "X", "Y", "Phi", "V", "A", "Steer", "S", "Gear"})
	f := func(v float64) string { return fmt.Sprintf("%.3f", v) }
	for i := 0; i < traj.Len(); i++ {
		t.AppendRow(table.Row{
			i,
			f(traj.X[i]), f(traj.Y[i]), f(traj.Phi[i]),
			f(traj.V[i]), f(traj.A[i]), f(traj.Steer[i]),
			f(traj.AccumulatedS[i]),
			traj.Gear[i],
		})
	}
	return t.Render()
}

func printSummary(c *cli.Context, sum Summary) {
	printf(c.App.Writer, "points: %d, length: %.3fm, gear switches: %d, pieces: %d",
		sum.Points, sum.Length, sum.GearSwitches, sum.Pieces)
	printf(c.App.Writer, "max speed: %.3fm/s, mean speed: %.3fm/s, max accel: %.3fm/s^2, max steer: %.3frad",
		sum.MaxSpeed, sum.MeanSpeed, sum.MaxAccel, sum.MaxSteer)
	printf(c.App.Writer, "expanded %d nodes, generated %d, cache hits %d in %.1fms",
		sum.Expanded, sum.Generated, sum.CacheHits, sum.ElapsedMilli)
}

type defaultsOutput struct {
	Planner hybridastar.Config `json:"planner"`
	Vehicle vehicle.Params     `json:"vehicle"`
}

// DefaultsAction prints the default planner config and vehicle parameters.
func DefaultsAction(c *cli.Context) error {
	data, err := json.MarshalIndent(defaultsOutput{
		Planner: hybridastar.NewDefaultConfig(),
		Vehicle: vehicle.DefaultParams(),
	}, "", "  ")
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", data)
	return nil
}
