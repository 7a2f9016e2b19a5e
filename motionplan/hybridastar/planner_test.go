package hybridastar

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/openspace/logging"
	"go.viam.com/openspace/spatialmath"
	"go.viam.com/openspace/vehicle"
)

type scenario struct {
	start, goal spatialmath.Pose2D
	bounds      spatialmath.Bounds
	obstacles   []spatialmath.Obstacle
}

func mustBounds(t *testing.T, xmin, xmax, ymin, ymax float64) spatialmath.Bounds {
	t.Helper()
	b, err := spatialmath.NewBounds(xmin, xmax, ymin, ymax)
	test.That(t, err, test.ShouldBeNil)
	return b
}

func openField(t *testing.T) scenario {
	return scenario{
		start:  spatialmath.NewPose2D(0, 0, 0),
		goal:   spatialmath.NewPose2D(10, 0, 0),
		bounds: mustBounds(t, -5, 20, -5, 5),
	}
}

func parallelParking(t *testing.T) scenario {
	return scenario{
		start:  spatialmath.NewPose2D(0, 1, 0),
		goal:   spatialmath.NewPose2D(0, -4.5, 0),
		bounds: mustBounds(t, -12, 20, -6, 8),
		obstacles: []spatialmath.Obstacle{
			spatialmath.NewRectangleObstacle(-9, -2.5, -5.8, -3.6),
			spatialmath.NewRectangleObstacle(6.5, 13, -5.8, -3.6),
		},
	}
}

// wall requires searching around an obstacle before the shortcut applies.
func wall(t *testing.T) scenario {
	return scenario{
		start:     spatialmath.NewPose2D(0, 0, 0),
		goal:      spatialmath.NewPose2D(20, 0, 0),
		bounds:    mustBounds(t, -5, 30, -10, 10),
		obstacles: []spatialmath.Obstacle{spatialmath.NewRectangleObstacle(9, 11, -3, 10)},
	}
}

func newTestPlanner(t *testing.T, cfg Config) *Planner {
	t.Helper()
	p, err := NewPlanner(cfg, vehicle.DefaultParams(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return p
}

func (s scenario) plan(t *testing.T, p *Planner) (*Trajectory, error) {
	t.Helper()
	return p.Plan(context.Background(), s.start, s.goal, s.bounds, s.obstacles)
}

func checkTrajectory(t *testing.T, p *Planner, s scenario, traj *Trajectory) {
	t.Helper()
	n := traj.Len()
	test.That(t, n, test.ShouldBeGreaterThan, 1)
	for _, field := range [][]float64{traj.Y, traj.Phi, traj.V, traj.A, traj.Steer, traj.AccumulatedS} {
		test.That(t, field, test.ShouldHaveLength, n)
	}
	test.That(t, traj.Gear, test.ShouldHaveLength, n)
	test.That(t, spatialmath.PoseAlmostEqual(traj.Pose(0), s.start, 1e-9), test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostEqual(traj.Pose(n-1), s.goal, 1e-6), test.ShouldBeTrue)
	test.That(t, traj.V[0], test.ShouldEqual, 0.)
	test.That(t, traj.V[n-1], test.ShouldEqual, 0.)
	test.That(t, traj.A[n-1], test.ShouldEqual, 0.)

	validator := NewValidator(s.bounds, s.obstacles, p.VehicleParams())
	for i, pose := range traj.Poses() {
		test.That(t, validator.ValidPose(pose), test.ShouldBeTrue)
		if i > 0 {
			step := traj.AccumulatedS[i] - traj.AccumulatedS[i-1]
			test.That(t, step, test.ShouldBeLessThanOrEqualTo, p.Config().StepSize+1e-6)
		}
	}
}

func TestOpenField(t *testing.T) {
	s := openField(t)
	p := newTestPlanner(t, NewDefaultConfig())
	traj, err := s.plan(t, p)
	test.That(t, err, test.ShouldBeNil)
	checkTrajectory(t, p, s, traj)

	test.That(t, traj.Length(), test.ShouldAlmostEqual, 10., 1e-6)
	test.That(t, traj.GearSwitches(), test.ShouldEqual, 0)
	for i := range traj.Gear {
		test.That(t, traj.Gear[i], test.ShouldEqual, GearForward)
		test.That(t, math.Abs(traj.Steer[i]), test.ShouldBeLessThan, 1e-6)
		test.That(t, traj.V[i], test.ShouldBeGreaterThanOrEqualTo, 0.)
	}
	test.That(t, traj.V[traj.Len()/2], test.ShouldAlmostEqual, p.Config().StepSize/p.Config().DeltaT)

	stats := p.Stats()
	test.That(t, stats.Expanded, test.ShouldEqual, 1)
	test.That(t, stats.AnalyticAttempts, test.ShouldEqual, 1)
	test.That(t, stats.CacheHits, test.ShouldEqual, 1)
}

func TestParallelParking(t *testing.T) {
	s := parallelParking(t)
	p := newTestPlanner(t, NewDefaultConfig())
	traj, err := s.plan(t, p)
	test.That(t, err, test.ShouldBeNil)
	checkTrajectory(t, p, s, traj)

	test.That(t, traj.GearSwitches(), test.ShouldBeGreaterThanOrEqualTo, 1)
	test.That(t, traj.Gear, test.ShouldContain, GearForward)
	test.That(t, traj.Gear, test.ShouldContain, GearReverse)
	for i := 1; i+1 < traj.Len(); i++ {
		if traj.Gear[i] != traj.Gear[i+1] {
			continue
		}
		if traj.Gear[i] == GearForward {
			test.That(t, traj.V[i], test.ShouldBeGreaterThan, 0.)
		} else {
			test.That(t, traj.V[i], test.ShouldBeLessThan, 0.)
		}
	}

	pieces := traj.Partition()
	test.That(t, len(pieces), test.ShouldEqual, traj.GearSwitches()+1)
	for i, piece := range pieces {
		test.That(t, piece.GearSwitches(), test.ShouldEqual, 0)
		if i > 0 {
			prev := pieces[i-1]
			test.That(t, piece.Gear[0], test.ShouldNotEqual, prev.Gear[0])
			test.That(t, piece.Pose(0), test.ShouldResemble, prev.Pose(prev.Len()-1))
		}
	}
}

func TestSearchAroundWall(t *testing.T) {
	s := wall(t)
	p := newTestPlanner(t, NewDefaultConfig())
	traj, err := s.plan(t, p)
	test.That(t, err, test.ShouldBeNil)
	checkTrajectory(t, p, s, traj)
	stats := p.Stats()
	test.That(t, stats.Expanded, test.ShouldBeGreaterThan, 1)
	test.That(t, stats.Generated, test.ShouldBeGreaterThan, stats.Expanded)
	test.That(t, stats.CacheHits, test.ShouldBeGreaterThan, 0)
	test.That(t, stats.CacheHits, test.ShouldBeLessThanOrEqualTo, stats.AnalyticAttempts)
	test.That(t, stats.PoppedF, test.ShouldHaveLength, stats.Expanded)
}

func TestAnalyticCacheOwner(t *testing.T) {
	p := newTestPlanner(t, NewDefaultConfig())
	p.Reset()
	bounds := mustBounds(t, -5, 20, -10, 10)
	goal := spatialmath.NewPose2D(10, 0, 0)
	// blocks the straight shortcut, so every attempt fails and leaves the arena alone.
	obstacles := []spatialmath.Obstacle{spatialmath.NewRectangleObstacle(4, 6, -2, 2)}
	s := &search{
		Planner:   p,
		ctx:       context.Background(),
		goal:      goal,
		grid:      newGrid(bounds, p.cfg.XYGridResolution, p.cfg.PhiGridResolution),
		validator: NewValidator(bounds, obstacles, p.params),
		heuristic: newHeuristic(goal, obstacles, p.rs, 1),
	}

	start := spatialmath.NewZeroPose()
	key := s.grid.key(start)
	first := s.addNode(node{pose: start, key: key, forward: true, parent: noParent})
	_, path := s.heuristic.estimate(start)
	s.cache[key] = analyticEntry{owner: first, path: path}
	// a later node in the same cell replaces the first one.
	second := s.addNode(node{pose: start, key: key, forward: true, parent: first})

	test.That(t, s.analyticExpansion(second), test.ShouldBeFalse)
	test.That(t, p.stats.AnalyticAttempts, test.ShouldEqual, 1)
	test.That(t, p.stats.CacheHits, test.ShouldEqual, 0)
	test.That(t, s.cache[key].owner, test.ShouldEqual, second)

	test.That(t, s.analyticExpansion(second), test.ShouldBeFalse)
	test.That(t, p.stats.CacheHits, test.ShouldEqual, 1)

	test.That(t, s.analyticExpansion(first), test.ShouldBeFalse)
	test.That(t, p.stats.AnalyticAttempts, test.ShouldEqual, 3)
	test.That(t, p.stats.CacheHits, test.ShouldEqual, 1)
	test.That(t, s.cache[key].owner, test.ShouldEqual, first)
	test.That(t, p.nodes, test.ShouldHaveLength, 2)
	test.That(t, p.finalNode, test.ShouldEqual, noParent)
}

func TestPopOrderIsMonotonic(t *testing.T) {
	for _, s := range []scenario{wall(t), parallelParking(t)} {
		p := newTestPlanner(t, NewDefaultConfig())
		_, err := s.plan(t, p)
		test.That(t, err, test.ShouldBeNil)
		popped := p.Stats().PoppedF
		for i := 1; i < len(popped); i++ {
			test.That(t, popped[i], test.ShouldBeGreaterThanOrEqualTo, popped[i-1]-1e-6)
		}
	}
}

func TestHeuristicIsAdmissible(t *testing.T) {
	for _, s := range []scenario{openField(t), wall(t), parallelParking(t)} {
		p := newTestPlanner(t, NewDefaultConfig())
		traj, err := s.plan(t, p)
		test.That(t, err, test.ShouldBeNil)

		h := newHeuristic(s.goal, s.obstacles, p.rs, p.cfg.minPenalty())
		total := traj.Length()
		for i, pose := range traj.Poses() {
			estimate, _ := h.estimate(pose)
			// remaining driving distance, with slack for chords being shorter than arcs.
			remaining := (total - traj.AccumulatedS[i]) * p.cfg.minPenalty()
			test.That(t, estimate, test.ShouldBeLessThanOrEqualTo, remaining+0.1)
		}
	}

	// exact in free space along a straight line.
	p := newTestPlanner(t, NewDefaultConfig())
	h := newHeuristic(spatialmath.NewPose2D(10, 0, 0), nil, p.rs, 1)
	estimate, path := h.estimate(spatialmath.NewZeroPose())
	test.That(t, estimate, test.ShouldAlmostEqual, 10.)
	test.That(t, path, test.ShouldNotBeNil)
}

func TestHeuristicMatchesKnownOptimum(t *testing.T) {
	p := newTestPlanner(t, NewDefaultConfig())
	r := p.params.MinTurningRadius()
	// away from both paths, so the obstacle-aware distance is the straight-line distance.
	obstacles := []spatialmath.Obstacle{spatialmath.NewRectangleObstacle(-12, -10, -12, -10)}
	onArc := func(phi float64) spatialmath.Pose2D {
		return spatialmath.NewPose2D(r*math.Sin(phi), r*(1-math.Cos(phi)), phi)
	}

	// a quarter turn at full lock; no path turning by the same angle is shorter.
	arc := newHeuristic(onArc(math.Pi/2), obstacles, p.rs, 1)
	for _, phi := range []float64{0, math.Pi / 8, math.Pi / 4, 3 * math.Pi / 8} {
		estimate, _ := arc.estimate(onArc(phi))
		test.That(t, estimate, test.ShouldAlmostEqual, r*(math.Pi/2-phi), 1e-6)
	}

	// straight reverse.
	reverse := newHeuristic(spatialmath.NewPose2D(-5, 0, 0), obstacles, p.rs, 1)
	for _, x := range []float64{0, -1, -2.5, -4} {
		estimate, path := reverse.estimate(spatialmath.NewPose2D(x, 0, 0))
		test.That(t, estimate, test.ShouldAlmostEqual, 5+x, 1e-6)
		test.That(t, path, test.ShouldNotBeNil)
	}

	// the gear weight scales the optimum.
	weighted := newHeuristic(spatialmath.NewPose2D(-5, 0, 0), obstacles, p.rs, 2)
	estimate, _ := weighted.estimate(spatialmath.NewZeroPose())
	test.That(t, estimate, test.ShouldAlmostEqual, 10., 1e-6)
}

func TestBlockedGoal(t *testing.T) {
	s := openField(t)
	s.obstacles = []spatialmath.Obstacle{spatialmath.NewRectangleObstacle(5, 15, -3, 3)}
	p := newTestPlanner(t, NewDefaultConfig())
	traj, err := s.plan(t, p)
	test.That(t, traj, test.ShouldBeNil)
	test.That(t, err, test.ShouldBeError, ErrInvalidGoal)
	test.That(t, errors.Is(err, ErrNoPlanFound), test.ShouldBeTrue)
	test.That(t, p.Stats().Expanded, test.ShouldEqual, 0)
}

func TestUnreachableGoal(t *testing.T) {
	s := openField(t)
	s.goal = spatialmath.NewPose2D(30, 0, 0)
	p := newTestPlanner(t, NewDefaultConfig())
	traj, err := s.plan(t, p)
	test.That(t, traj, test.ShouldBeNil)
	test.That(t, errors.Is(err, ErrInvalidGoal), test.ShouldBeTrue)
	test.That(t, errors.Is(err, ErrNoPlanFound), test.ShouldBeTrue)
	test.That(t, p.Stats().Expanded, test.ShouldEqual, 0)
	test.That(t, p.Stats().AnalyticAttempts, test.ShouldEqual, 0)
}

func TestInvalidInputs(t *testing.T) {
	p := newTestPlanner(t, NewDefaultConfig())
	s := openField(t)

	_, err := p.Plan(context.Background(), s.start, s.goal, spatialmath.Bounds{}, nil)
	test.That(t, err, test.ShouldBeError, ErrInvalidBounds)

	_, err = p.Plan(context.Background(), spatialmath.NewPose2D(-4.5, 0, 0), s.goal, s.bounds, nil)
	test.That(t, err, test.ShouldBeError, ErrInvalidStart)

	_, err = p.Plan(context.Background(), spatialmath.Pose2D{X: math.NaN()}, s.goal, s.bounds, nil)
	test.That(t, err, test.ShouldBeError, ErrInvalidStart)

	_, err = p.Plan(context.Background(), s.start, s.goal, s.bounds, []spatialmath.Obstacle{{}})
	test.That(t, errors.Is(err, ErrNoPlanFound), test.ShouldBeTrue)

	// a thin wall is still an obstacle.
	thin := spatialmath.NewLineChainObstacle(r2.Point{X: 1, Y: -1}, r2.Point{X: 1, Y: 1})
	_, err = p.Plan(context.Background(), s.start, s.goal, s.bounds, []spatialmath.Obstacle{thin})
	test.That(t, err, test.ShouldBeError, ErrInvalidStart)
}

func TestEnclosedGoalIsExhausted(t *testing.T) {
	s := scenario{
		start:  spatialmath.NewPose2D(0, 0, 0),
		goal:   spatialmath.NewPose2D(20, 0, 0),
		bounds: mustBounds(t, -5, 30, -10, 10),
		// four walls crossing each other around the goal.
		obstacles: []spatialmath.Obstacle{
			spatialmath.NewLineChainObstacle(r2.Point{X: 14, Y: -5}, r2.Point{X: 29, Y: -5}),
			spatialmath.NewLineChainObstacle(r2.Point{X: 14, Y: 5}, r2.Point{X: 29, Y: 5}),
			spatialmath.NewLineChainObstacle(r2.Point{X: 15, Y: -6}, r2.Point{X: 15, Y: 6}),
			spatialmath.NewLineChainObstacle(r2.Point{X: 28, Y: -6}, r2.Point{X: 28, Y: 6}),
		},
	}
	p := newTestPlanner(t, NewDefaultConfig())
	_, err := s.plan(t, p)
	test.That(t, errors.Is(err, ErrNoPlanFound), test.ShouldBeTrue)
	test.That(t, err, test.ShouldNotEqual, ErrInvalidGoal)
	test.That(t, p.Stats().Expanded, test.ShouldEqual, 0)
}

func TestMaxExpansions(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.MaxExpansions = 5
	p := newTestPlanner(t, cfg)
	_, err := wall(t).plan(t, p)
	test.That(t, errors.Is(err, ErrNoPlanFound), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "exhausted")
	test.That(t, p.Stats().Expanded, test.ShouldEqual, 5)
}

func TestAnalyticExpansionInterval(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.AnalyticExpansionInterval = 4
	p := newTestPlanner(t, cfg)
	traj, err := wall(t).plan(t, p)
	test.That(t, err, test.ShouldBeNil)
	checkTrajectory(t, p, wall(t), traj)
	stats := p.Stats()
	test.That(t, stats.AnalyticAttempts, test.ShouldEqual, (stats.Expanded+3)/4)
}

func TestCancelledContext(t *testing.T) {
	p := newTestPlanner(t, NewDefaultConfig())
	s := wall(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	traj, err := p.Plan(ctx, s.start, s.goal, s.bounds, s.obstacles)
	test.That(t, traj, test.ShouldBeNil)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}

func TestStartEqualsGoal(t *testing.T) {
	s := openField(t)
	p := newTestPlanner(t, NewDefaultConfig())
	traj, err := p.Plan(context.Background(), s.start, s.start, s.bounds, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, traj.Len(), test.ShouldEqual, 1)
	test.That(t, traj.Length(), test.ShouldEqual, 0.)
	test.That(t, traj.Steer, test.ShouldResemble, []float64{0})
}

func TestDeterminismAndReuse(t *testing.T) {
	s := parallelParking(t)
	first, err := s.plan(t, newTestPlanner(t, NewDefaultConfig()))
	test.That(t, err, test.ShouldBeNil)
	second, err := s.plan(t, newTestPlanner(t, NewDefaultConfig()))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmp.Diff(first, second), test.ShouldBeEmpty)

	// a reused planner carries nothing over from unrelated searches.
	reused := newTestPlanner(t, NewDefaultConfig())
	_, err = wall(t).plan(t, reused)
	test.That(t, err, test.ShouldBeNil)
	_, err = openField(t).plan(t, reused)
	test.That(t, err, test.ShouldBeNil)
	third, err := s.plan(t, reused)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmp.Diff(first, third), test.ShouldBeEmpty)

	fresh := newTestPlanner(t, NewDefaultConfig())
	_, err = s.plan(t, fresh)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, reused.Stats().Expanded, test.ShouldEqual, fresh.Stats().Expanded)
	test.That(t, cmp.Diff(fresh.Stats().PoppedF, reused.Stats().PoppedF), test.ShouldBeEmpty)
}

func TestPlanDurationUsesClock(t *testing.T) {
	p := newTestPlanner(t, NewDefaultConfig())
	mock := clock.NewMock()
	p.SetClock(mock)
	_, err := wall(t).plan(t, p)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Stats().Duration, test.ShouldEqual, time.Duration(0))
	test.That(t, p.Stats().Expanded, test.ShouldBeGreaterThan, 0)
}

func TestNewPlannerRejectsInvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.NextNodeNum = 3
	_, err := NewPlanner(cfg, vehicle.DefaultParams(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)

	params := vehicle.DefaultParams()
	params.WheelBase = 0
	_, err = NewPlannerFromProvider(NewDefaultConfig(), vehicle.StaticProvider(params), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)

	p, err := NewPlannerFromProvider(NewDefaultConfig(), vehicle.StaticProvider(vehicle.DefaultParams()), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.VehicleParams(), test.ShouldResemble, vehicle.DefaultParams())
}
