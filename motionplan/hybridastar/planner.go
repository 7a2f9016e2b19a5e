// Package hybridastar plans kinematically feasible, collision-free trajectories for a car-like
// vehicle in open space. It runs a best-first search over discretized poses connected by short
// bicycle-model motions, and tries to finish with an obstacle-free Reeds-Shepp shortcut whenever a
// node is expanded.
package hybridastar

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/openspace/logging"
	"go.viam.com/openspace/motionplan/reedsshepp"
	"go.viam.com/openspace/spatialmath"
	"go.viam.com/openspace/vehicle"
)

// poses closer than this are the same pose.
const poseEpsilon = 1e-9

// Stats describes the work done by the last call to Plan.
type Stats struct {
	// Nodes moved from the frontier to the expanded set.
	Expanded int
	// Candidate successors that passed validation.
	Generated        int
	AnalyticAttempts int
	// Analytic attempts that reused the path computed for the node's heuristic.
	CacheHits int
	// f of every expanded node, in expansion order.
	PoppedF  []float64
	Duration time.Duration
}

// analyticEntry is the Reeds-Shepp path to the goal from the node at index owner.
type analyticEntry struct {
	owner int
	path  *reedsshepp.Path
}

// Planner runs Hybrid A* searches. A Planner may be reused for several plans but is not safe for
// concurrent use.
type Planner struct {
	cfg        Config
	params     vehicle.Params
	logger     logging.Logger
	clock      clock.Clock
	rs         *reedsshepp.Generator
	primitives []primitive
	arc        float64

	// per plan state, cleared by Reset.
	nodes     []node
	frontier  *frontier
	closed    map[int64]int
	cache     map[int64]analyticEntry
	finalNode int
	stats     Stats
}

// NewPlanner returns a planner for the given search tuning and vehicle.
func NewPlanner(cfg Config, params vehicle.Params, logger logging.Logger) (*Planner, error) {
	if err := cfg.Validate("planner"); err != nil {
		return nil, err
	}
	if err := params.Validate("vehicle"); err != nil {
		return nil, err
	}
	rs, err := reedsshepp.NewGenerator(params.MinTurningRadius(), cfg.StepSize)
	if err != nil {
		return nil, err
	}
	return &Planner{
		cfg:        cfg,
		params:     params,
		logger:     logger,
		clock:      clock.New(),
		rs:         rs,
		primitives: primitives(cfg.NextNodeNum, params.MaxSteer()),
		arc:        math.Sqrt2 * cfg.XYGridResolution,
		frontier:   newFrontier(),
		closed:     map[int64]int{},
		cache:      map[int64]analyticEntry{},
		finalNode:  noParent,
	}, nil
}

// NewPlannerFromProvider is like NewPlanner but reads the vehicle from a provider once.
func NewPlannerFromProvider(cfg Config, provider vehicle.Provider, logger logging.Logger) (*Planner, error) {
	return NewPlanner(cfg, provider.VehicleParams(), logger)
}

// SetClock replaces the clock used to time plans.
func (p *Planner) SetClock(c clock.Clock) {
	p.clock = c
}

// Config returns the search tuning of the planner.
func (p *Planner) Config() Config {
	return p.cfg
}

// VehicleParams returns the vehicle the planner plans for.
func (p *Planner) VehicleParams() vehicle.Params {
	return p.params
}

// Stats returns the statistics of the last plan.
func (p *Planner) Stats() Stats {
	return p.stats
}

// Reset clears all state left by a previous plan. Plan calls it before searching.
func (p *Planner) Reset() {
	p.nodes = p.nodes[:0]
	p.frontier.reset()
	clear(p.closed)
	clear(p.cache)
	p.finalNode = noParent
	p.stats = Stats{}
}

// Plan searches for a trajectory from start to goal inside bounds avoiding obstacles. Every failure
// to find a trajectory matches ErrNoPlanFound; invalid inputs fail before any search with
// ErrInvalidBounds, ErrInvalidStart or ErrInvalidGoal. The search stops with the context's error if
// ctx is done.
func (p *Planner) Plan(
	ctx context.Context,
	start, goal spatialmath.Pose2D,
	bounds spatialmath.Bounds,
	obstacles []spatialmath.Obstacle,
) (*Trajectory, error) {
	p.Reset()
	startTime := p.clock.Now()
	defer func() { p.stats.Duration = p.clock.Since(startTime) }()

	p.logger.CDebugf(ctx, "planning from %v to %v with %d obstacles", start, goal, len(obstacles))
	if bounds.IsEmpty() || !boundsFinite(bounds) {
		p.logger.CDebugw(ctx, "rejected bounds", "bounds", bounds.Slice())
		return nil, ErrInvalidBounds
	}
	for i, o := range obstacles {
		if err := o.Validate(); err != nil {
			return nil, errors.Wrapf(ErrNoPlanFound, "obstacle %d: %v", i, err)
		}
	}
	start = spatialmath.NewPose2D(start.X, start.Y, start.Theta)
	goal = spatialmath.NewPose2D(goal.X, goal.Y, goal.Theta)

	validator := NewValidator(bounds, obstacles, p.params)
	if !validator.ValidPose(start) {
		p.logger.CDebugw(ctx, "start pose is out of bounds or in collision", "start", start)
		return nil, ErrInvalidStart
	}
	if !validator.ValidPose(goal) {
		p.logger.CDebugw(ctx, "goal pose is out of bounds or in collision", "goal", goal)
		return nil, ErrInvalidGoal
	}

	s := &search{
		Planner:   p,
		ctx:       ctx,
		goal:      goal,
		grid:      newGrid(bounds, p.cfg.XYGridResolution, p.cfg.PhiGridResolution),
		validator: validator,
		heuristic: newHeuristic(goal, obstacles, p.rs, p.cfg.minPenalty()),
	}
	if err := s.run(start); err != nil {
		p.logger.CDebugw(ctx, "no trajectory found", "error", err, "expanded", p.stats.Expanded, "open", p.frontier.len())
		return nil, err
	}
	traj := p.trajectory()
	p.logger.CDebugw(ctx, "found trajectory",
		"points", traj.Len(),
		"length", traj.Length(),
		"gear_switches", traj.GearSwitches(),
		"expanded", p.stats.Expanded,
		"generated", p.stats.Generated,
		"elapsed", p.clock.Since(startTime),
	)
	return traj, nil
}

func boundsFinite(b spatialmath.Bounds) bool {
	for _, v := range b.Slice() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// search holds what a single call to Plan needs besides the planner's arena.
type search struct {
	*Planner
	ctx       context.Context
	goal      spatialmath.Pose2D
	grid      grid
	validator *Validator
	heuristic *heuristic
}

func (s *search) addNode(n node) int {
	s.nodes = append(s.nodes, n)
	return len(s.nodes) - 1
}

func (s *search) run(start spatialmath.Pose2D) error {
	h, path := s.heuristic.estimate(start)
	if math.IsInf(h, 1) {
		return errors.Wrap(ErrNoPlanFound, "goal is unreachable from start")
	}
	seed := node{
		pose:    start,
		samples: []spatialmath.Pose2D{start},
		key:     s.grid.key(start),
		h:       h,
		forward: true,
		parent:  noParent,
	}
	idx := s.addNode(seed)
	s.cache[seed.key] = analyticEntry{owner: idx, path: path}
	s.frontier.push(seed.key, idx, seed.f())

	fOf := func(i int) float64 { return s.nodes[i].f() }
	for {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		key, idx, ok := s.frontier.pop(fOf)
		if !ok {
			return newExhaustedError(s.stats.Expanded)
		}
		s.closed[key] = idx
		s.stats.Expanded++
		s.stats.PoppedF = append(s.stats.PoppedF, s.nodes[idx].f())

		if (s.stats.Expanded-1)%s.cfg.AnalyticExpansionInterval == 0 && s.analyticExpansion(idx) {
			return nil
		}
		if s.cfg.MaxExpansions > 0 && s.stats.Expanded >= s.cfg.MaxExpansions {
			return newExhaustedError(s.stats.Expanded)
		}
		s.expand(idx)
	}
}

// analyticExpansion tries to reach the goal from the node at idx with a Reeds-Shepp path. On
// success the sampled path is chained onto the node and becomes the end of the trajectory.
func (s *search) analyticExpansion(idx int) bool {
	s.stats.AnalyticAttempts++
	current := s.nodes[idx]

	var path *reedsshepp.Path
	if entry, ok := s.cache[current.key]; ok && entry.owner == idx {
		s.stats.CacheHits++
		path = entry.path
	} else {
		if p, ok := s.rs.ShortestPath(current.pose, s.goal); ok {
			path = p
		}
		s.cache[current.key] = analyticEntry{owner: idx, path: path}
	}

	if path == nil {
		if spatialmath.PoseAlmostEqual(current.pose, s.goal, poseEpsilon) {
			s.finalNode = idx
			return true
		}
		return false
	}

	samples := path.Sample()
	poses := make([]spatialmath.Pose2D, len(samples))
	for i, smp := range samples {
		poses[i] = smp.Pose
	}
	if !s.validator.ValidSamples(poses[1:]) {
		return false
	}

	parent := idx
	for i := 1; i < len(samples); i++ {
		prev := s.nodes[parent]
		n := node{
			pose:    samples[i].Pose,
			samples: []spatialmath.Pose2D{prev.pose, samples[i].Pose},
			key:     s.grid.key(samples[i].Pose),
			g:       prev.g + (samples[i].S-samples[i-1].S)*s.gearPenalty(samples[i].Forward),
			forward: samples[i].Forward,
			parent:  parent,
		}
		parent = s.addNode(n)
		s.closed[n.key] = parent
	}
	s.finalNode = parent
	s.logger.CDebugw(s.ctx, "analytic expansion succeeded",
		"word", path.Word(), "length", path.Length(), "expanded", s.stats.Expanded)
	return true
}

// expand generates the successors of the node at idx and updates the frontier.
func (s *search) expand(idx int) {
	for _, prim := range s.primitives {
		current := s.nodes[idx]
		samples := integrate(current.pose, prim, s.params.WheelBase, s.cfg.StepSize, s.arc)
		end := samples[len(samples)-1]
		key := s.grid.key(end)
		if _, closed := s.closed[key]; closed {
			continue
		}
		if !s.validator.ValidSamples(samples[1:]) {
			continue
		}
		s.stats.Generated++

		g := current.g + s.stepCost(&current, prim, float64(len(samples)-1)*s.cfg.StepSize)
		h, path := s.heuristic.estimate(end)
		if math.IsInf(h, 1) {
			continue
		}
		if existing, seen := s.frontier.lookup(key); seen && s.nodes[existing].f() <= g+h {
			continue
		}
		succ := s.addNode(node{
			pose:    end,
			samples: samples,
			key:     key,
			g:       g,
			h:       h,
			forward: prim.forward,
			steer:   prim.steer,
			parent:  idx,
		})
		s.cache[key] = analyticEntry{owner: succ, path: path}
		s.frontier.push(key, succ, s.nodes[succ].f())
	}
}

func (s *search) gearPenalty(forward bool) float64 {
	if forward {
		return s.cfg.ForwardPenalty
	}
	return s.cfg.BackPenalty
}

// stepCost is the cost of driving length meters with prim after reaching current.
func (s *search) stepCost(current *node, prim primitive, length float64) float64 {
	cost := length * s.gearPenalty(prim.forward)
	if current.parent != noParent && current.forward != prim.forward {
		cost += s.cfg.GearSwitchPenalty
	}
	cost += s.cfg.SteerPenalty * math.Abs(prim.steer)
	cost += s.cfg.SteerChangePenalty * math.Abs(prim.steer-current.steer)
	return cost
}
