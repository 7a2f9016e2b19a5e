package hybridastar

import (
	"encoding/json"
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/openspace/spatialmath"
	"go.viam.com/openspace/utils"
)

// Gear is the driving direction of the motion leading to a trajectory point.
type Gear int8

// The gears.
const (
	GearReverse Gear = -1
	GearForward Gear = 1
)

func (g Gear) String() string {
	if g == GearReverse {
		return "reverse"
	}
	return "forward"
}

// MarshalJSON encodes the gear as its name.
func (g Gear) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

func gearOf(forward bool) Gear {
	if forward {
		return GearForward
	}
	return GearReverse
}

// Trajectory is a sequence of vehicle states one time step apart. All slices have the same length.
type Trajectory struct {
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	Phi   []float64 `json:"phi"`
	V     []float64 `json:"v"`
	A     []float64 `json:"a"`
	Steer []float64 `json:"steer"`
	// Distance driven from the first point, in meters.
	AccumulatedS []float64 `json:"accumulated_s"`
	// Gear of the motion leading to each point; the first point carries the gear of the first motion.
	Gear []Gear `json:"gear"`
	// Time between consecutive points, in seconds.
	DeltaT float64 `json:"delta_t"`
}

// Len returns the number of points.
func (t *Trajectory) Len() int {
	return len(t.X)
}

// Pose returns the pose of the i-th point.
func (t *Trajectory) Pose(i int) spatialmath.Pose2D {
	return spatialmath.Pose2D{X: t.X[i], Y: t.Y[i], Theta: t.Phi[i]}
}

// Poses returns the poses of all points.
func (t *Trajectory) Poses() []spatialmath.Pose2D {
	return lo.Times(t.Len(), t.Pose)
}

// Length returns the distance driven along the trajectory.
func (t *Trajectory) Length() float64 {
	if t.Len() == 0 {
		return 0
	}
	return t.AccumulatedS[t.Len()-1]
}

// GearSwitches returns how often the gear changes along the trajectory.
func (t *Trajectory) GearSwitches() int {
	switches := 0
	for i := 1; i < len(t.Gear); i++ {
		if t.Gear[i] != t.Gear[i-1] {
			switches++
		}
	}
	return switches
}

// Partition splits the trajectory at every gear switch. Consecutive pieces share the point where
// the vehicle stops to change gear, and every point of a piece carries the piece's gear.
func (t *Trajectory) Partition() []*Trajectory {
	if t.Len() == 0 {
		return nil
	}
	pieces := []*Trajectory{}
	begin := 0
	for i := 1; i+1 < t.Len(); i++ {
		if t.Gear[i+1] != t.Gear[i] {
			pieces = append(pieces, t.slice(begin, i))
			begin = i
		}
	}
	return append(pieces, t.slice(begin, t.Len()-1))
}

// slice returns a copy of the points in [begin, end].
func (t *Trajectory) slice(begin, end int) *Trajectory {
	cp := func(s []float64) []float64 { return append([]float64(nil), s[begin:end+1]...) }
	piece := &Trajectory{
		X:      cp(t.X),
		Y:      cp(t.Y),
		Phi:    cp(t.Phi),
		V:      cp(t.V),
		A:      cp(t.A),
		Steer:  cp(t.Steer),
		DeltaT: t.DeltaT,
	}
	offset := t.AccumulatedS[begin]
	piece.AccumulatedS = lo.Map(t.AccumulatedS[begin:end+1], func(s float64, _ int) float64 { return s - offset })
	gear := t.Gear[end]
	piece.Gear = lo.Map(t.Gear[begin:end+1], func(Gear, int) Gear { return gear })
	return piece
}

// trajectory walks the parent links from the final node back to the start and derives the speed,
// acceleration and steering profile of the resulting poses.
func (p *Planner) trajectory() *Trajectory {
	chain := []int{}
	for idx := p.finalNode; idx != noParent; idx = p.nodes[idx].parent {
		chain = append(chain, idx)
	}
	chain = lo.Reverse(chain)

	traj := &Trajectory{DeltaT: p.cfg.DeltaT}
	for i, idx := range chain {
		n := &p.nodes[idx]
		samples := n.samples
		if i > 0 {
			samples = samples[1:]
		}
		for _, s := range samples {
			traj.X = append(traj.X, s.X)
			traj.Y = append(traj.Y, s.Y)
			traj.Phi = append(traj.Phi, s.Theta)
			traj.Gear = append(traj.Gear, gearOf(n.forward))
		}
	}
	if len(traj.Gear) > 1 {
		traj.Gear[0] = traj.Gear[1]
	}
	p.fillProfile(traj)
	return traj
}

// fillProfile derives AccumulatedS, V, A and Steer from the poses and gears.
func (p *Planner) fillProfile(traj *Trajectory) {
	n := traj.Len()
	ds := make([]float64, n)
	for i := 1; i < n; i++ {
		ds[i] = math.Hypot(traj.X[i]-traj.X[i-1], traj.Y[i]-traj.Y[i-1])
	}
	traj.AccumulatedS = floats.CumSum(make([]float64, n), ds)

	dt := traj.DeltaT
	traj.V = make([]float64, n)
	for i := 1; i+1 < n; i++ {
		cos, sin := math.Cos(traj.Phi[i]), math.Sin(traj.Phi[i])
		vx := (traj.X[i+1] - traj.X[i-1]) / dt
		vy := (traj.Y[i+1] - traj.Y[i-1]) / dt
		traj.V[i] = (vx*cos + vy*sin) / 2
	}

	traj.A = make([]float64, n)
	for i := 0; i+1 < n; i++ {
		traj.A[i] = (traj.V[i+1] - traj.V[i]) / dt
	}

	traj.Steer = make([]float64, n)
	for i := 0; i+1 < n; i++ {
		step := ds[i+1]
		if step < poseEpsilon {
			step = p.cfg.StepSize
		}
		steer := math.Atan(utils.AngleDiff(traj.Phi[i+1], traj.Phi[i]) * p.params.WheelBase / step)
		if traj.Gear[i+1] == GearReverse {
			steer = -steer
		}
		traj.Steer[i] = steer
	}
	if n > 1 {
		traj.Steer[n-1] = traj.Steer[n-2]
	}
}
