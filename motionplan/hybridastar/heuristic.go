package hybridastar

import (
	"math"

	"go.viam.com/openspace/motionplan/holonomic"
	"go.viam.com/openspace/motionplan/reedsshepp"
	"go.viam.com/openspace/spatialmath"
)

// heuristic estimates the remaining cost to the goal as the larger of two lower bounds on the
// driving distance, scaled by the cheapest cost per meter:
//   - the obstacle-aware distance for a point that may move in any direction,
//   - the obstacle-free shortest Reeds-Shepp distance.
type heuristic struct {
	goal      spatialmath.Pose2D
	holonomic *holonomic.Heuristic
	rs        *reedsshepp.Generator
	weight    float64
}

func newHeuristic(
	goal spatialmath.Pose2D,
	obstacles []spatialmath.Obstacle,
	rs *reedsshepp.Generator,
	weight float64,
) *heuristic {
	return &heuristic{
		goal:      goal,
		holonomic: holonomic.NewHeuristic(goal.Point(), obstacles),
		rs:        rs,
		weight:    weight,
	}
}

// estimate returns the heuristic for pose together with the shortest Reeds-Shepp path to the goal,
// which is nil when no path exists. The estimate is +Inf when the goal cannot be reached from pose.
func (h *heuristic) estimate(pose spatialmath.Pose2D) (float64, *reedsshepp.Path) {
	holo := h.holonomic.Distance(pose.Point())
	if math.IsInf(holo, 1) {
		return holo, nil
	}
	kinematic := 0.
	path, ok := h.rs.ShortestPath(pose, h.goal)
	if ok {
		kinematic = path.Length()
	} else {
		path = nil
	}
	return math.Max(holo, kinematic) * h.weight, path
}
