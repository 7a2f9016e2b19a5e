package hybridastar

import (
	"math"

	"go.viam.com/openspace/spatialmath"
	"go.viam.com/openspace/vehicle"
)

// Validator checks vehicle poses against the map bounds and obstacles of one plan.
type Validator struct {
	bounds    spatialmath.Bounds
	obstacles []spatialmath.Obstacle
	params    vehicle.Params
	// half diagonal of the footprint, used to skip far away edges.
	reach float64
	edges []spatialmath.LineSegment
}

// NewValidator returns a validator for a vehicle moving inside bounds among obstacles.
func NewValidator(bounds spatialmath.Bounds, obstacles []spatialmath.Obstacle, params vehicle.Params) *Validator {
	v := &Validator{
		bounds:    bounds,
		obstacles: obstacles,
		params:    params,
		reach:     math.Hypot(params.Length(), params.Width) / 2,
	}
	for _, o := range obstacles {
		v.edges = append(v.edges, o.Segments()...)
	}
	return v
}

// ValidPose returns whether the vehicle footprint at pose lies inside the bounds and touches no
// obstacle.
func (v *Validator) ValidPose(pose spatialmath.Pose2D) bool {
	if !pose.IsFinite() {
		return false
	}
	box, err := v.params.Footprint(pose)
	if err != nil {
		return false
	}
	if !box.InsideBounds(v.bounds) {
		return false
	}
	center := box.Center()
	for _, e := range v.edges {
		if e.DistanceToPoint(center) > v.reach {
			continue
		}
		if box.OverlapsSegment(e) {
			return false
		}
	}
	for _, o := range v.obstacles {
		if o.IsPolygon() && o.ContainsPoint(center) {
			return false
		}
	}
	return true
}

// ValidSamples returns whether every pose in samples is valid.
func (v *Validator) ValidSamples(samples []spatialmath.Pose2D) bool {
	for _, s := range samples {
		if !v.ValidPose(s) {
			return false
		}
	}
	return true
}
