// Package spatialmath defines the planar geometry used by the planner: vehicle poses, map bounds,
// obstacle polygons and the oriented boxes used as vehicle footprints.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/openspace/utils"
)

// Pose2D is a planar pose: a position and a heading in radians measured counter-clockwise from +X.
type Pose2D struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// NewPose2D returns a pose with its heading normalized to [-pi, pi).
func NewPose2D(x, y, theta float64) Pose2D {
	return Pose2D{X: x, Y: y, Theta: utils.NormalizeAngle(theta)}
}

// NewZeroPose returns a pose at the origin facing +X.
func NewZeroPose() Pose2D {
	return Pose2D{}
}

// Point returns the position of the pose.
func (p Pose2D) Point() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// Heading returns the unit vector the pose faces.
func (p Pose2D) Heading() r2.Point {
	return r2.Point{X: math.Cos(p.Theta), Y: math.Sin(p.Theta)}
}

// IsFinite returns whether every component of the pose is a finite number.
func (p Pose2D) IsFinite() bool {
	for _, v := range []float64{p.X, p.Y, p.Theta} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (p Pose2D) String() string {
	return fmt.Sprintf("{X:%.4f Y:%.4f Theta:%.4f}", p.X, p.Y, p.Theta)
}

// PoseAlmostEqual returns whether two poses are within epsilon in position and heading.
func PoseAlmostEqual(a, b Pose2D, epsilon float64) bool {
	return utils.Float64AlmostEqual(a.X, b.X, epsilon) &&
		utils.Float64AlmostEqual(a.Y, b.Y, epsilon) &&
		math.Abs(utils.AngleDiff(a.Theta, b.Theta)) < epsilon
}
