package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// intersectEpsilon is the tolerance used by the orientation predicates below.
const intersectEpsilon = 1e-9

// LineSegment is the closed segment between two points.
type LineSegment struct {
	Start r2.Point
	End   r2.Point
}

// NewLineSegment returns the segment between a and b.
func NewLineSegment(a, b r2.Point) LineSegment {
	return LineSegment{Start: a, End: b}
}

// Length returns the length of the segment.
func (s LineSegment) Length() float64 {
	return s.End.Sub(s.Start).Norm()
}

// DistanceToPoint returns the euclidean distance from p to the closest point of the segment.
func (s LineSegment) DistanceToPoint(p r2.Point) float64 {
	d := s.End.Sub(s.Start)
	l2 := d.Dot(d)
	if l2 == 0 {
		return p.Sub(s.Start).Norm()
	}
	t := math.Max(0, math.Min(1, p.Sub(s.Start).Dot(d)/l2))
	return p.Sub(s.Start.Add(d.Mul(t))).Norm()
}

// orientation returns the sign of the cross product (b-a)x(c-a): 1 for counter-clockwise, -1 for
// clockwise and 0 when the three points are collinear within tolerance.
func orientation(a, b, c r2.Point) int {
	v := b.Sub(a).Cross(c.Sub(a))
	scale := math.Max(1, math.Max(b.Sub(a).Norm(), c.Sub(a).Norm()))
	switch {
	case v > intersectEpsilon*scale:
		return 1
	case v < -intersectEpsilon*scale:
		return -1
	}
	return 0
}

func onSegment(a, b, p r2.Point) bool {
	return p.X <= math.Max(a.X, b.X)+intersectEpsilon && p.X >= math.Min(a.X, b.X)-intersectEpsilon &&
		p.Y <= math.Max(a.Y, b.Y)+intersectEpsilon && p.Y >= math.Min(a.Y, b.Y)-intersectEpsilon
}

// Intersects returns whether the two closed segments share at least one point.
func (s LineSegment) Intersects(o LineSegment) bool {
	o1 := orientation(s.Start, s.End, o.Start)
	o2 := orientation(s.Start, s.End, o.End)
	o3 := orientation(o.Start, o.End, s.Start)
	o4 := orientation(o.Start, o.End, s.End)

	if o1 != o2 && o3 != o4 && o1*o2 <= 0 && o3*o4 <= 0 {
		return true
	}
	if o1 == 0 && onSegment(s.Start, s.End, o.Start) {
		return true
	}
	if o2 == 0 && onSegment(s.Start, s.End, o.End) {
		return true
	}
	if o3 == 0 && onSegment(o.Start, o.End, s.Start) {
		return true
	}
	return o4 == 0 && onSegment(o.Start, o.End, s.End)
}

// Crosses returns whether the segments cross at a single point lying strictly inside both of them.
// Touching at an endpoint and collinear overlap do not count as crossing.
func (s LineSegment) Crosses(o LineSegment) bool {
	o1 := orientation(s.Start, s.End, o.Start)
	o2 := orientation(s.Start, s.End, o.End)
	o3 := orientation(o.Start, o.End, s.Start)
	o4 := orientation(o.Start, o.End, s.End)
	return o1*o2 < 0 && o3*o4 < 0
}
