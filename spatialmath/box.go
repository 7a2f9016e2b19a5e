package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Box is an oriented rectangle, it has a center, heading and half sizes that fully define it.
type Box struct {
	center     r2.Point
	heading    float64
	halfLength float64
	halfWidth  float64
	axisX      r2.Point // unit vector along the length
	axisY      r2.Point // unit vector along the width
}

// NewBox instantiates a new box with its length measured along heading.
func NewBox(center r2.Point, heading, length, width float64) (*Box, error) {
	if !(length > 0) || !(width > 0) {
		return nil, errors.Errorf("box dimensions must be positive, got length %v width %v", length, width)
	}
	cos, sin := math.Cos(heading), math.Sin(heading)
	return &Box{
		center:     center,
		heading:    heading,
		halfLength: length / 2,
		halfWidth:  width / 2,
		axisX:      r2.Point{X: cos, Y: sin},
		axisY:      r2.Point{X: -sin, Y: cos},
	}, nil
}

// Center returns the center of the box.
func (b *Box) Center() r2.Point { return b.center }

// Heading returns the direction of the box's length axis.
func (b *Box) Heading() float64 { return b.heading }

// Length returns the full length of the box.
func (b *Box) Length() float64 { return 2 * b.halfLength }

// Width returns the full width of the box.
func (b *Box) Width() float64 { return 2 * b.halfWidth }

func (b *Box) String() string {
	return fmt.Sprintf("Box{center: %v, heading: %.4f, length: %.4f, width: %.4f}",
		b.center, b.heading, b.Length(), b.Width())
}

// Corners returns the four corners counter-clockwise starting from the rear right.
func (b *Box) Corners() [4]r2.Point {
	l := b.axisX.Mul(b.halfLength)
	w := b.axisY.Mul(b.halfWidth)
	return [4]r2.Point{
		b.center.Sub(l).Sub(w),
		b.center.Add(l).Sub(w),
		b.center.Add(l).Add(w),
		b.center.Sub(l).Add(w),
	}
}

func (b *Box) toLocal(p r2.Point) r2.Point {
	d := p.Sub(b.center)
	return r2.Point{X: d.Dot(b.axisX), Y: d.Dot(b.axisY)}
}

// ContainsPoint returns whether the point lies in the closed box.
func (b *Box) ContainsPoint(p r2.Point) bool {
	local := b.toLocal(p)
	return math.Abs(local.X) <= b.halfLength && math.Abs(local.Y) <= b.halfWidth
}

// OverlapsSegment returns whether any point of the segment lies in the closed box, including
// segments lying entirely inside it. It clips the segment against the box in the box frame
// (Liang-Barsky).
func (b *Box) OverlapsSegment(s LineSegment) bool {
	p0 := b.toLocal(s.Start)
	p1 := b.toLocal(s.End)
	dx, dy := p1.X-p0.X, p1.Y-p0.Y

	t0, t1 := 0., 1.
	ps := [4]float64{-dx, dx, -dy, dy}
	qs := [4]float64{p0.X + b.halfLength, b.halfLength - p0.X, p0.Y + b.halfWidth, b.halfWidth - p0.Y}
	for i := range ps {
		p, q := ps[i], qs[i]
		if p == 0 {
			if q < 0 {
				return false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return t0 <= t1
}

// CollidesWithObstacle returns whether the box touches any edge of the obstacle or, for polygon
// obstacles, lies entirely inside it.
func (b *Box) CollidesWithObstacle(o Obstacle) bool {
	for _, seg := range o.Segments() {
		if b.OverlapsSegment(seg) {
			return true
		}
	}
	return o.IsPolygon() && o.ContainsPoint(b.center)
}

// InsideBounds returns whether all four corners lie inside the bounds.
func (b *Box) InsideBounds(bounds Bounds) bool {
	for _, c := range b.Corners() {
		if !bounds.Contains(c) {
			return false
		}
	}
	return true
}
