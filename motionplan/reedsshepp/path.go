package reedsshepp

import (
	"math"
	"strings"

	"go.viam.com/openspace/spatialmath"
	"go.viam.com/openspace/utils"
)

// SegmentType is the steering of a path segment.
type SegmentType int

// The segment types.
const (
	Left SegmentType = iota
	Straight
	Right
)

func (s SegmentType) String() string {
	switch s {
	case Left:
		return "L"
	case Straight:
		return "S"
	case Right:
		return "R"
	}
	return "?"
}

// Segment is a constant curvature piece of a path. Length is in meters and signed: negative
// lengths are driven in reverse.
type Segment struct {
	Type   SegmentType
	Length float64
}

// Forward returns whether the segment is driven forwards.
func (s Segment) Forward() bool {
	return s.Length >= 0
}

// Sample is a pose along a path together with the gear used to reach it and the arc length
// travelled from the start of the path.
type Sample struct {
	Pose    spatialmath.Pose2D
	Forward bool
	S       float64
}

// Path is a Reeds-Shepp path anchored at a start pose.
type Path struct {
	start    spatialmath.Pose2D
	radius   float64
	stepSize float64
	segments []Segment
	length   float64
}

func newPath(start spatialmath.Pose2D, radius, stepSize float64, segments []Segment) *Path {
	length := 0.
	for _, s := range segments {
		length += math.Abs(s.Length)
	}
	return &Path{start: start, radius: radius, stepSize: stepSize, segments: segments, length: length}
}

// Start returns the pose the path begins at.
func (p *Path) Start() spatialmath.Pose2D { return p.start }

// Segments returns the non-empty segments of the path in driving order.
func (p *Path) Segments() []Segment { return p.segments }

// Length returns the total driven distance, in meters.
func (p *Path) Length() float64 { return p.length }

// Word returns a compact description such as "L+S+R-".
func (p *Path) Word() string {
	var sb strings.Builder
	for _, s := range p.segments {
		sb.WriteString(s.Type.String())
		if s.Forward() {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// GearSwitches returns how many times consecutive segments change direction.
func (p *Path) GearSwitches() int {
	switches := 0
	for i := 1; i < len(p.segments); i++ {
		if p.segments[i].Forward() != p.segments[i-1].Forward() {
			switches++
		}
	}
	return switches
}

// advance moves a unit-radius local state along one segment by the signed length v.
func advance(x, y, phi float64, t SegmentType, v float64) (float64, float64, float64) {
	switch t {
	case Left:
		return x + math.Sin(phi+v) - math.Sin(phi), y - math.Cos(phi+v) + math.Cos(phi), phi + v
	case Right:
		return x - math.Sin(phi-v) + math.Sin(phi), y + math.Cos(phi-v) - math.Cos(phi), phi - v
	default:
		return x + v*math.Cos(phi), y + v*math.Sin(phi), phi
	}
}

func (p *Path) toWorld(x, y, phi float64) spatialmath.Pose2D {
	c, s := math.Cos(p.start.Theta), math.Sin(p.start.Theta)
	return spatialmath.NewPose2D(
		p.start.X+p.radius*(c*x-s*y),
		p.start.Y+p.radius*(s*x+c*y),
		p.start.Theta+phi,
	)
}

// End returns the pose reached at the end of the path.
func (p *Path) End() spatialmath.Pose2D {
	x, y, phi := 0., 0., 0.
	for _, seg := range p.segments {
		x, y, phi = advance(x, y, phi, seg.Type, seg.Length/p.radius)
	}
	return p.toWorld(x, y, phi)
}

// Sample returns poses along the path spaced by the step size along each segment. The start pose
// and the end of every segment are always included; the gear of a sample is the gear of the
// segment leading to it, and the start takes the gear of the first segment.
func (p *Path) Sample() []Sample {
	if len(p.segments) == 0 {
		return []Sample{{Pose: p.start, Forward: true}}
	}
	samples := make([]Sample, 0, int(p.length/p.stepSize)+len(p.segments)+1)
	samples = append(samples, Sample{Pose: p.start, Forward: p.segments[0].Forward()})

	x, y, phi := 0., 0., 0.
	travelled := 0.
	for _, seg := range p.segments {
		segLen := math.Abs(seg.Length)
		sign := utils.Sign(seg.Length)
		steps := int(math.Ceil(segLen/p.stepSize - 1e-9))
		if steps < 1 {
			steps = 1
		}
		for i := 1; i <= steps; i++ {
			d := float64(i) * p.stepSize
			if i == steps {
				d = segLen
			}
			sx, sy, sphi := advance(x, y, phi, seg.Type, sign*d/p.radius)
			samples = append(samples, Sample{
				Pose:    p.toWorld(sx, sy, sphi),
				Forward: seg.Forward(),
				S:       travelled + d,
			})
		}
		x, y, phi = advance(x, y, phi, seg.Type, seg.Length/p.radius)
		travelled += segLen
	}
	return samples
}
