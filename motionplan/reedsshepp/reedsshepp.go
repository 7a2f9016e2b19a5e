// Package reedsshepp generates shortest curvature-bounded paths between two planar poses for a car
// that may drive both forwards and backwards. Obstacles are not considered.
package reedsshepp

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"go.viam.com/openspace/spatialmath"
)

// Paths shorter than this, in units of the turning radius, are treated as degenerate.
const minPathLength = 1e-6

// Generator produces Reeds-Shepp paths for a fixed turning radius and sampling step.
type Generator struct {
	radius   float64
	stepSize float64
}

// NewGenerator returns a generator for the given minimum turning radius and arc-length sampling step.
func NewGenerator(radius, stepSize float64) (*Generator, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, errors.Errorf("turning radius must be positive and finite, got %v", radius)
	}
	if !(stepSize > 0) || math.IsInf(stepSize, 0) {
		return nil, errors.Errorf("step size must be positive and finite, got %v", stepSize)
	}
	return &Generator{radius: radius, stepSize: stepSize}, nil
}

// Radius returns the turning radius.
func (g *Generator) Radius() float64 {
	return g.radius
}

// StepSize returns the sampling step.
func (g *Generator) StepSize() float64 {
	return g.stepSize
}

// normalize expresses end in the frame of start, scaled to a unit turning radius.
func (g *Generator) normalize(start, end spatialmath.Pose2D) (x, y, phi float64) {
	dx, dy := end.X-start.X, end.Y-start.Y
	c, s := math.Cos(start.Theta), math.Sin(start.Theta)
	x = (c*dx + s*dy) / g.radius
	y = (-s*dx + c*dy) / g.radius
	phi = mod2pi(end.Theta - start.Theta)
	return x, y, phi
}

func (g *Generator) toPath(start spatialmath.Pose2D, c candidate) *Path {
	word := wordTable[c.word]
	segments := make([]Segment, 0, len(c.lengths))
	for i, l := range c.lengths {
		if math.Abs(l) < familyEpsilon {
			continue
		}
		segments = append(segments, Segment{Type: word[i], Length: l * g.radius})
	}
	return newPath(start, g.radius, g.stepSize, segments)
}

func validCandidate(c candidate) bool {
	total := c.totalLength()
	return !math.IsNaN(total) && !math.IsInf(total, 0) && total >= minPathLength
}

// ShortestPath returns the shortest Reeds-Shepp path from start to end. It returns false when no
// word is defined or when the poses coincide, in which case no path is meaningful.
func (g *Generator) ShortestPath(start, end spatialmath.Pose2D) (*Path, bool) {
	if !start.IsFinite() || !end.IsFinite() {
		return nil, false
	}
	best := -1
	bestLength := math.Inf(1)
	candidates := allCandidates(g.normalize(start, end))
	for i, c := range candidates {
		l := c.totalLength()
		if math.IsNaN(l) || math.IsInf(l, 0) {
			continue
		}
		if l < bestLength {
			best, bestLength = i, l
		}
	}
	if best < 0 || bestLength < minPathLength {
		return nil, false
	}
	return g.toPath(start, candidates[best]), true
}

// AllPaths returns every valid Reeds-Shepp path from start to end, shortest first.
func (g *Generator) AllPaths(start, end spatialmath.Pose2D) []*Path {
	if !start.IsFinite() || !end.IsFinite() {
		return nil
	}
	paths := []*Path{}
	for _, c := range allCandidates(g.normalize(start, end)) {
		if validCandidate(c) {
			paths = append(paths, g.toPath(start, c))
		}
	}
	sort.SliceStable(paths, func(i, j int) bool { return paths[i].Length() < paths[j].Length() })
	return paths
}

// Distance returns the length of the shortest path from start to end, 0 for coincident poses, and
// +Inf when no path exists.
func (g *Generator) Distance(start, end spatialmath.Pose2D) float64 {
	if !start.IsFinite() || !end.IsFinite() {
		return math.Inf(1)
	}
	best := math.Inf(1)
	for _, c := range allCandidates(g.normalize(start, end)) {
		total := c.totalLength()
		if !math.IsNaN(total) && total < best {
			best = total
		}
	}
	if best < minPathLength {
		return 0
	}
	return best * g.radius
}
