// Package holonomic computes obstacle-aware distances for a point robot that can move in any
// direction. The planner uses them as a lower bound on the remaining driving distance.
package holonomic

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"go.viam.com/openspace/spatialmath"
)

// goalID is the graph node of the goal; obstacle vertices follow it.
const goalID = 0

const boundaryEpsilon = 1e-9

// Heuristic answers shortest point-robot distances to a fixed goal. Obstacle edges act as barriers
// and polygon interiors are impassable. Distances are exact shortest paths on the visibility graph of
// the obstacle vertices and the goal, computed once with Dijkstra from the goal.
type Heuristic struct {
	goal      r2.Point
	vertices  []r2.Point
	costs     []float64
	barriers  []spatialmath.LineSegment
	polygons  []spatialmath.Obstacle
	reachable int
}

// NewHeuristic builds the visibility graph for the obstacles and solves it from goal.
func NewHeuristic(goal r2.Point, obstacles []spatialmath.Obstacle) *Heuristic {
	h := &Heuristic{goal: goal}
	seen := map[r2.Point]bool{goal: true}
	h.vertices = append(h.vertices, goal)
	for _, o := range obstacles {
		h.barriers = append(h.barriers, o.Segments()...)
		if o.IsPolygon() {
			h.polygons = append(h.polygons, o)
		}
		for _, v := range o.Vertices {
			if !seen[v] {
				seen[v] = true
				h.vertices = append(h.vertices, v)
			}
		}
	}

	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := range h.vertices {
		g.AddNode(simple.Node(i))
	}
	for i := range h.vertices {
		for j := i + 1; j < len(h.vertices); j++ {
			if h.visible(h.vertices[i], h.vertices[j]) {
				w := h.vertices[i].Sub(h.vertices[j]).Norm()
				g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(j), w))
			}
		}
	}

	shortest := path.DijkstraFrom(simple.Node(goalID), g)
	h.costs = make([]float64, len(h.vertices))
	for i := range h.vertices {
		h.costs[i] = shortest.WeightTo(int64(i))
		if !math.IsInf(h.costs[i], 1) {
			h.reachable++
		}
	}
	return h
}

// visible returns whether the straight segment between a and b stays clear of obstacles. Touching a
// vertex or sliding along an edge is allowed; crossing an edge or cutting through a polygon is not.
func (h *Heuristic) visible(a, b r2.Point) bool {
	seg := spatialmath.NewLineSegment(a, b)
	for _, barrier := range h.barriers {
		if seg.Crosses(barrier) {
			return false
		}
	}
	mid := a.Add(b).Mul(0.5)
	for _, p := range h.polygons {
		if p.ContainsPoint(mid) && !onBoundary(p, mid) {
			return false
		}
	}
	return true
}

func onBoundary(o spatialmath.Obstacle, p r2.Point) bool {
	for _, s := range o.Segments() {
		if s.DistanceToPoint(p) < boundaryEpsilon {
			return true
		}
	}
	return false
}

// Goal returns the goal position.
func (h *Heuristic) Goal() r2.Point {
	return h.goal
}

// Reachable returns how many graph vertices, the goal included, have a finite distance.
func (h *Heuristic) Reachable() int {
	return h.reachable
}

// Distance returns the shortest obstacle-avoiding distance from p to the goal, or +Inf if the goal
// cannot be reached from p.
func (h *Heuristic) Distance(p r2.Point) float64 {
	best := math.Inf(1)
	for i, v := range h.vertices {
		if math.IsInf(h.costs[i], 1) {
			continue
		}
		d := p.Sub(v).Norm()
		if d+h.costs[i] >= best {
			continue
		}
		if h.visible(p, v) {
			best = d + h.costs[i]
		}
	}
	return best
}
