package spatialmath

import (
	"encoding/json"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Obstacle is an ordered sequence of vertices. The zero value describes a closed polygon whose last
// vertex connects back to the first; Open obstacles are line chains whose ends are not joined.
type Obstacle struct {
	Vertices []r2.Point
	Open     bool
}

// NewPolygonObstacle returns a closed polygon obstacle.
func NewPolygonObstacle(vertices ...r2.Point) Obstacle {
	return Obstacle{Vertices: vertices}
}

// NewLineChainObstacle returns an open line chain obstacle.
func NewLineChainObstacle(vertices ...r2.Point) Obstacle {
	return Obstacle{Vertices: vertices, Open: true}
}

// NewRectangleObstacle returns the closed axis-aligned rectangle [xmin, xmax] x [ymin, ymax].
func NewRectangleObstacle(xmin, xmax, ymin, ymax float64) Obstacle {
	return NewPolygonObstacle(
		r2.Point{X: xmin, Y: ymin},
		r2.Point{X: xmax, Y: ymin},
		r2.Point{X: xmax, Y: ymax},
		r2.Point{X: xmin, Y: ymax},
	)
}

// vertices returns the vertex list with an explicitly repeated closing vertex removed.
func (o Obstacle) vertices() []r2.Point {
	n := len(o.Vertices)
	if !o.Open && n > 1 && o.Vertices[0] == o.Vertices[n-1] {
		return o.Vertices[:n-1]
	}
	return o.Vertices
}

// IsPolygon returns whether the obstacle encloses an area.
func (o Obstacle) IsPolygon() bool {
	return !o.Open && len(o.vertices()) >= 3
}

// Segments returns the boundary of the obstacle as line segments. A single vertex yields one
// degenerate segment so that point obstacles still block the vehicle.
func (o Obstacle) Segments() []LineSegment {
	verts := o.vertices()
	switch len(verts) {
	case 0:
		return nil
	case 1:
		return []LineSegment{{Start: verts[0], End: verts[0]}}
	}
	segs := make([]LineSegment, 0, len(verts))
	for i := 0; i+1 < len(verts); i++ {
		segs = append(segs, LineSegment{Start: verts[i], End: verts[i+1]})
	}
	if o.IsPolygon() {
		segs = append(segs, LineSegment{Start: verts[len(verts)-1], End: verts[0]})
	}
	return segs
}

// ContainsPoint returns whether p lies strictly inside a polygon obstacle, using ray casting.
// Open line chains contain no points.
func (o Obstacle) ContainsPoint(p r2.Point) bool {
	if !o.IsPolygon() {
		return false
	}
	verts := o.vertices()
	inside := false
	for i, j := 0, len(verts)-1; i < len(verts); j, i = i, i+1 {
		vi, vj := verts[i], verts[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) {
			xCross := (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y) + vi.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// Validate checks that the obstacle has at least one vertex and only finite coordinates.
func (o Obstacle) Validate() error {
	if len(o.Vertices) == 0 {
		return errors.New("obstacle has no vertices")
	}
	for i, v := range o.Vertices {
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
			return errors.Errorf("obstacle vertex %d is not finite", i)
		}
	}
	return nil
}

type obstacleJSON struct {
	Vertices [][2]float64 `json:"vertices"`
	Open     bool         `json:"open,omitempty"`
}

// MarshalJSON encodes the obstacle as {"vertices": [[x, y], ...], "open": bool}.
func (o Obstacle) MarshalJSON() ([]byte, error) {
	out := obstacleJSON{Open: o.Open, Vertices: make([][2]float64, 0, len(o.Vertices))}
	for _, v := range o.Vertices {
		out.Vertices = append(out.Vertices, [2]float64{v.X, v.Y})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (o *Obstacle) UnmarshalJSON(data []byte) error {
	var in obstacleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	o.Open = in.Open
	o.Vertices = make([]r2.Point, 0, len(in.Vertices))
	for _, v := range in.Vertices {
		o.Vertices = append(o.Vertices, r2.Point{X: v[0], Y: v[1]})
	}
	return nil
}
