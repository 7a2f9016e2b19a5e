package hybridastar

import (
	"math"

	"go.viam.com/openspace/spatialmath"
	"go.viam.com/openspace/utils"
)

// noParent marks the start node of a search.
const noParent = -1

// node is one discretized vehicle state reached during the search. Nodes live in the planner's
// arena and refer to their parent by index.
type node struct {
	pose spatialmath.Pose2D
	// samples traversed by the motion that created this node. The first one is the parent's pose,
	// except for the start node which only holds its own pose.
	samples []spatialmath.Pose2D
	key     int64

	g, h    float64
	forward bool
	steer   float64
	parent  int
}

func (n *node) f() float64 {
	return n.g + n.h
}

// grid discretizes poses into composite integer keys.
type grid struct {
	xMin, yMin    float64
	xyRes, phiRes float64
	nx, ny, nphi  int64
}

func newGrid(bounds spatialmath.Bounds, xyRes, phiRes float64) grid {
	return grid{
		xMin:   bounds.XMin(),
		yMin:   bounds.YMin(),
		xyRes:  xyRes,
		phiRes: phiRes,
		nx:     int64(math.Ceil((bounds.XMax()-bounds.XMin())/xyRes)) + 1,
		ny:     int64(math.Ceil((bounds.YMax()-bounds.YMin())/xyRes)) + 1,
		nphi:   int64(math.Ceil(2 * math.Pi / phiRes)),
	}
}

// indices returns the cell of a pose inside the bounds the grid was built for.
func (g grid) indices(p spatialmath.Pose2D) (ix, iy, iphi int64) {
	ix = int64(math.Floor((p.X - g.xMin) / g.xyRes))
	iy = int64(math.Floor((p.Y - g.yMin) / g.xyRes))
	iphi = int64(math.Floor((utils.NormalizeAngle(p.Theta) + math.Pi) / g.phiRes))
	if iphi >= g.nphi {
		iphi = g.nphi - 1
	}
	return ix, iy, iphi
}

// key combines the cell indices in mixed radix, so equal keys mean equal cells.
func (g grid) key(p spatialmath.Pose2D) int64 {
	ix, iy, iphi := g.indices(p)
	return iphi*(g.nx*g.ny) + iy*g.nx + ix
}
