package hybridastar

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/openspace/spatialmath"
	"go.viam.com/openspace/utils"
	"go.viam.com/openspace/vehicle"
)

func TestGridKey(t *testing.T) {
	bounds, err := spatialmath.NewBounds(-5, 20, -5, 5)
	test.That(t, err, test.ShouldBeNil)
	g := newGrid(bounds, 0.3, 0.1)
	test.That(t, g.nx, test.ShouldEqual, int64(85))
	test.That(t, g.ny, test.ShouldEqual, int64(35))
	test.That(t, g.nphi, test.ShouldEqual, int64(63))

	// same cell
	test.That(t, g.key(spatialmath.NewPose2D(1.01, 1.01, 0.01)), test.ShouldEqual, g.key(spatialmath.NewPose2D(1.05, 1.02, 0.05)))
	// heading wraps before discretizing
	test.That(t, g.key(spatialmath.Pose2D{X: 1, Y: 1, Theta: math.Pi}), test.ShouldEqual, g.key(spatialmath.Pose2D{X: 1, Y: 1, Theta: -math.Pi}))

	seen := map[int64]bool{}
	for _, p := range []spatialmath.Pose2D{
		spatialmath.NewPose2D(-5, -5, -math.Pi),
		spatialmath.NewPose2D(-4.6, -5, -math.Pi),
		spatialmath.NewPose2D(-5, -4.6, -math.Pi),
		spatialmath.NewPose2D(-5, -5, -math.Pi+0.15),
		spatialmath.NewPose2D(20, 5, math.Pi-1e-6),
	} {
		k := g.key(p)
		test.That(t, seen[k], test.ShouldBeFalse)
		seen[k] = true
		ix, iy, iphi := g.indices(p)
		test.That(t, ix >= 0 && ix < g.nx, test.ShouldBeTrue)
		test.That(t, iy >= 0 && iy < g.ny, test.ShouldBeTrue)
		test.That(t, iphi >= 0 && iphi < g.nphi, test.ShouldBeTrue)
	}
}

func TestFrontier(t *testing.T) {
	f := map[int]float64{0: 5, 1: 3, 2: 2, 3: 3}
	fOf := func(idx int) float64 { return f[idx] }

	fr := newFrontier()
	fr.push(10, 0, 5)
	fr.push(20, 1, 3)
	fr.push(10, 2, 2) // replaces node 0 for key 10
	fr.push(30, 3, 3)
	test.That(t, fr.len(), test.ShouldEqual, 3)
	idx, ok := fr.lookup(10)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, idx, test.ShouldEqual, 2)

	key, idx, ok := fr.pop(fOf)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, key, test.ShouldEqual, int64(10))
	test.That(t, idx, test.ShouldEqual, 2)

	// ties pop in push order
	key, _, ok = fr.pop(fOf)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, key, test.ShouldEqual, int64(20))
	key, _, ok = fr.pop(fOf)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, key, test.ShouldEqual, int64(30))

	// the stale entry for node 0 is skipped
	_, _, ok = fr.pop(fOf)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, fr.len(), test.ShouldEqual, 0)

	fr.push(40, 1, 3)
	fr.reset()
	_, _, ok = fr.pop(fOf)
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = fr.lookup(40)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestPrimitives(t *testing.T) {
	params := vehicle.DefaultParams()
	prims := primitives(10, params.MaxSteer())
	test.That(t, prims, test.ShouldHaveLength, 10)
	for i, p := range prims {
		test.That(t, p.forward, test.ShouldEqual, i < 5)
		test.That(t, math.Abs(p.steer), test.ShouldBeLessThanOrEqualTo, params.MaxSteer()+1e-12)
	}
	test.That(t, prims[0].steer, test.ShouldAlmostEqual, -params.MaxSteer())
	test.That(t, prims[4].steer, test.ShouldAlmostEqual, params.MaxSteer())
	test.That(t, prims[2].steer, test.ShouldAlmostEqual, 0.)
	test.That(t, prims[7].steer, test.ShouldAlmostEqual, 0.)

	start := spatialmath.NewPose2D(1, 2, 0.3)
	straight := integrate(start, prims[2], params.WheelBase, 0.5, math.Sqrt2*0.3)
	test.That(t, straight, test.ShouldHaveLength, 2)
	test.That(t, straight[0], test.ShouldResemble, start)
	test.That(t, straight[1].X, test.ShouldAlmostEqual, 1+0.5*math.Cos(0.3))
	test.That(t, straight[1].Y, test.ShouldAlmostEqual, 2+0.5*math.Sin(0.3))

	// full left lock in reverse turns the heading the other way at the minimum radius.
	back := integrate(start, prims[9], params.WheelBase, 0.25, 1)
	test.That(t, back, test.ShouldHaveLength, 5)
	end := back[len(back)-1]
	test.That(t, utils.AngleDiff(end.Theta, start.Theta), test.ShouldAlmostEqual, -1/params.MinTurningRadius(), 1e-9)
	for i := 1; i < len(back); i++ {
		chord := back[i].Point().Sub(back[i-1].Point()).Norm()
		test.That(t, chord, test.ShouldBeLessThanOrEqualTo, 0.25)
		test.That(t, chord, test.ShouldBeGreaterThan, 0.24)
	}
}

func TestValidator(t *testing.T) {
	bounds, err := spatialmath.NewBounds(-10, 10, -10, 10)
	test.That(t, err, test.ShouldBeNil)
	obstacles := []spatialmath.Obstacle{
		spatialmath.NewRectangleObstacle(5, 8, -1, 1),
		spatialmath.NewLineChainObstacle(r2.Point{X: -5, Y: 5}, r2.Point{X: 5, Y: 5}),
		spatialmath.NewLineChainObstacle(r2.Point{X: 0, Y: -6}),
	}
	v := NewValidator(bounds, obstacles, vehicle.DefaultParams())

	test.That(t, v.ValidPose(spatialmath.NewPose2D(0, 0, 0)), test.ShouldBeTrue)
	// front bumper reaches the rectangle
	test.That(t, v.ValidPose(spatialmath.NewPose2D(1.5, 0, 0)), test.ShouldBeFalse)
	// rear corner sticks out of the bounds
	test.That(t, v.ValidPose(spatialmath.NewPose2D(-9.5, 0, 0)), test.ShouldBeFalse)
	// wall across the car
	test.That(t, v.ValidPose(spatialmath.NewPose2D(0, 4.5, 0)), test.ShouldBeFalse)
	// point obstacle under the car
	test.That(t, v.ValidPose(spatialmath.NewPose2D(-1, -6, 0)), test.ShouldBeFalse)
	test.That(t, v.ValidPose(spatialmath.Pose2D{X: math.Inf(1)}), test.ShouldBeFalse)

	test.That(t, v.ValidSamples([]spatialmath.Pose2D{
		spatialmath.NewPose2D(0, 0, 0),
		spatialmath.NewPose2D(0.5, 0, 0),
	}), test.ShouldBeTrue)
	test.That(t, v.ValidSamples([]spatialmath.Pose2D{
		spatialmath.NewPose2D(0, 0, 0),
		spatialmath.NewPose2D(1.5, 0, 0),
		spatialmath.NewPose2D(0, 0, 0),
	}), test.ShouldBeFalse)

	// an obstacle under the car and a car inside an obstacle both collide.
	small := NewValidator(bounds, []spatialmath.Obstacle{spatialmath.NewRectangleObstacle(-1, 1, -1, 1)}, vehicle.DefaultParams())
	test.That(t, small.ValidPose(spatialmath.NewPose2D(-0.5, 0, 0)), test.ShouldBeFalse)
	large := NewValidator(bounds, []spatialmath.Obstacle{spatialmath.NewRectangleObstacle(-9, 9, -9, 9)}, vehicle.DefaultParams())
	test.That(t, large.ValidPose(spatialmath.NewPose2D(0, 0, 0)), test.ShouldBeFalse)
}
