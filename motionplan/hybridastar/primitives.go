package hybridastar

import (
	"math"

	"go.viam.com/openspace/spatialmath"
)

// straightCurvature is the curvature below which a primitive is integrated as a straight line.
const straightCurvature = 1e-9

// primitive is one (steering, gear) combination applied for a fixed arc length.
type primitive struct {
	steer   float64
	forward bool
}

// primitives returns n combinations: the first half forward and the second half in reverse, each
// half spreading the steering uniformly over [-maxSteer, maxSteer].
func primitives(n int, maxSteer float64) []primitive {
	half := n / 2
	out := make([]primitive, 0, n)
	for _, forward := range []bool{true, false} {
		for i := 0; i < half; i++ {
			steer := -maxSteer + 2*maxSteer*float64(i)/float64(half-1)
			out = append(out, primitive{steer: steer, forward: forward})
		}
	}
	return out
}

// integrate drives the bicycle model from pose along the primitive. It returns the start pose
// followed by one sample per step of stepSize, covering at least arc meters.
func integrate(pose spatialmath.Pose2D, p primitive, wheelBase, stepSize, arc float64) []spatialmath.Pose2D {
	steps := int(math.Ceil(arc / stepSize))
	if steps < 1 {
		steps = 1
	}
	d := stepSize
	if !p.forward {
		d = -stepSize
	}
	kappa := math.Tan(p.steer) / wheelBase

	samples := make([]spatialmath.Pose2D, 0, steps+1)
	samples = append(samples, pose)
	x, y, phi := pose.X, pose.Y, pose.Theta
	for i := 0; i < steps; i++ {
		if math.Abs(kappa) < straightCurvature {
			x += d * math.Cos(phi)
			y += d * math.Sin(phi)
		} else {
			next := phi + d*kappa
			x += (math.Sin(next) - math.Sin(phi)) / kappa
			y -= (math.Cos(next) - math.Cos(phi)) / kappa
			phi = next
		}
		samples = append(samples, spatialmath.NewPose2D(x, y, phi))
	}
	return samples
}
