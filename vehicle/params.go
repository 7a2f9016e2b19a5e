// Package vehicle describes the car-like vehicle the planner plans for: its footprint and steering
// limits. Positions always refer to the center of the rear axle.
package vehicle

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/openspace/spatialmath"
	"go.viam.com/openspace/utils"
)

// Params are the geometric and steering properties of a vehicle.
type Params struct {
	// Distance between the front and rear axles, in meters.
	WheelBase float64 `json:"wheel_base"`
	// Overall width, in meters.
	Width float64 `json:"width"`
	// Distance from the rear axle to the front bumper, in meters.
	FrontEdgeToCenter float64 `json:"front_edge_to_center"`
	// Distance from the rear axle to the rear bumper, in meters.
	BackEdgeToCenter float64 `json:"back_edge_to_center"`
	// Maximum steering wheel angle, in radians.
	MaxSteerAngle float64 `json:"max_steer_angle"`
	// Ratio between steering wheel angle and front wheel angle.
	SteerRatio float64 `json:"steer_ratio"`
}

// DefaultParams returns the parameters of a mid-size sedan.
func DefaultParams() Params {
	return Params{
		WheelBase:         2.8448,
		Width:             2.11,
		FrontEdgeToCenter: 3.89,
		BackEdgeToCenter:  1.043,
		MaxSteerAngle:     8.20304748437,
		SteerRatio:        16,
	}
}

// Validate ensures all parts of the params are valid.
func (p Params) Validate(path string) error {
	var errs error
	positive := func(field string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = multierr.Append(errs, utils.NewConfigValidationFieldOutOfRangeError(path, field, v, "must be positive"))
		}
	}
	positive("wheel_base", p.WheelBase)
	positive("width", p.Width)
	positive("front_edge_to_center", p.FrontEdgeToCenter)
	positive("max_steer_angle", p.MaxSteerAngle)
	positive("steer_ratio", p.SteerRatio)
	if p.BackEdgeToCenter < 0 || math.IsNaN(p.BackEdgeToCenter) {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldOutOfRangeError(
			path, "back_edge_to_center", p.BackEdgeToCenter, "must not be negative"))
	}
	if errs == nil && p.MaxSteer() >= math.Pi/2 {
		errs = utils.NewConfigValidationError(path, errors.New("max front wheel angle must be below 90 degrees"))
	}
	return errs
}

// Length returns the bumper to bumper length.
func (p Params) Length() float64 {
	return p.FrontEdgeToCenter + p.BackEdgeToCenter
}

// MaxSteer returns the maximum front wheel angle, in radians.
func (p Params) MaxSteer() float64 {
	return p.MaxSteerAngle / p.SteerRatio
}

// MinTurningRadius returns the radius of the tightest circle the rear axle can follow.
func (p Params) MinTurningRadius() float64 {
	return p.WheelBase / math.Tan(p.MaxSteer())
}

// Footprint returns the box the vehicle occupies when its rear axle is at pose.
func (p Params) Footprint(pose spatialmath.Pose2D) (*spatialmath.Box, error) {
	shift := (p.FrontEdgeToCenter - p.BackEdgeToCenter) / 2
	center := pose.Point().Add(pose.Heading().Mul(shift))
	return spatialmath.NewBox(center, pose.Theta, p.Length(), p.Width)
}

// InscribedRadius returns the radius of the largest circle around the rear axle contained in the footprint.
func (p Params) InscribedRadius() float64 {
	return math.Min(p.Width/2, math.Min(p.FrontEdgeToCenter, p.BackEdgeToCenter))
}

// Provider supplies vehicle parameters. Implementations must return the same value on every call
// for the duration of a plan.
type Provider interface {
	VehicleParams() Params
}

// StaticProvider is a Provider returning a fixed set of params.
type StaticProvider Params

// VehicleParams returns the stored params.
func (s StaticProvider) VehicleParams() Params {
	return Params(s)
}
