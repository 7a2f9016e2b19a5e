package hybridastar

import (
	"math"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/openspace/utils"
)

// default values for the search, matching the usual open space planner tuning.
const (
	defaultXYGridResolution          = 0.3
	defaultPhiGridResolution         = 0.1
	defaultNextNodeNum               = 10
	defaultStepSize                  = 0.5
	defaultDeltaT                    = 0.5
	defaultForwardPenalty            = 1.0
	defaultBackPenalty               = 1.0
	defaultGearSwitchPenalty         = 10.0
	defaultSteerPenalty              = 100.0
	defaultSteerChangePenalty        = 10.0
	defaultAnalyticExpansionInterval = 1

	// fewer primitives than this cannot steer both ways in both gears.
	minNextNodeNum = 4
)

// Config holds the tuning of the search. It is immutable for the duration of a plan.
type Config struct {
	// Cell size of the position grid, in meters.
	XYGridResolution float64 `json:"xy_grid_resolution"`
	// Cell size of the heading grid, in radians.
	PhiGridResolution float64 `json:"phi_grid_resolution"`
	// Number of motion primitives per expansion; half drive forward, half in reverse.
	NextNodeNum int `json:"next_node_num"`
	// Arc length between samples of a primitive or analytic path, in meters.
	StepSize float64 `json:"step_size"`
	// Time between trajectory points, in seconds.
	DeltaT float64 `json:"delta_t"`

	ForwardPenalty     float64 `json:"traj_forward_penalty"`
	BackPenalty        float64 `json:"traj_back_penalty"`
	GearSwitchPenalty  float64 `json:"traj_gear_switch_penalty"`
	SteerPenalty       float64 `json:"traj_steer_penalty"`
	SteerChangePenalty float64 `json:"traj_steer_change_penalty"`

	// Try the analytic expansion on every n-th expanded node. 1 tries on every node.
	AnalyticExpansionInterval int `json:"analytic_expansion_interval"`
	// Give up after this many expansions. 0 means no limit.
	MaxExpansions int `json:"max_expansions"`
}

// NewDefaultConfig returns the default search tuning.
func NewDefaultConfig() Config {
	return Config{
		XYGridResolution:          defaultXYGridResolution,
		PhiGridResolution:         defaultPhiGridResolution,
		NextNodeNum:               defaultNextNodeNum,
		StepSize:                  defaultStepSize,
		DeltaT:                    defaultDeltaT,
		ForwardPenalty:            defaultForwardPenalty,
		BackPenalty:               defaultBackPenalty,
		GearSwitchPenalty:         defaultGearSwitchPenalty,
		SteerPenalty:              defaultSteerPenalty,
		SteerChangePenalty:        defaultSteerChangePenalty,
		AnalyticExpansionInterval: defaultAnalyticExpansionInterval,
	}
}

// DecodeConfig decodes an attribute map on top of the default config, so that missing attributes
// keep their default value.
func DecodeConfig(attributes map[string]interface{}) (Config, error) {
	conf := NewDefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &conf,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode planner config")
	}
	return conf, nil
}

// Validate ensures all parts of the config are valid.
func (c Config) Validate(path string) error {
	var errs error
	positive := func(field string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = multierr.Append(errs, utils.NewConfigValidationFieldOutOfRangeError(path, field, v, "must be positive"))
		}
	}
	nonNegative := func(field string, v float64) {
		if !(v >= 0) || math.IsInf(v, 0) {
			errs = multierr.Append(errs, utils.NewConfigValidationFieldOutOfRangeError(path, field, v, "must not be negative"))
		}
	}
	positive("xy_grid_resolution", c.XYGridResolution)
	positive("phi_grid_resolution", c.PhiGridResolution)
	positive("step_size", c.StepSize)
	positive("delta_t", c.DeltaT)
	positive("traj_forward_penalty", c.ForwardPenalty)
	positive("traj_back_penalty", c.BackPenalty)
	nonNegative("traj_gear_switch_penalty", c.GearSwitchPenalty)
	nonNegative("traj_steer_penalty", c.SteerPenalty)
	nonNegative("traj_steer_change_penalty", c.SteerChangePenalty)

	if c.NextNodeNum < minNextNodeNum || c.NextNodeNum%2 != 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldOutOfRangeError(
			path, "next_node_num", c.NextNodeNum, "must be even and at least 4"))
	}
	if c.AnalyticExpansionInterval < 1 {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldOutOfRangeError(
			path, "analytic_expansion_interval", c.AnalyticExpansionInterval, "must be at least 1"))
	}
	if c.MaxExpansions < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldOutOfRangeError(
			path, "max_expansions", c.MaxExpansions, "must not be negative"))
	}
	return errs
}

// minPenalty is the cheapest cost per meter of driving, used to scale the heuristics.
func (c Config) minPenalty() float64 {
	return math.Min(c.ForwardPenalty, c.BackPenalty)
}
