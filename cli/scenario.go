package cli

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/openspace/logging"
	"go.viam.com/openspace/motionplan/hybridastar"
	"go.viam.com/openspace/spatialmath"
	"go.viam.com/openspace/vehicle"
)

// Scenario is a planning problem read from a JSON file. Vehicle fields left out keep their
// defaults, and Planner is an attribute map applied on top of the default planner config.
type Scenario struct {
	Start     spatialmath.Pose2D     `json:"start"`
	Goal      spatialmath.Pose2D     `json:"goal"`
	Bounds    spatialmath.Bounds     `json:"bounds"`
	Obstacles []spatialmath.Obstacle `json:"obstacles"`
	Vehicle   vehicle.Params         `json:"vehicle"`
	Planner   map[string]interface{} `json:"planner,omitempty"`
}

// ParseScenario decodes a scenario, filling in the default vehicle.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario := &Scenario{Vehicle: vehicle.DefaultParams()}
	if err := json.Unmarshal(data, scenario); err != nil {
		return nil, errors.Wrap(err, "cannot parse scenario")
	}
	if scenario.Bounds.IsEmpty() {
		return nil, errors.New("scenario is missing bounds")
	}
	return scenario, nil
}

// LoadScenario reads and decodes the scenario at path.
func LoadScenario(path string) (*Scenario, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read scenario %q", path)
	}
	return ParseScenario(data)
}

// loadAttributes reads a JSON object of planner attributes from path.
func loadAttributes(path string) (map[string]interface{}, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read planner config %q", path)
	}
	attrs := map[string]interface{}{}
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, errors.Wrapf(err, "cannot parse planner config %q", path)
	}
	return attrs, nil
}

// PlannerConfig merges the scenario's planner attributes with overrides, which win on conflicts,
// and decodes the result.
func (s *Scenario) PlannerConfig(overrides map[string]interface{}) (hybridastar.Config, error) {
	return hybridastar.DecodeConfig(lo.Assign(s.Planner, overrides))
}

// NewPlanner builds a planner for the scenario's vehicle.
func (s *Scenario) NewPlanner(overrides map[string]interface{}, logger logging.Logger) (*hybridastar.Planner, error) {
	cfg, err := s.PlannerConfig(overrides)
	if err != nil {
		return nil, err
	}
	return hybridastar.NewPlannerFromProvider(cfg, vehicle.StaticProvider(s.Vehicle), logger)
}
