package cli

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/urfave/cli/v2"

	"go.viam.com/openspace/motionplan/hybridastar"
	"go.viam.com/openspace/spatialmath"
	"go.viam.com/openspace/vehicle"
)

// scenarioDocument mirrors the JSON layout ParseScenario accepts.
type scenarioDocument struct {
	Start     spatialmath.Pose2D  `json:"start" jsonschema:"required,description=rear axle pose to start from"`
	Goal      spatialmath.Pose2D  `json:"goal" jsonschema:"required,description=rear axle pose to reach"`
	Bounds    []float64           `json:"bounds" jsonschema:"required,minItems=4,maxItems=4,description=[xmin xmax ymin ymax]"`
	Obstacles []obstacleDocument  `json:"obstacles,omitempty"`
	Vehicle   *vehicle.Params     `json:"vehicle,omitempty" jsonschema:"description=overrides of the default vehicle"`
	Planner   *hybridastar.Config `json:"planner,omitempty" jsonschema:"description=overrides of the default planner config"`
}

type obstacleDocument struct {
	Vertices [][]float64 `json:"vertices" jsonschema:"required,description=[x y] pairs in order"`
	Open     bool        `json:"open,omitempty" jsonschema:"description=line chain whose ends are not joined"`
}

// ScenarioSchema returns the JSON schema of scenario files.
func ScenarioSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{RequiredFromJSONSchemaTags: true}
	return r.Reflect(&scenarioDocument{})
}

// SchemaAction prints the JSON schema of scenario files.
func SchemaAction(c *cli.Context) error {
	data, err := json.MarshalIndent(ScenarioSchema(), "", "  ")
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", data)
	return nil
}
