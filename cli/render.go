package cli

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/openspace/motionplan/hybridastar"
	"go.viam.com/openspace/spatialmath"
)

const (
	defaultPixelsPerMeter = 20.
	maxImageSide          = 4096.
	marginPixels          = 10.
	// a footprint is drawn every this many trajectory points.
	footprintEvery = 5
)

// RenderAction plans a scenario and draws the map, obstacles and trajectory. The scene is written
// even if planning fails, in which case the planning error is returned afterwards.
func RenderAction(c *cli.Context) error {
	scenario, traj, _, planErr := planScenario(c)
	if scenario == nil {
		return planErr
	}
	img := Render(scenario, traj, c.Float64(renderFlagScale))
	if err := gg.SavePNG(c.Path(renderFlagOut), img); err != nil {
		return errors.Wrapf(err, "cannot write %q", c.Path(renderFlagOut))
	}
	if planErr != nil {
		warningf(c.App.ErrWriter, "wrote %s without a trajectory", c.Path(renderFlagOut))
		return planErr
	}
	printf(c.App.Writer, "wrote %s", c.Path(renderFlagOut))
	if path := c.Path(renderFlagProfile); path != "" {
		if err := SaveProfile(traj, path); err != nil {
			return err
		}
		printf(c.App.Writer, "wrote %s", path)
	}
	return nil
}

// canvas maps world coordinates to pixels, with +Y pointing up.
type canvas struct {
	*gg.Context
	bounds spatialmath.Bounds
	scale  float64
}

func newCanvas(bounds spatialmath.Bounds, scale float64) *canvas {
	if !(scale > 0) {
		scale = defaultPixelsPerMeter
	}
	width := bounds.XMax() - bounds.XMin()
	height := bounds.YMax() - bounds.YMin()
	if side := math.Max(width, height) * scale; side > maxImageSide {
		scale *= maxImageSide / side
	}
	w := int(math.Ceil(width*scale + 2*marginPixels))
	h := int(math.Ceil(height*scale + 2*marginPixels))
	return &canvas{Context: gg.NewContext(w, h), bounds: bounds, scale: scale}
}

func (cv *canvas) pixel(p r2.Point) (float64, float64) {
	x := marginPixels + (p.X-cv.bounds.XMin())*cv.scale
	y := marginPixels + (cv.bounds.YMax()-p.Y)*cv.scale
	return x, y
}

func (cv *canvas) path(points []r2.Point, closed bool) {
	cv.NewSubPath()
	for _, p := range points {
		cv.LineTo(cv.pixel(p))
	}
	if closed {
		cv.ClosePath()
	}
}

// Render draws the scenario and, if not nil, the trajectory planned for it.
func Render(scenario *Scenario, traj *hybridastar.Trajectory, scale float64) image.Image {
	cv := newCanvas(scenario.Bounds, scale)
	cv.SetRGB(1, 1, 1)
	cv.Clear()

	cv.SetRGB(0, 0, 0)
	cv.SetLineWidth(2)
	corners := scenario.Bounds.Rect().Vertices()
	cv.path(corners[:], true)
	cv.Stroke()

	for _, o := range scenario.Obstacles {
		if o.IsPolygon() {
			cv.SetRGB(0.5, 0.5, 0.5)
			cv.path(o.Vertices, true)
			cv.Fill()
			continue
		}
		cv.SetRGB(0.3, 0.3, 0.3)
		cv.SetLineWidth(3)
		for _, s := range o.Segments() {
			cv.path([]r2.Point{s.Start, s.End}, false)
		}
		cv.Stroke()
	}

	if traj != nil {
		drawTrajectory(cv, scenario, traj)
	}
	drawPose(cv, scenario.Start, 0, 0.6, 0)
	drawPose(cv, scenario.Goal, 0.8, 0, 0)
	return cv.Image()
}

func drawTrajectory(cv *canvas, scenario *Scenario, traj *hybridastar.Trajectory) {
	cv.SetLineWidth(1)
	cv.SetRGBA(0, 0, 1, 0.3)
	for i := 0; i < traj.Len(); i += footprintEvery {
		box, err := scenario.Vehicle.Footprint(traj.Pose(i))
		if err != nil {
			continue
		}
		corners := box.Corners()
		cv.path(corners[:], true)
		cv.Stroke()
	}

	cv.SetLineWidth(2)
	for _, piece := range traj.Partition() {
		if piece.Gear[0] == hybridastar.GearForward {
			cv.SetRGB(0, 0, 1)
		} else {
			cv.SetRGB(1, 0.5, 0)
		}
		points := make([]r2.Point, piece.Len())
		for i := range points {
			points[i] = piece.Pose(i).Point()
		}
		cv.path(points, false)
		cv.Stroke()
	}
}

func drawPose(cv *canvas, pose spatialmath.Pose2D, r, g, b float64) {
	cv.SetRGB(r, g, b)
	x, y := cv.pixel(pose.Point())
	cv.DrawCircle(x, y, 4)
	cv.Fill()
	cv.SetLineWidth(2)
	cv.MoveTo(x, y)
	cv.LineTo(cv.pixel(pose.Point().Add(pose.Heading())))
	cv.Stroke()
}
