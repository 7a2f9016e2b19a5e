package cli

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.viam.com/openspace/motionplan/hybridastar"
)

// SaveProfile plots speed, acceleration and steering against the distance driven. The image format
// follows the extension of path.
func SaveProfile(traj *hybridastar.Trajectory, path string) error {
	p := plot.New()
	p.Title.Text = "Trajectory profile"
	p.X.Label.Text = "distance (m)"
	p.Legend.Top = true

	series := func(values []float64) plotter.XYs {
		xys := make(plotter.XYs, traj.Len())
		for i := range xys {
			xys[i].X = traj.AccumulatedS[i]
			xys[i].Y = values[i]
		}
		return xys
	}
	if err := plotutil.AddLines(p,
		"speed (m/s)", series(traj.V),
		"accel (m/s^2)", series(traj.A),
		"steer (rad)", series(traj.Steer),
	); err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "cannot write profile %q", path)
	}
	return nil
}
