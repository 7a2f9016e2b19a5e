package spatialmath

import (
	"encoding/json"
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Bounds is the axis-aligned rectangle the vehicle must stay within.
type Bounds struct {
	rect r2.Rect
}

// NewBounds returns the bounds [xmin, xmax] x [ymin, ymax].
func NewBounds(xmin, xmax, ymin, ymax float64) (Bounds, error) {
	for _, v := range []float64{xmin, xmax, ymin, ymax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Bounds{}, errors.New("bounds must be finite")
		}
	}
	if xmin >= xmax || ymin >= ymax {
		return Bounds{}, errors.Errorf("bounds [%v, %v, %v, %v] are empty", xmin, xmax, ymin, ymax)
	}
	return Bounds{rect: r2.Rect{X: r1.Interval{Lo: xmin, Hi: xmax}, Y: r1.Interval{Lo: ymin, Hi: ymax}}}, nil
}

// BoundsFromSlice parses bounds in the [xmin, xmax, ymin, ymax] layout.
func BoundsFromSlice(xy []float64) (Bounds, error) {
	if len(xy) != 4 {
		return Bounds{}, errors.Errorf("bounds need 4 values [xmin, xmax, ymin, ymax], got %d", len(xy))
	}
	return NewBounds(xy[0], xy[1], xy[2], xy[3])
}

// XMin returns the lower x limit.
func (b Bounds) XMin() float64 { return b.rect.X.Lo }

// XMax returns the upper x limit.
func (b Bounds) XMax() float64 { return b.rect.X.Hi }

// YMin returns the lower y limit.
func (b Bounds) YMin() float64 { return b.rect.Y.Lo }

// YMax returns the upper y limit.
func (b Bounds) YMax() float64 { return b.rect.Y.Hi }

// Rect returns the bounds as an r2.Rect.
func (b Bounds) Rect() r2.Rect { return b.rect }

// IsEmpty is true for the zero value.
func (b Bounds) IsEmpty() bool {
	return b.rect.IsEmpty() || b.rect.X.Length() == 0 || b.rect.Y.Length() == 0
}

// Contains returns whether the point lies inside the closed bounds.
func (b Bounds) Contains(p r2.Point) bool {
	return b.rect.ContainsPoint(p)
}

// Slice returns the bounds as [xmin, xmax, ymin, ymax].
func (b Bounds) Slice() []float64 {
	return []float64{b.XMin(), b.XMax(), b.YMin(), b.YMax()}
}

// MarshalJSON encodes the bounds as [xmin, xmax, ymin, ymax].
func (b Bounds) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Slice())
}

// UnmarshalJSON decodes bounds from [xmin, xmax, ymin, ymax].
func (b *Bounds) UnmarshalJSON(data []byte) error {
	var xy []float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	parsed, err := BoundsFromSlice(xy)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
