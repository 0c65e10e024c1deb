package shared

import "math"

// Viewport represents the pixel space rectangle a chart is rendered into.
type Viewport struct {
	Width  float64
	Height float64
}

// Valid asserts the viewport has positive, finite dimensions.
func (v Viewport) Valid() bool {
	for _, dim := range []float64{v.Width, v.Height} {
		if math.IsNaN(dim) || math.IsInf(dim, 0) || dim <= 0 {
			return false
		}
	}

	return true
}

// NormalizedPoint represents a point in viewport pixel space.
type NormalizedPoint struct {
	X float64
	Y float64
}
