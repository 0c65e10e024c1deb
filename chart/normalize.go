package chart

import (
	"math"

	"github.com/dnldd/pricealerts/shared"
)

// FlatPolicy determines how a series with a zero price range is placed.
type FlatPolicy int

const (
	// FailOnFlat rejects flat series with a degenerate price range error.
	FailOnFlat FlatPolicy = iota
	// MidlineOnFlat places every point of a flat series on the vertical midline.
	MidlineOnFlat
)

// String stringifies the provided flat policy.
func (p FlatPolicy) String() string {
	switch p {
	case FailOnFlat:
		return "fail"
	case MidlineOnFlat:
		return "midline"
	default:
		return "unknown"
	}
}

// ParseFlatPolicy parses a flat policy from its string form.
func ParseFlatPolicy(s string) (FlatPolicy, bool) {
	switch s {
	case "", "fail":
		return FailOnFlat, true
	case "midline":
		return MidlineOnFlat, true
	default:
		return FailOnFlat, false
	}
}

type options struct {
	flatPolicy FlatPolicy
}

// Option configures normalization.
type Option func(*options)

// WithFlatPolicy sets the placement policy for flat series.
func WithFlatPolicy(policy FlatPolicy) Option {
	return func(o *options) {
		o.flatPolicy = policy
	}
}

// Path represents a normalized chart: the visible line and the area beneath it.
type Path struct {
	Stroke []shared.NormalizedPoint
	Fill   []shared.NormalizedPoint
}

// Normalize maps the provided price points onto the viewport.
//
// Points are spaced uniformly by index, not by elapsed time, and the highest
// price maps to the top of the viewport. The fill path is the stroke followed by
// the bottom right corner of the viewport, implicitly closed back to the bottom
// left corner. Points must be in ascending time order; they are not sorted.
func Normalize(points []shared.PricePoint, viewport shared.Viewport, opts ...Option) (*Path, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch len(points) {
	case 0:
		return nil, shared.NewChartError(shared.EmptySeries, "no price points provided")
	case 1:
		return nil, shared.NewChartError(shared.InsufficientPoints,
			"at least 2 price points required, got 1")
	}

	if !viewport.Valid() {
		return nil, shared.NewChartError(shared.InvalidViewport,
			"viewport dimensions must be positive, got %vx%v", viewport.Width, viewport.Height)
	}

	for idx := range points {
		price := points[idx].Price
		if math.IsNaN(price) || math.IsInf(price, 0) {
			return nil, shared.NewChartError(shared.InvalidPrice,
				"non-finite price at index %d", idx)
		}
	}

	// Prices are halved before differencing so finite extremes cannot
	// overflow the range to infinity. Halving is exact, so ordinary series
	// normalize identically.
	minPrice, maxPrice := shared.PriceRange(points)
	halfMin := minPrice / 2
	priceRange := maxPrice/2 - halfMin

	flat := priceRange == 0
	if flat && o.flatPolicy != MidlineOnFlat {
		return nil, shared.NewChartError(shared.DegeneratePriceRange,
			"all %d prices equal %v", len(points), minPrice)
	}

	step := viewport.Width / float64(len(points)-1)
	stroke := make([]shared.NormalizedPoint, len(points))
	for idx := range points {
		x := step * float64(idx)
		if idx == len(points)-1 {
			// Pin the last point to the right edge regardless of float drift.
			x = viewport.Width
		}

		y := viewport.Height / 2
		if !flat {
			y = (1 - (points[idx].Price/2-halfMin)/priceRange) * viewport.Height
		}

		stroke[idx] = shared.NormalizedPoint{X: x, Y: y}
	}

	fill := make([]shared.NormalizedPoint, len(stroke), len(stroke)+1)
	copy(fill, stroke)
	fill = append(fill, shared.NormalizedPoint{X: viewport.Width, Y: viewport.Height})

	return &Path{
		Stroke: stroke,
		Fill:   fill,
	}, nil
}

// Translate returns a copy of the path offset by the provided amounts.
func (p *Path) Translate(dx float64, dy float64) *Path {
	shift := func(pts []shared.NormalizedPoint) []shared.NormalizedPoint {
		out := make([]shared.NormalizedPoint, len(pts))
		for idx := range pts {
			out[idx] = shared.NormalizedPoint{X: pts[idx].X + dx, Y: pts[idx].Y + dy}
		}
		return out
	}

	return &Path{
		Stroke: shift(p.Stroke),
		Fill:   shift(p.Fill),
	}
}
