package widget

import (
	"github.com/dnldd/pricealerts/chart"
	"github.com/dnldd/pricealerts/shared"
)

const (
	// headlineSize is the font size of the asset name.
	headlineSize = 17
	// subheadlineSize is the font size of the price.
	subheadlineSize = 15
	// footnoteSize is the font size of the percent change.
	footnoteSize = 13
	// lineGap is the vertical gap between stacked text lines.
	lineGap = 4
)

// Style represents the visual configuration of a price card.
type Style struct {
	// Padding is the inset of the card content from its edges.
	Padding float64
	// CornerRadius is the radius of the card corners.
	CornerRadius float64
	// Background is the card background colour.
	Background string
	// TextColor is the colour of the name and price text.
	TextColor string
	// LineColor is the colour of the chart line and area gradient.
	LineColor string
	// LineWidth is the stroke width of the chart line.
	LineWidth float64
	// BullishColor is the percent change colour for rising prices.
	BullishColor string
	// BearishColor is the percent change colour for flat or falling prices.
	BearishColor string
	// AreaOpacity is the opacity at the top of the area gradient.
	AreaOpacity float64
	// PriceColumnRatio is the share of the content width used by the price column.
	PriceColumnRatio float64
	// FlatPolicy determines how flat price series are placed.
	FlatPolicy chart.FlatPolicy
}

// DefaultStyle returns the default price card style.
func DefaultStyle() Style {
	return Style{
		Padding:          16,
		CornerRadius:     20,
		Background:       "#000000",
		TextColor:        "#FFFFFF",
		LineColor:        "#34C759",
		LineWidth:        2,
		BullishColor:     "#34C759",
		BearishColor:     "#FF3B30",
		AreaOpacity:      0.2,
		PriceColumnRatio: 0.35,
		FlatPolicy:       chart.FailOnFlat,
	}
}

// withDefaults fills unset style fields from the default style.
func (s Style) withDefaults() Style {
	def := DefaultStyle()
	if s == (Style{}) {
		return def
	}
	if s.Padding <= 0 {
		s.Padding = def.Padding
	}
	if s.CornerRadius < 0 {
		s.CornerRadius = def.CornerRadius
	}
	if s.Background == "" {
		s.Background = def.Background
	}
	if s.TextColor == "" {
		s.TextColor = def.TextColor
	}
	if s.LineColor == "" {
		s.LineColor = def.LineColor
	}
	if s.LineWidth <= 0 {
		s.LineWidth = def.LineWidth
	}
	if s.BullishColor == "" {
		s.BullishColor = def.BullishColor
	}
	if s.BearishColor == "" {
		s.BearishColor = def.BearishColor
	}
	if s.AreaOpacity <= 0 || s.AreaOpacity > 1 {
		s.AreaOpacity = def.AreaOpacity
	}
	if s.PriceColumnRatio <= 0 || s.PriceColumnRatio >= 1 {
		s.PriceColumnRatio = def.PriceColumnRatio
	}

	return s
}

// sentimentColor returns the percent change colour for the provided asset.
func (s Style) sentimentColor(asset *shared.Asset) string {
	if asset.FetchSentiment() == shared.Bullish {
		return s.BullishColor
	}

	return s.BearishColor
}
