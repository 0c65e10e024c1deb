package widget

import (
	"fmt"

	"github.com/dnldd/pricealerts/chart"
	"github.com/dnldd/pricealerts/shared"
)

const (
	// areaGradientID is the id of the chart area gradient.
	areaGradientID = "area"
	// glowFilterID is the id of the chart line glow.
	glowFilterID = "glow"
	// cardShadowID is the id of the card shadow.
	cardShadowID = "cardshadow"

	// glow* shape the chart line glow.
	glowOpacity = 0.5
	glowOffset  = 10
	glowBlur    = 5
	// cardShadow* shape the card shadow.
	cardShadowColor   = "#000000"
	cardShadowOpacity = 0.33
	cardShadowBlur    = 5
)

// CardConfig represents the configuration of a price card.
type CardConfig struct {
	// Asset is the displayed asset snapshot.
	Asset shared.Asset
	// Points is the asset's price history in ascending time order.
	Points []shared.PricePoint
	// Viewport is the size of the card.
	Viewport shared.Viewport
	// Style is the card style, defaults apply to unset fields.
	Style Style
}

// Rect represents a rectangle in card space.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Card represents a rendered price card: the asset name above its chart on the
// left, the price and percent change on the right.
type Card struct {
	Asset     shared.Asset
	Viewport  shared.Viewport
	Style     Style
	ChartArea Rect
	// Chart is the normalized chart path in card space.
	Chart *chart.Path
}

// layoutChartArea returns the chart area of a card with the provided size and style.
func layoutChartArea(viewport shared.Viewport, style Style) Rect {
	contentWidth := viewport.Width - style.Padding*4
	top := style.Padding + headlineSize + lineGap*2

	return Rect{
		X:      style.Padding * 2,
		Y:      top,
		Width:  contentWidth * (1 - style.PriceColumnRatio),
		Height: viewport.Height - top - style.Padding,
	}
}

// RenderCard lays out a price card and normalizes its chart.
func RenderCard(cfg *CardConfig) (*Card, error) {
	if !cfg.Viewport.Valid() {
		return nil, shared.NewChartError(shared.InvalidViewport,
			"card dimensions must be positive, got %vx%v", cfg.Viewport.Width, cfg.Viewport.Height)
	}

	style := cfg.Style.withDefaults()
	area := layoutChartArea(cfg.Viewport, style)
	chartViewport := shared.Viewport{Width: area.Width, Height: area.Height}
	if !chartViewport.Valid() {
		return nil, shared.NewChartError(shared.InvalidViewport,
			"card of %vx%v leaves no room for the chart", cfg.Viewport.Width, cfg.Viewport.Height)
	}

	path, err := chart.Normalize(cfg.Points, chartViewport, chart.WithFlatPolicy(style.FlatPolicy))
	if err != nil {
		return nil, fmt.Errorf("normalizing %s chart: %w", cfg.Asset.Name, err)
	}

	return &Card{
		Asset:     cfg.Asset,
		Viewport:  cfg.Viewport,
		Style:     style,
		ChartArea: area,
		Chart:     path.Translate(area.X, area.Y),
	}, nil
}

// write renders the card into the provided svg writer.
func (c *Card) write(w *svgWriter) {
	style := c.Style
	right := c.Viewport.Width - style.Padding*2

	w.gradient(areaGradientID, style.LineColor, style.AreaOpacity)
	w.dropShadow(glowFilterID, style.LineColor, glowOpacity, glowOffset, glowBlur)
	w.dropShadow(cardShadowID, cardShadowColor, cardShadowOpacity, 0, cardShadowBlur)
	w.filteredRect(0, 0, c.Viewport.Width, c.Viewport.Height, style.CornerRadius, style.Background, cardShadowID)

	nameBaseline := style.Padding + headlineSize
	w.text(style.Padding*2, nameBaseline, "start", headlineSize, true, style.TextColor, c.Asset.Name)

	priceBaseline := style.Padding + subheadlineSize
	w.text(right, priceBaseline, "end", subheadlineSize, true, style.TextColor, c.Asset.FormattedPrice())

	percentBaseline := priceBaseline + lineGap + footnoteSize
	w.text(right, percentBaseline, "end", footnoteSize, false, style.sentimentColor(&c.Asset),
		c.Asset.FormattedPercentChange())

	w.area(c.Chart.FillData(), areaGradientID)
	w.line(c.Chart.StrokeData(), style.LineColor, style.LineWidth, glowFilterID)
}

// SVG renders the card as a standalone svg document.
func (c *Card) SVG() []byte {
	var w svgWriter
	w.open(c.Viewport.Width, c.Viewport.Height)
	c.write(&w)
	return w.close()
}
