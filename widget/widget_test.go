package widget

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dnldd/pricealerts/chart"
	"github.com/dnldd/pricealerts/shared"
	"github.com/peterldowns/testy/assert"
)

// testPoints returns a small rising and falling price series.
func testPoints() []shared.PricePoint {
	start := time.Date(2024, 1, 13, 12, 0, 0, 0, time.UTC)
	prices := []float64{0.3, 0.5, 0.4, 0.6, 0.7, 0.5}
	points := make([]shared.PricePoint, len(prices))
	for idx := range prices {
		points[idx] = shared.PricePoint{Time: start.Add(time.Minute * time.Duration(idx)), Price: prices[idx]}
	}

	return points
}

// wellFormed asserts the provided document parses as xml.
func wellFormed(t *testing.T, doc []byte) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(string(doc)))
	for {
		_, err := dec.Token()
		if err != nil {
			if err != io.EOF {
				t.Errorf("malformed svg: %v", err)
			}
			return
		}
	}
}

func TestRenderCard(t *testing.T) {
	cfg := &CardConfig{
		Asset:    shared.Asset{Name: "BTC", CurrentPrice: 30016, PercentChange: 3.4},
		Points:   testPoints(),
		Viewport: shared.Viewport{Width: 360, Height: 160},
	}

	card, err := RenderCard(cfg)
	assert.NoError(t, err)

	// Ensure unset styles fall back to the defaults.
	assert.Equal(t, card.Style, DefaultStyle())

	// Ensure the chart is laid out inside its area below the name.
	area := card.ChartArea
	assert.Equal(t, area.X, float64(32))
	assert.Equal(t, area.Y, float64(41))
	assert.Equal(t, area.Height, float64(103))
	assert.Equal(t, len(card.Chart.Stroke), len(cfg.Points))
	assert.Equal(t, card.Chart.Stroke[0].X, area.X)
	for _, pt := range card.Chart.Stroke {
		if pt.X < area.X || pt.X > area.X+area.Width+1e-9 {
			t.Errorf("x %v outside chart area", pt.X)
		}
		if pt.Y < area.Y || pt.Y > area.Y+area.Height+1e-9 {
			t.Errorf("y %v outside chart area", pt.Y)
		}
	}

	// Ensure the highest price sits on top of the chart area.
	assert.Equal(t, card.Chart.Stroke[4].Y, area.Y)

	doc := string(card.SVG())
	wellFormed(t, []byte(doc))
	assert.True(t, strings.Contains(doc, ">BTC</text>"))
	assert.True(t, strings.Contains(doc, ">$30016.00</text>"))
	assert.True(t, strings.Contains(doc, `fill="#34C759">3.40%</text>`))
	assert.True(t, strings.Contains(doc, `stroke-linecap="round"`))
	assert.True(t, strings.Contains(doc, `stop-opacity="0.2"`))
	assert.True(t, strings.Contains(doc, card.Chart.StrokeData()))

	// Ensure the line glows and the card casts a shadow.
	assert.True(t, strings.Contains(doc, `<filter id="glow"`))
	assert.True(t, strings.Contains(doc, `flood-color="#34C759" flood-opacity="0.5"`))
	assert.True(t, strings.Contains(doc, `<filter id="cardshadow"`))
	assert.True(t, strings.Contains(doc, `stroke-linejoin="round" filter="url(#glow)"/>`))
	assert.True(t, strings.Contains(doc, `filter="url(#cardshadow)"/>`))
	assert.Equal(t, strings.Count(doc, "<feDropShadow"), 2)
}

func TestRenderCardBearish(t *testing.T) {
	card, err := RenderCard(&CardConfig{
		Asset:    shared.Asset{Name: "ETH <classic>", CurrentPrice: 20, PercentChange: -1.5},
		Points:   testPoints(),
		Viewport: shared.Viewport{Width: 300, Height: 120},
	})
	assert.NoError(t, err)

	// Ensure falling prices are coloured red and text is escaped.
	doc := string(card.SVG())
	wellFormed(t, []byte(doc))
	assert.True(t, strings.Contains(doc, `fill="#FF3B30">-1.50%</text>`))
	assert.True(t, strings.Contains(doc, "ETH &lt;classic&gt;"))
}

func TestRenderCardErrors(t *testing.T) {
	asset := shared.Asset{Name: "BTC"}

	tests := []struct {
		name     string
		cfg      *CardConfig
		wantKind shared.ErrorKind
	}{
		{
			name:     "invalid viewport",
			cfg:      &CardConfig{Asset: asset, Points: testPoints(), Viewport: shared.Viewport{}},
			wantKind: shared.InvalidViewport,
		},
		{
			name:     "no room for the chart",
			cfg:      &CardConfig{Asset: asset, Points: testPoints(), Viewport: shared.Viewport{Width: 300, Height: 40}},
			wantKind: shared.InvalidViewport,
		},
		{
			name:     "no points",
			cfg:      &CardConfig{Asset: asset, Viewport: shared.Viewport{Width: 300, Height: 120}},
			wantKind: shared.EmptySeries,
		},
		{
			name:     "single point",
			cfg:      &CardConfig{Asset: asset, Points: testPoints()[:1], Viewport: shared.Viewport{Width: 300, Height: 120}},
			wantKind: shared.InsufficientPoints,
		},
		{
			name: "flat series",
			cfg: &CardConfig{Asset: asset, Points: []shared.PricePoint{{Price: 5}, {Price: 5}},
				Viewport: shared.Viewport{Width: 300, Height: 120}},
			wantKind: shared.DegeneratePriceRange,
		},
	}

	for _, test := range tests {
		_, err := RenderCard(test.cfg)
		if !errors.Is(err, test.wantKind) {
			t.Errorf("%s: expected %s error, got %v", test.name, test.wantKind.String(), err)
		}
	}
}

func TestRenderCardMidline(t *testing.T) {
	style := DefaultStyle()
	style.FlatPolicy = chart.MidlineOnFlat

	card, err := RenderCard(&CardConfig{
		Asset:    shared.Asset{Name: "USDC", CurrentPrice: 1},
		Points:   []shared.PricePoint{{Price: 1}, {Price: 1}, {Price: 1}},
		Viewport: shared.Viewport{Width: 300, Height: 120},
		Style:    style,
	})
	assert.NoError(t, err)

	mid := card.ChartArea.Y + card.ChartArea.Height/2
	for _, pt := range card.Chart.Stroke {
		assert.Equal(t, pt.Y, mid)
	}
}

func TestStyleDefaults(t *testing.T) {
	style := Style{LineColor: "#00FF00", CornerRadius: 0, Padding: 8}.withDefaults()
	assert.Equal(t, style.LineColor, "#00FF00")
	assert.Equal(t, style.Padding, float64(8))
	assert.Equal(t, style.CornerRadius, float64(0))
	assert.Equal(t, style.LineWidth, float64(2))
	assert.Equal(t, style.PriceColumnRatio, 0.35)
}

func TestParseView(t *testing.T) {
	tests := []struct {
		input   string
		want    View
		wantErr bool
	}{
		{"notification", Notification, false},
		{"compact", Compact, false},
		{"expanded", Expanded, false},
		{"minimal", Minimal, false},
		{"island", Notification, true},
	}

	for _, test := range tests {
		view, err := ParseView(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("%s: unexpected error state: %v", test.input, err)
			continue
		}
		if !test.wantErr && view.String() != test.input {
			t.Errorf("%s: expected %s, got %s", test.input, test.input, view.String())
		}
		if view != test.want {
			t.Errorf("%s: expected view %d, got %d", test.input, test.want, view)
		}
	}

	assert.Equal(t, View(42).String(), "unknown")
}

func TestRenderActivity(t *testing.T) {
	attrs := Attributes{AssetName: "bitcoin", AssetTicker: "btc", Price: 30016, PercentChange: 3.28}

	tests := []struct {
		name         string
		view         View
		viewport     shared.Viewport
		points       []shared.PricePoint
		wantLeading  string
		wantTrailing string
		wantCard     bool
		wantActions  bool
		wantText     []string
	}{
		{
			name:     "notification",
			view:     Notification,
			viewport: shared.Viewport{Width: 360, Height: 160},
			points:   testPoints(),
			wantCard: true,
			wantText: []string{">bitcoin</text>", ">$30016.00</text>"},
		},
		{
			name:         "compact",
			view:         Compact,
			viewport:     shared.Viewport{Width: 200, Height: 36},
			wantLeading:  "BTC",
			wantTrailing: "+3.28%",
			wantText:     []string{">BTC</text>", ">+3.28%</text>"},
		},
		{
			name:        "minimal",
			view:        Minimal,
			viewport:    shared.Viewport{Width: 36, Height: 36},
			wantLeading: "BTC",
			wantText:    []string{">BTC</text>"},
		},
		{
			name:        "expanded",
			view:        Expanded,
			viewport:    shared.Viewport{Width: 360, Height: 220},
			points:      testPoints(),
			wantCard:    true,
			wantActions: true,
			wantText: []string{">Buy</text>", ">Sell</text>", ">price alert</text>",
				"<g transform=\"translate(0 48)\">"},
		},
	}

	for _, test := range tests {
		p, err := RenderActivity(&ActivityConfig{
			Attributes: attrs,
			State:      ContentState{Message: "price alert"},
			View:       test.view,
			Points:     test.points,
			Viewport:   test.viewport,
		})
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}

		assert.Equal(t, p.View, test.view)
		assert.Equal(t, p.Message, "price alert")
		assert.Equal(t, p.Leading, test.wantLeading)
		assert.Equal(t, p.Trailing, test.wantTrailing)
		assert.Equal(t, p.Card != nil, test.wantCard)
		assert.Equal(t, p.LeadingAction != nil, test.wantActions)
		assert.Equal(t, p.TrailingAction != nil, test.wantActions)

		doc := p.SVG()
		wellFormed(t, doc)
		for _, want := range test.wantText {
			if !strings.Contains(string(doc), want) {
				t.Errorf("%s: expected svg to contain %q", test.name, want)
			}
		}
	}
}

func TestRenderActivityMessage(t *testing.T) {
	cfg := &ActivityConfig{
		Attributes: Attributes{AssetName: "bitcoin", AssetTicker: "btc", Price: 30016, PercentChange: 3.28},
		State:      ContentState{Message: "btc < 30k & falling"},
		View:       Expanded,
		Points:     testPoints(),
		Viewport:   shared.Viewport{Width: 360, Height: 220},
	}

	// Ensure expanded views draw the escaped message between the actions.
	p, err := RenderActivity(cfg)
	assert.NoError(t, err)
	doc := string(p.SVG())
	wellFormed(t, []byte(doc))
	assert.True(t, strings.Contains(doc, ">btc &lt; 30k &amp; falling</text>"))

	// Ensure an empty message draws no caption.
	cfg.State.Message = ""
	p, err = RenderActivity(cfg)
	assert.NoError(t, err)
	assert.Equal(t, strings.Count(string(p.SVG()), "<text"), strings.Count(doc, "<text")-1)

	// Ensure other views carry the message without drawing it.
	cfg.State.Message = "btc < 30k & falling"
	cfg.View = Notification
	p, err = RenderActivity(cfg)
	assert.NoError(t, err)
	assert.Equal(t, p.Message, "btc < 30k & falling")
	assert.False(t, strings.Contains(string(p.SVG()), "falling"))
}

func TestRenderActivityErrors(t *testing.T) {
	attrs := Attributes{AssetName: "bitcoin", AssetTicker: "btc", Price: 30016, PercentChange: 3.28}

	// Ensure chart errors propagate from chart presentations.
	_, err := RenderActivity(&ActivityConfig{
		Attributes: attrs,
		View:       Notification,
		Viewport:   shared.Viewport{Width: 360, Height: 160},
	})
	assert.True(t, errors.Is(err, shared.EmptySeries))

	// Ensure the expanded card must fit below the actions.
	_, err = RenderActivity(&ActivityConfig{
		Attributes: attrs,
		View:       Expanded,
		Points:     testPoints(),
		Viewport:   shared.Viewport{Width: 360, Height: 60},
	})
	assert.True(t, errors.Is(err, shared.InvalidViewport))

	// Ensure invalid viewports and views are rejected.
	_, err = RenderActivity(&ActivityConfig{Attributes: attrs, View: Compact})
	assert.True(t, errors.Is(err, shared.InvalidViewport))

	_, err = RenderActivity(&ActivityConfig{
		Attributes: attrs,
		View:       View(42),
		Viewport:   shared.Viewport{Width: 10, Height: 10},
	})
	assert.Error(t, err)
}
