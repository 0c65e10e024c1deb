package widget

import (
	"fmt"

	"github.com/dnldd/pricealerts/shared"
)

const (
	// actionHeight is the height of an expanded presentation action button.
	actionHeight = 32
	// actionWidth is the width of an expanded presentation action button.
	actionWidth = 72
	// actionColor is the background colour of action buttons.
	actionColor = "#2C2C2E"
)

// View represents a live activity presentation.
type View int

const (
	Notification View = iota
	Compact
	Expanded
	Minimal
)

// String stringifies the provided view.
func (v View) String() string {
	switch v {
	case Notification:
		return "notification"
	case Compact:
		return "compact"
	case Expanded:
		return "expanded"
	case Minimal:
		return "minimal"
	default:
		return "unknown"
	}
}

// ParseView parses a view from its string form.
func ParseView(s string) (View, error) {
	switch s {
	case "notification":
		return Notification, nil
	case "compact":
		return Compact, nil
	case "expanded":
		return Expanded, nil
	case "minimal":
		return Minimal, nil
	default:
		return Notification, fmt.Errorf("unknown activity view: %q", s)
	}
}

// Attributes represents the static attributes of a price alert activity.
type Attributes struct {
	AssetName     string
	AssetTicker   string
	Price         float64
	PercentChange float64
}

// Asset returns the asset snapshot described by the attributes.
func (a *Attributes) Asset() shared.Asset {
	return shared.Asset{
		Name:          a.AssetName,
		Ticker:        a.AssetTicker,
		CurrentPrice:  a.Price,
		PercentChange: a.PercentChange,
	}
}

// ContentState represents the dynamic state of a price alert activity.
type ContentState struct {
	Message string
}

// Action represents a tappable action of an expanded presentation.
type Action struct {
	Label string
}

// Presentation represents a rendered live activity presentation.
type Presentation struct {
	View     View
	Viewport shared.Viewport
	Style    Style
	// Leading is the leading text of compact and minimal presentations.
	Leading string
	// Trailing is the trailing text of compact presentations.
	Trailing string
	// LeadingAction and TrailingAction are set on expanded presentations.
	LeadingAction  *Action
	TrailingAction *Action
	// Message is the activity content state message, if any. Expanded
	// presentations draw it between their actions; other views carry it only.
	Message string
	// Card is the price card of notification and expanded presentations.
	Card *Card
}

// ActivityConfig represents the configuration of a live activity presentation.
type ActivityConfig struct {
	Attributes Attributes
	State      ContentState
	View       View
	// Points is the asset's price history, unused by compact and minimal views.
	Points   []shared.PricePoint
	Viewport shared.Viewport
	Style    Style
}

// RenderActivity lays out the configured live activity presentation.
func RenderActivity(cfg *ActivityConfig) (*Presentation, error) {
	if !cfg.Viewport.Valid() {
		return nil, shared.NewChartError(shared.InvalidViewport,
			"presentation dimensions must be positive, got %vx%v", cfg.Viewport.Width, cfg.Viewport.Height)
	}

	style := cfg.Style.withDefaults()
	asset := cfg.Attributes.Asset()
	p := &Presentation{
		View:     cfg.View,
		Viewport: cfg.Viewport,
		Style:    style,
		Message:  cfg.State.Message,
	}

	switch cfg.View {
	case Notification:
		card, err := RenderCard(&CardConfig{
			Asset:    asset,
			Points:   cfg.Points,
			Viewport: cfg.Viewport,
			Style:    style,
		})
		if err != nil {
			return nil, err
		}
		p.Card = card

	case Compact:
		p.Leading = asset.DisplayTicker()
		p.Trailing = asset.FormattedSignedPercentChange()

	case Minimal:
		p.Leading = asset.DisplayTicker()

	case Expanded:
		p.LeadingAction = &Action{Label: "Buy"}
		p.TrailingAction = &Action{Label: "Sell"}

		top := actionHeight + style.Padding
		card, err := RenderCard(&CardConfig{
			Asset:    asset,
			Points:   cfg.Points,
			Viewport: shared.Viewport{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height - top},
			Style:    style,
		})
		if err != nil {
			return nil, err
		}
		p.Card = card

	default:
		return nil, fmt.Errorf("unknown activity view: %d", cfg.View)
	}

	return p, nil
}

// writeAction renders an action button with its top left corner at the provided position.
func writeAction(w *svgWriter, x float64, y float64, action *Action, style Style) {
	w.rect(x, y, actionWidth, actionHeight, actionHeight/2, actionColor)
	w.text(x+actionWidth/2, y+actionHeight/2+subheadlineSize/3, "middle", subheadlineSize, true,
		style.TextColor, action.Label)
}

// SVG renders the presentation as a standalone svg document.
func (p *Presentation) SVG() []byte {
	var w svgWriter
	w.open(p.Viewport.Width, p.Viewport.Height)

	baseline := p.Viewport.Height/2 + footnoteSize/3
	switch p.View {
	case Notification:
		p.Card.write(&w)

	case Compact:
		w.rect(0, 0, p.Viewport.Width, p.Viewport.Height, p.Viewport.Height/2, p.Style.Background)
		w.text(p.Style.Padding, baseline, "start", footnoteSize, true, p.Style.TextColor, p.Leading)
		w.text(p.Viewport.Width-p.Style.Padding, baseline, "end", footnoteSize, true,
			p.Style.TextColor, p.Trailing)

	case Minimal:
		w.rect(0, 0, p.Viewport.Width, p.Viewport.Height, p.Viewport.Height/2, p.Style.Background)
		w.text(p.Viewport.Width/2, baseline, "middle", footnoteSize, true, p.Style.TextColor, p.Leading)

	case Expanded:
		w.rect(0, 0, p.Viewport.Width, p.Viewport.Height, p.Style.CornerRadius, p.Style.Background)
		writeAction(&w, p.Style.Padding, 0, p.LeadingAction, p.Style)
		writeAction(&w, p.Viewport.Width-p.Style.Padding-actionWidth, 0, p.TrailingAction, p.Style)
		if p.Message != "" {
			w.text(p.Viewport.Width/2, actionHeight/2+footnoteSize/3, "middle", footnoteSize, false,
				p.Style.TextColor, p.Message)
		}

		var card svgWriter
		p.Card.write(&card)
		w.group(0, actionHeight+p.Style.Padding, card.buf.Bytes())
	}

	return w.close()
}
