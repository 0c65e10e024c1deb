package shared

import (
	"fmt"
	"strings"
)

// Sentiment represents the direction of an asset's price change.
type Sentiment int

const (
	Neutral Sentiment = iota
	Bullish
	Bearish
)

// String stringifies the provided sentiment.
func (s Sentiment) String() string {
	switch s {
	case Neutral:
		return "neutral"
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "unknown"
	}
}

// Asset represents a display snapshot of a tracked asset.
type Asset struct {
	Name          string
	Ticker        string
	CurrentPrice  float64
	PercentChange float64
}

// FormattedPrice returns the current price as a dollar amount.
func (a *Asset) FormattedPrice() string {
	return fmt.Sprintf("$%.2f", a.CurrentPrice)
}

// FormattedPercentChange returns the percent change with two decimals.
func (a *Asset) FormattedPercentChange() string {
	return fmt.Sprintf("%.2f%%", a.PercentChange)
}

// FormattedSignedPercentChange returns the percent change with an explicit sign.
func (a *Asset) FormattedSignedPercentChange() string {
	return fmt.Sprintf("%+.2f%%", a.PercentChange)
}

// FetchSentiment returns the asset's price change sentiment.
func (a *Asset) FetchSentiment() Sentiment {
	switch {
	case a.PercentChange > 0:
		return Bullish
	case a.PercentChange < 0:
		return Bearish
	default:
		return Neutral
	}
}

// DisplayTicker returns the upper cased ticker, falling back to the name.
func (a *Asset) DisplayTicker() string {
	if a.Ticker == "" {
		return strings.ToUpper(a.Name)
	}

	return strings.ToUpper(a.Ticker)
}

// PercentChange returns the percent change between the first and last points.
func PercentChange(points []PricePoint) float64 {
	if len(points) < 2 || points[0].Price == 0 {
		return 0
	}

	first := points[0].Price
	last := points[len(points)-1].Price

	return (last - first) / first * 100
}
