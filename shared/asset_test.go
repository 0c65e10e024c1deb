package shared

import (
	"errors"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestAssetFormatting(t *testing.T) {
	tests := []struct {
		name              string
		asset             Asset
		wantPrice         string
		wantPercent       string
		wantSignedPercent string
		wantSentiment     Sentiment
	}{
		{
			name:              "bullish asset",
			asset:             Asset{Name: "BTC", CurrentPrice: 30016, PercentChange: 31.4},
			wantPrice:         "$30016.00",
			wantPercent:       "31.40%",
			wantSignedPercent: "+31.40%",
			wantSentiment:     Bullish,
		},
		{
			name:              "bearish asset",
			asset:             Asset{Name: "ETH", CurrentPrice: 2201.457, PercentChange: -3.281},
			wantPrice:         "$2201.46",
			wantPercent:       "-3.28%",
			wantSignedPercent: "-3.28%",
			wantSentiment:     Bearish,
		},
		{
			name:              "unchanged asset",
			asset:             Asset{Name: "USDC", CurrentPrice: 1, PercentChange: 0},
			wantPrice:         "$1.00",
			wantPercent:       "0.00%",
			wantSignedPercent: "+0.00%",
			wantSentiment:     Neutral,
		},
	}

	for _, test := range tests {
		if got := test.asset.FormattedPrice(); got != test.wantPrice {
			t.Errorf("%s: expected price %s, got %s", test.name, test.wantPrice, got)
		}
		if got := test.asset.FormattedPercentChange(); got != test.wantPercent {
			t.Errorf("%s: expected percent %s, got %s", test.name, test.wantPercent, got)
		}
		if got := test.asset.FormattedSignedPercentChange(); got != test.wantSignedPercent {
			t.Errorf("%s: expected signed percent %s, got %s", test.name, test.wantSignedPercent, got)
		}
		if got := test.asset.FetchSentiment(); got != test.wantSentiment {
			t.Errorf("%s: expected %s sentiment, got %s", test.name, test.wantSentiment.String(), got.String())
		}
	}
}

func TestDisplayTicker(t *testing.T) {
	asset := Asset{Name: "bitcoin", Ticker: "btc"}
	assert.Equal(t, asset.DisplayTicker(), "BTC")

	asset.Ticker = ""
	assert.Equal(t, asset.DisplayTicker(), "BITCOIN")
}

func TestSentimentString(t *testing.T) {
	tests := []struct {
		name      string
		sentiment Sentiment
		want      string
	}{
		{"neutral", Neutral, "neutral"},
		{"bullish", Bullish, "bullish"},
		{"bearish", Bearish, "bearish"},
		{"unknown", Sentiment(999), "unknown"},
	}

	for _, test := range tests {
		str := test.sentiment.String()
		if str != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, str)
		}
	}
}

func TestPercentChange(t *testing.T) {
	now := time.Now()
	points := []PricePoint{
		{Time: now, Price: 200},
		{Time: now.Add(time.Minute), Price: 150},
		{Time: now.Add(time.Minute * 2), Price: 250},
	}
	assert.Equal(t, PercentChange(points), float64(25))

	// Ensure degenerate series report no change.
	assert.Equal(t, PercentChange(points[:1]), float64(0))
	assert.Equal(t, PercentChange([]PricePoint{{Price: 0}, {Price: 5}}), float64(0))
}

func TestNewPriceUpdate(t *testing.T) {
	now := time.Now()
	points := []PricePoint{
		{Time: now, Price: 10},
		{Time: now.Add(time.Minute), Price: 15},
	}

	// Ensure the snapshot is derived from the points when absent.
	update, err := NewPriceUpdate(Asset{Name: "Bitcoin", Ticker: "btc"}, points)
	assert.NoError(t, err)
	assert.Equal(t, update.Asset.CurrentPrice, float64(15))
	assert.Equal(t, update.Asset.PercentChange, float64(50))
	assert.NotNil(t, update.Status)

	// Ensure provided snapshot values are kept.
	update, err = NewPriceUpdate(Asset{Ticker: "btc", CurrentPrice: 30016, PercentChange: 3.4}, points)
	assert.NoError(t, err)
	assert.Equal(t, update.Asset.CurrentPrice, float64(30016))
	assert.Equal(t, update.Asset.PercentChange, 3.4)

	// Ensure invalid updates are rejected.
	_, err = NewPriceUpdate(Asset{Name: "Bitcoin"}, points)
	assert.Error(t, err)
	_, err = NewPriceUpdate(Asset{Ticker: "btc"}, nil)
	assert.Error(t, err)
}

func TestChartError(t *testing.T) {
	err := NewChartError(InsufficientPoints, "at least %d points required", 2)
	assert.Equal(t, err.Error(), "insufficient points: at least 2 points required")
	assert.True(t, errors.Is(err, InsufficientPoints))
	assert.True(t, errors.Is(err, &ChartError{Kind: InsufficientPoints}))
	assert.False(t, errors.Is(err, EmptySeries))

	bare := &ChartError{Kind: DegeneratePriceRange}
	assert.Equal(t, bare.Error(), "degenerate price range")

	wrapped := errors.Join(errors.New("rendering card"), err)
	assert.True(t, errors.Is(wrapped, InsufficientPoints))

	kinds := []struct {
		kind ErrorKind
		want string
	}{
		{EmptySeries, "empty series"},
		{InsufficientPoints, "insufficient points"},
		{DegeneratePriceRange, "degenerate price range"},
		{InvalidViewport, "invalid viewport"},
		{InvalidPrice, "invalid price"},
		{ErrorKind(99), "unknown"},
	}
	for _, k := range kinds {
		assert.Equal(t, k.kind.String(), k.want)
	}
}
