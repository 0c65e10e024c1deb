package shared

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested asset is not stored.
var ErrNotFound = errors.New("not found")

// StatusCode represents a signal status code.
type StatusCode int

const (
	Processing StatusCode = iota
	Processed
)

// PriceUpdate represents a refreshed price series for an asset.
type PriceUpdate struct {
	Asset  Asset
	Points []PricePoint
	Status chan StatusCode
}

// NewPriceUpdate initializes a new price update.
//
// The asset's current price and percent change are derived from the points when
// the asset does not provide them.
func NewPriceUpdate(asset Asset, points []PricePoint) (*PriceUpdate, error) {
	if asset.Ticker == "" {
		return nil, fmt.Errorf("price update asset ticker cannot be an empty string")
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("price update for %s has no price points", asset.Ticker)
	}

	if asset.CurrentPrice == 0 {
		asset.CurrentPrice = points[len(points)-1].Price
	}
	if asset.PercentChange == 0 {
		asset.PercentChange = PercentChange(points)
	}

	return &PriceUpdate{
		Asset:  asset,
		Points: points,
		Status: make(chan StatusCode, 1),
	}, nil
}
