package shared

import (
	"context"

	"github.com/tidwall/gjson"
)

// PriceFetcher defines the requirements for fetching asset price history.
type PriceFetcher interface {
	// FetchMarketChart fetches the price history of an asset over the provided number of days.
	FetchMarketChart(ctx context.Context, asset string, days int) ([]gjson.Result, error)
}

// PriceStorer defines the requirements for storing and retrieving asset prices.
type PriceStorer interface {
	// PersistPriceUpdate stores the provided price update.
	PersistPriceUpdate(ctx context.Context, update *PriceUpdate) error
	// FetchPricePoints returns the latest n price points of an asset in ascending time order.
	FetchPricePoints(ctx context.Context, ticker string, n int) ([]PricePoint, error)
	// FetchAsset returns the latest snapshot of an asset.
	FetchAsset(ctx context.Context, ticker string) (*Asset, error)
	// FetchAssets returns the latest snapshots of all stored assets.
	FetchAssets(ctx context.Context) ([]Asset, error)
}
