package database

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dnldd/pricealerts/shared"
)

const (
	// maxMemoryPoints is the maximum number of price points retained per asset.
	maxMemoryPoints = 2048
)

// MemoryStore represents an in-memory price store.
type MemoryStore struct {
	assets map[string]shared.Asset
	points map[string][]shared.PricePoint
	mtx    sync.RWMutex
}

// Ensure the memory store implements the PriceStorer interface.
var _ shared.PriceStorer = (*MemoryStore)(nil)

// NewMemoryStore initializes a new in-memory price store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assets: make(map[string]shared.Asset),
		points: make(map[string][]shared.PricePoint),
	}
}

// PersistPriceUpdate stores the asset snapshot and price points of the provided update.
//
// Points already stored for the same time are replaced.
func (s *MemoryStore) PersistPriceUpdate(ctx context.Context, update *shared.PriceUpdate) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	ticker := update.Asset.Ticker
	s.assets[ticker] = update.Asset

	merged := make(map[int64]shared.PricePoint, len(s.points[ticker])+len(update.Points))
	for _, pt := range s.points[ticker] {
		merged[pt.Time.UnixMilli()] = pt
	}
	for _, pt := range update.Points {
		merged[pt.Time.UnixMilli()] = pt
	}

	points := make([]shared.PricePoint, 0, len(merged))
	for _, pt := range merged {
		points = append(points, pt)
	}
	slices.SortFunc(points, func(a, b shared.PricePoint) int {
		return a.Time.Compare(b.Time)
	})
	if len(points) > maxMemoryPoints {
		points = points[len(points)-maxMemoryPoints:]
	}

	s.points[ticker] = points

	return nil
}

// FetchAsset returns the latest snapshot of an asset.
func (s *MemoryStore) FetchAsset(ctx context.Context, ticker string) (*shared.Asset, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	asset, ok := s.assets[ticker]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", ticker, shared.ErrNotFound)
	}

	return &asset, nil
}

// FetchAssets returns the latest snapshots of all stored assets.
func (s *MemoryStore) FetchAssets(ctx context.Context) ([]shared.Asset, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	assets := make([]shared.Asset, 0, len(s.assets))
	for _, asset := range s.assets {
		assets = append(assets, asset)
	}
	slices.SortFunc(assets, func(a, b shared.Asset) int {
		return strings.Compare(a.Ticker, b.Ticker)
	})

	return assets, nil
}

// FetchPricePoints returns the latest n price points of an asset in ascending time order.
func (s *MemoryStore) FetchPricePoints(ctx context.Context, ticker string, n int) ([]shared.PricePoint, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	points := s.points[ticker]
	if n > 0 && len(points) > n {
		points = points[len(points)-n:]
	}

	return slices.Clone(points), nil
}
