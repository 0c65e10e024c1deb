package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dnldd/pricealerts/shared"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

const (
	// bufferSize is the default buffer size for channels.
	bufferSize = 64
	// maxWorkers is the maximum number of concurrent workers.
	maxWorkers = 4
	// minSubscriberBuffer is the minimum buffer size for subscribers.
	minSubscriberBuffer = 8
)

// TrackedAsset represents an asset refreshed by the fetch manager.
type TrackedAsset struct {
	// ID is the price api identifier of the asset.
	ID string
	// Name is the display name of the asset.
	Name string
	// Ticker is the asset ticker.
	Ticker string
}

// ParseTrackedAssets parses tracked assets from "id:ticker" or "id:ticker:name" entries.
func ParseTrackedAssets(entries []string) ([]TrackedAsset, error) {
	assets := make([]TrackedAsset, 0, len(entries))
	for _, entry := range entries {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("malformed asset entry %q, expected id:ticker[:name]", entry)
		}

		asset := TrackedAsset{
			ID:     parts[0],
			Ticker: strings.ToLower(parts[1]),
			Name:   strings.ToUpper(parts[1]),
		}
		if len(parts) == 3 && parts[2] != "" {
			asset.Name = parts[2]
		}

		assets = append(assets, asset)
	}

	return assets, nil
}

// ManagerConfig represents the configuration for the fetch manager.
type ManagerConfig struct {
	// Assets represents the tracked assets.
	Assets []TrackedAsset
	// Days is the number of days of price history fetched per refresh.
	Days int
	// RefreshInterval is the interval between price refreshes of an asset.
	RefreshInterval time.Duration
	// Fetcher represents the price history source.
	Fetcher shared.PriceFetcher
	// JobScheduler represents the job scheduler.
	JobScheduler *gocron.Scheduler
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *ManagerConfig) Validate() error {
	var errs error

	if len(cfg.Assets) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no assets provided for fetch manager"))
	}
	if cfg.Days <= 0 {
		errs = errors.Join(errs, fmt.Errorf("days must be positive"))
	}
	if cfg.RefreshInterval <= 0 {
		errs = errors.Join(errs, fmt.Errorf("refresh interval must be positive"))
	}
	if cfg.Fetcher == nil {
		errs = errors.Join(errs, fmt.Errorf("price fetcher cannot be nil"))
	}
	if cfg.JobScheduler == nil {
		errs = errors.Join(errs, fmt.Errorf("job scheduler cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Manager manages periodic price refreshes of tracked assets.
type Manager struct {
	cfg              *ManagerConfig
	subscribers      []chan *shared.PriceUpdate
	subscribersMtx   sync.RWMutex
	lastUpdatedTimes map[string]time.Time
	lastUpdatedMtx   sync.RWMutex
	refreshSignals   chan TrackedAsset
	workers          chan struct{}
	wg               sync.WaitGroup
}

// NewManager initializes the fetch manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating fetch manager config: %w", err)
	}

	mgr := &Manager{
		cfg:              cfg,
		subscribers:      make([]chan *shared.PriceUpdate, 0, minSubscriberBuffer),
		lastUpdatedTimes: make(map[string]time.Time),
		refreshSignals:   make(chan TrackedAsset, bufferSize),
		workers:          make(chan struct{}, maxWorkers),
	}

	return mgr, nil
}

// Subscribe registers the provided subscriber for price updates.
func (m *Manager) Subscribe(sub chan *shared.PriceUpdate) {
	m.subscribersMtx.Lock()
	m.subscribers = append(m.subscribers, sub)
	m.subscribersMtx.Unlock()
}

// NotifySubscribers notifies subscribers of the provided price update.
func (m *Manager) NotifySubscribers(update *shared.PriceUpdate) error {
	m.subscribersMtx.RLock()
	defer m.subscribersMtx.RUnlock()

	var errs error
	for idx := range m.subscribers {
		select {
		case m.subscribers[idx] <- update:
			// do nothing.
		default:
			errs = errors.Join(errs, fmt.Errorf("subscriber %d channel at capacity: %d/%d",
				idx, len(m.subscribers[idx]), cap(m.subscribers[idx])))
		}
	}

	m.lastUpdatedMtx.Lock()
	m.lastUpdatedTimes[update.Asset.Ticker] = update.Points[len(update.Points)-1].Time
	m.lastUpdatedMtx.Unlock()

	return errs
}

// FetchLastUpdated returns the time of the latest price point relayed for an asset.
func (m *Manager) FetchLastUpdated(ticker string) (time.Time, bool) {
	m.lastUpdatedMtx.RLock()
	defer m.lastUpdatedMtx.RUnlock()

	t, ok := m.lastUpdatedTimes[ticker]
	return t, ok
}

// SendRefreshSignal relays the provided asset for a price refresh.
func (m *Manager) SendRefreshSignal(asset TrackedAsset) {
	select {
	case m.refreshSignals <- asset:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("refresh signal channel at capacity: %d/%d",
			len(m.refreshSignals), bufferSize)
	}
}

// Refresh fetches the latest price history of the provided asset and notifies subscribers.
func (m *Manager) Refresh(ctx context.Context, asset TrackedAsset) error {
	data, err := m.cfg.Fetcher.FetchMarketChart(ctx, asset.ID, m.cfg.Days)
	if err != nil {
		return fmt.Errorf("fetching %s market chart: %w", asset.Ticker, err)
	}

	points, err := shared.ParsePricePoints(data)
	if err != nil {
		return fmt.Errorf("parsing %s price points: %w", asset.Ticker, err)
	}

	update, err := shared.NewPriceUpdate(shared.Asset{
		Name:   asset.Name,
		Ticker: asset.Ticker,
	}, points)
	if err != nil {
		return err
	}

	return m.NotifySubscribers(update)
}

// scheduleRefreshJobs schedules periodic price refreshes for all tracked assets.
func (m *Manager) scheduleRefreshJobs() error {
	for idx := range m.cfg.Assets {
		asset := m.cfg.Assets[idx]
		_, err := m.cfg.JobScheduler.Every(m.cfg.RefreshInterval).Tag(asset.Ticker).
			Do(m.SendRefreshSignal, asset)
		if err != nil {
			return fmt.Errorf("scheduling %s refresh job: %w", asset.Ticker, err)
		}
	}

	return nil
}

// Run manages the lifecycle processes of the fetch manager.
func (m *Manager) Run(ctx context.Context) {
	err := m.scheduleRefreshJobs()
	if err != nil {
		m.cfg.Logger.Error().Msgf("scheduling refresh jobs: %v", err)
		return
	}

	m.cfg.JobScheduler.StartAsync()

	for {
		select {
		case <-ctx.Done():
			m.cfg.JobScheduler.Stop()
			m.wg.Wait()
			return

		case asset := <-m.refreshSignals:
			m.workers <- struct{}{}
			m.wg.Add(1)
			go func(asset TrackedAsset) {
				defer func() {
					<-m.workers
					m.wg.Done()
				}()

				err := m.Refresh(ctx, asset)
				if err != nil {
					m.cfg.Logger.Error().Msgf("refreshing %s: %v", asset.Ticker, err)
				}
			}(asset)
		}
	}
}
