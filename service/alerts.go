package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dnldd/pricealerts/chart"
	"github.com/dnldd/pricealerts/database"
	"github.com/dnldd/pricealerts/fetch"
	"github.com/dnldd/pricealerts/server"
	"github.com/dnldd/pricealerts/shared"
	"github.com/dnldd/pricealerts/widget"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	// updateBufferSize is the buffer size of the persisted price updates channel.
	updateBufferSize = 64
	// replayTimeout is the maximum time spent waiting on replayed updates to persist.
	replayTimeout = time.Second * 30
)

// AlertsConfig represents the configuration struct for the price alerts service.
type AlertsConfig struct {
	// Assets represents the tracked assets as id:ticker[:name] entries.
	Assets []string
	// CoinGeckoAPIKey is the optional CoinGecko demo API key.
	CoinGeckoAPIKey string
	// Days is the number of days of price history fetched per refresh.
	Days int
	// RefreshInterval is the interval between price refreshes of an asset.
	RefreshInterval time.Duration
	// DBEndpoint is the rqlite endpoint, prices are kept in memory when unset.
	DBEndpoint string
	// DBUser is the database user.
	DBUser string
	// DBPass is the database user pass.
	DBPass string
	// Address is the http listening address.
	Address string
	// FlatPolicy is the placement policy for flat price series.
	FlatPolicy string
	// Replay is the historic data replay flag.
	Replay bool
	// ReplayDataFilepath is the filepath to the replayed price history.
	ReplayDataFilepath string
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config sane inputs.
func (cfg *AlertsConfig) Validate() error {
	var errs error

	if cfg.Address == "" {
		errs = errors.Join(errs, fmt.Errorf("listening address cannot be an empty string"))
	}
	if _, ok := chart.ParseFlatPolicy(cfg.FlatPolicy); !ok {
		errs = errors.Join(errs, fmt.Errorf("unknown flat policy %q", cfg.FlatPolicy))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}

	switch cfg.Replay {
	case true:
		if cfg.ReplayDataFilepath == "" {
			errs = errors.Join(errs, fmt.Errorf("replay data filepath cannot be an empty string"))
		}
	case false:
		if len(cfg.Assets) == 0 {
			errs = errors.Join(errs, fmt.Errorf("no assets provided for price alerts service"))
		}
		if cfg.Days <= 0 {
			errs = errors.Join(errs, fmt.Errorf("days must be positive"))
		}
		if cfg.RefreshInterval <= 0 {
			errs = errors.Join(errs, fmt.Errorf("refresh interval must be positive"))
		}
	}

	return errs
}

// Alerts represents the price alerts service.
type Alerts struct {
	cfg          *AlertsConfig
	store        shared.PriceStorer
	fetchManager *fetch.Manager
	historicData *fetch.HistoricData
	server       *server.Server
	updates      chan *shared.PriceUpdate
	logger       *zerolog.Logger
	wg           sync.WaitGroup
}

// NewAlerts initializes a new price alerts service.
func NewAlerts(ctx context.Context, cfg *AlertsConfig) (*Alerts, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating price alerts config: %w", err)
	}

	var fetchMgr *fetch.Manager
	var historicData *fetch.HistoricData
	var store shared.PriceStorer

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "alerts").Logger()

	switch cfg.DBEndpoint {
	case "":
		store = database.NewMemoryStore()
	default:
		dbLogger := logger.With().Str("component", "database").Logger()
		store, err = database.NewDatabase(ctx, &database.DatabaseConfig{
			Endpoint: cfg.DBEndpoint,
			User:     cfg.DBUser,
			Pass:     cfg.DBPass,
			Logger:   &dbLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating database: %w", err)
		}
	}

	notifySubscribersFunc := func(update *shared.PriceUpdate) error {
		if fetchMgr != nil {
			return fetchMgr.NotifySubscribers(update)
		}

		return nil
	}

	days := cfg.Days
	refreshInterval := cfg.RefreshInterval
	var assets []fetch.TrackedAsset
	if cfg.Replay {
		historicDataLogger := logger.With().Str("component", "historicdata").Logger()
		historicData, err = fetch.NewHistoricData(&fetch.HistoricDataConfig{
			FilePath:          cfg.ReplayDataFilepath,
			NotifySubscribers: notifySubscribersFunc,
			Logger:            &historicDataLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating historic data: %w", err)
		}

		// Replayed assets are tracked by ticker and never refreshed.
		updates := historicData.FetchUpdates()
		for idx := range updates {
			asset := updates[idx].Asset
			assets = append(assets, fetch.TrackedAsset{ID: asset.Ticker, Name: asset.Name, Ticker: asset.Ticker})
		}
		days = max(days, 1)
		if refreshInterval <= 0 {
			refreshInterval = time.Hour
		}
	} else {
		assets, err = fetch.ParseTrackedAssets(cfg.Assets)
		if err != nil {
			return nil, fmt.Errorf("parsing tracked assets: %w", err)
		}
	}

	coinGecko, err := fetch.NewCoinGeckoClient(&fetch.CoinGeckoConfig{APIKey: cfg.CoinGeckoAPIKey, BaseURL: fetch.BaseURL})
	if err != nil {
		return nil, fmt.Errorf("creating coingecko client: %w", err)
	}

	fetchMgrLogger := logger.With().Str("component", "fetchmanager").Logger()
	fetchMgr, err = fetch.NewManager(&fetch.ManagerConfig{
		Assets:          assets,
		Days:            days,
		RefreshInterval: refreshInterval,
		Fetcher:         coinGecko,
		JobScheduler:    gocron.NewScheduler(time.UTC),
		Logger:          &fetchMgrLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating fetch manager: %w", err)
	}

	updates := make(chan *shared.PriceUpdate, updateBufferSize)
	fetchMgr.Subscribe(updates)

	flatPolicy, _ := chart.ParseFlatPolicy(cfg.FlatPolicy)
	style := widget.DefaultStyle()
	style.FlatPolicy = flatPolicy

	serverLogger := logger.With().Str("component", "server").Logger()
	srv := server.NewServer(&server.ServerConfig{
		Address: cfg.Address,
		Store:   store,
		Style:   style,
		Logger:  &serverLogger,
	})

	service := &Alerts{
		cfg:          cfg,
		store:        store,
		fetchManager: fetchMgr,
		historicData: historicData,
		server:       srv,
		updates:      updates,
		logger:       &logger,
	}

	return service, nil
}

// persistUpdates stores relayed price updates until the provided context is cancelled.
func (a *Alerts) persistUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case update := <-a.updates:
			err := a.store.PersistPriceUpdate(ctx, update)
			if err != nil {
				a.logger.Error().Msgf("persisting %s price update: %v", update.Asset.Ticker, err)
			}

			select {
			case update.Status <- shared.Processed:
			default:
				// do nothing.
			}
		}
	}
}

// replay relays the historic price data and waits for it to be persisted.
func (a *Alerts) replay(ctx context.Context) {
	err := a.historicData.ProcessHistoricalData()
	if err != nil {
		a.logger.Error().Msgf("replaying historic data: %v", err)
		a.cfg.Cancel()
		return
	}

	timeout := time.After(replayTimeout)
	updates := a.historicData.FetchUpdates()
	for idx := range updates {
		select {
		case <-ctx.Done():
			return
		case <-timeout:
			a.logger.Error().Msgf("timed out waiting on replayed %s update", updates[idx].Asset.Ticker)
			return
		case <-updates[idx].Status:
		}
	}

	a.logger.Info().Msgf("replayed %d assets from %s", len(updates), a.cfg.ReplayDataFilepath)
}

// Run handles the lifecycle processes of the price alerts service.
func (a *Alerts) Run(ctx context.Context) {
	a.wg.Add(2)

	go func() {
		a.persistUpdates(ctx)
		a.wg.Done()
	}()

	go func() {
		a.server.Run(ctx)
		a.wg.Done()
	}()

	switch a.cfg.Replay {
	case true:
		a.wg.Add(1)
		go func() {
			a.replay(ctx)
			a.wg.Done()
		}()
	case false:
		a.wg.Add(1)
		go func() {
			a.fetchManager.Run(ctx)
			a.wg.Done()
		}()
	}

	a.wg.Wait()
}
