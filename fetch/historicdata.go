package fetch

import (
	"fmt"
	"os"
	"time"

	"github.com/dnldd/pricealerts/shared"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// HistoricDataConfig represents the historic data source configuration.
type HistoricDataConfig struct {
	// FilePath is the filepath to the historic price data.
	FilePath string
	// NotifySubscribers relays the provided price update to all subscribers.
	NotifySubscribers func(update *shared.PriceUpdate) error
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// HistoricData represents historic price data loaded from a file.
type HistoricData struct {
	cfg     *HistoricDataConfig
	updates []*shared.PriceUpdate
}

// loadHistoricData loads the historic data from the provided file path.
func loadHistoricData(filepath string) (*gjson.Result, error) {
	readb, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading historic data from file with path '%s': %v", filepath, err)
	}

	if !gjson.ValidBytes(readb) {
		return nil, fmt.Errorf("historic data file '%s' is not valid json", filepath)
	}

	b := gjson.ParseBytes(readb)

	return &b, nil
}

// NewHistoricData initializes a new historic data source.
func NewHistoricData(cfg *HistoricDataConfig) (*HistoricData, error) {
	b, err := loadHistoricData(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("loading historic data: %v", err)
	}

	assets := b.Get("assets").Array()
	if len(assets) == 0 {
		return nil, fmt.Errorf("no assets in historic data file '%s'", cfg.FilePath)
	}

	historicData := &HistoricData{
		cfg:     cfg,
		updates: make([]*shared.PriceUpdate, 0, len(assets)),
	}

	for idx := range assets {
		entry := assets[idx]

		asset := shared.Asset{
			Name:          entry.Get("name").String(),
			Ticker:        entry.Get("ticker").String(),
			CurrentPrice:  entry.Get("price").Float(),
			PercentChange: entry.Get("percentChange").Float(),
		}

		points, err := shared.ParsePricePoints(entry.Get("points").Array())
		if err != nil {
			return nil, fmt.Errorf("parsing %s price points: %v", asset.Ticker, err)
		}

		update, err := shared.NewPriceUpdate(asset, points)
		if err != nil {
			return nil, fmt.Errorf("creating price update: %v", err)
		}

		historicData.updates = append(historicData.updates, update)
	}

	return historicData, nil
}

// FetchUpdates returns the loaded price updates.
func (h *HistoricData) FetchUpdates() []*shared.PriceUpdate {
	return h.updates
}

// ProcessHistoricalData relays every loaded price update to subscribers.
func (h *HistoricData) ProcessHistoricalData() error {
	for idx := range h.updates {
		update := h.updates[idx]

		points := update.Points
		first := points[0].Time
		last := points[len(points)-1].Time

		h.cfg.Logger.Info().Msgf("processing historical %s data covering %.2f hours, from %s, to %s",
			update.Asset.Ticker, last.Sub(first).Hours(), first.Format(time.RFC1123), last.Format(time.RFC1123))

		err := h.cfg.NotifySubscribers(update)
		if err != nil {
			return fmt.Errorf("processing historical data: %v", err)
		}
	}

	return nil
}
