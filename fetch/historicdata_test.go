package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnldd/pricealerts/shared"
	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog/log"
)

func TestHistoricalData(t *testing.T) {
	var updates []*shared.PriceUpdate
	notify := func(update *shared.PriceUpdate) error {
		updates = append(updates, update)
		return nil
	}

	cfg := &HistoricDataConfig{
		FilePath:          "../testdata/pricehistory.json",
		NotifySubscribers: notify,
		Logger:            &log.Logger,
	}

	// Ensure historic data can be initialized.
	historicData, err := NewHistoricData(cfg)
	assert.NoError(t, err)
	assert.Equal(t, len(historicData.FetchUpdates()), 2)

	// Ensure all loaded updates are relayed in file order.
	err = historicData.ProcessHistoricalData()
	assert.NoError(t, err)
	assert.Equal(t, len(updates), 2)

	btc := updates[0]
	assert.Equal(t, btc.Asset.Ticker, "btc")
	assert.Equal(t, btc.Asset.CurrentPrice, float64(30016))
	assert.Equal(t, btc.Asset.PercentChange, 31.4)
	assert.Equal(t, len(btc.Points), 6)
	assert.Equal(t, btc.Points[3].Price, float64(939))

	// Ensure missing snapshot values are derived from the points.
	eth := updates[1]
	assert.Equal(t, eth.Asset.CurrentPrice, 0.5)
	assert.GreaterThan(t, eth.Asset.PercentChange, float64(66))

	// Ensure subscriber failures are surfaced.
	cfg.NotifySubscribers = func(update *shared.PriceUpdate) error {
		return fmt.Errorf("subscriber unavailable")
	}
	err = historicData.ProcessHistoricalData()
	assert.Error(t, err)
}

func TestHistoricalDataErrors(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, content string) string {
		path := filepath.Join(dir, name)
		err := os.WriteFile(path, []byte(content), 0o600)
		assert.NoError(t, err)
		return path
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.json")},
		{"invalid json", write("invalid.json", `{"assets":[`)},
		{"no assets", write("empty.json", `{"assets":[]}`)},
		{"no ticker", write("noticker.json", `{"assets":[{"name":"BTC","points":[{"time":1,"price":1}]}]}`)},
		{"no points", write("nopoints.json", `{"assets":[{"name":"BTC","ticker":"btc","points":[]}]}`)},
		{"bad point", write("badpoint.json", `{"assets":[{"ticker":"btc","points":[{"time":"yesterday","price":1}]}]}`)},
	}

	for _, test := range tests {
		_, err := NewHistoricData(&HistoricDataConfig{FilePath: test.path, Logger: &log.Logger})
		if err == nil {
			t.Errorf("%s: expected an error", test.name)
		}
	}
}
