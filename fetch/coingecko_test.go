package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestCoinGeckoClient(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get(apiKeyHeader)

		switch r.URL.Path {
		case "/coins/bitcoin/market_chart":
			w.Write([]byte(`{"prices":[[1705147200000,42850.5],[1705147260000,42860.25]],"total_volumes":[]}`))
		case "/coins/missing/market_chart":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"coin not found"}`))
		default:
			w.Write([]byte(`{"market_caps":[]}`))
		}
	}))
	defer srv.Close()

	// Ensure the client can be created.
	client, err := NewCoinGeckoClient(&CoinGeckoConfig{APIKey: "key", BaseURL: srv.URL})
	assert.NoError(t, err)

	// Ensure urls can be formed accurately.
	params := url.Values{}
	params.Add("a", "bbb")
	params.Add("b", "ccc")
	assert.Equal(t, client.formURL("/path", params.Encode()), srv.URL+"/path?a=bbb&b=ccc")

	// Ensure market chart prices can be fetched.
	data, err := client.FetchMarketChart(context.Background(), "bitcoin", 1)
	assert.NoError(t, err)
	assert.Equal(t, len(data), 2)
	assert.Equal(t, data[1].Array()[1].Float(), 42860.25)
	assert.Equal(t, gotPath, "/coins/bitcoin/market_chart")
	assert.Equal(t, gotQuery, "days=1&vs_currency=usd")
	assert.Equal(t, gotKey, "key")

	// Ensure api errors are surfaced.
	_, err = client.FetchMarketChart(context.Background(), "missing", 1)
	assert.Error(t, err)

	// Ensure responses without prices are rejected.
	_, err = client.FetchMarketChart(context.Background(), "other", 1)
	assert.Error(t, err)

	// Ensure invalid day ranges are rejected.
	_, err = client.FetchMarketChart(context.Background(), "bitcoin", 0)
	assert.Error(t, err)

	// Ensure cancelled requests fail.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.FetchMarketChart(ctx, "bitcoin", 1)
	assert.Error(t, err)
}

func TestNewCoinGeckoClientDefaults(t *testing.T) {
	cfg := &CoinGeckoConfig{}
	_, err := NewCoinGeckoClient(cfg)
	assert.NoError(t, err)
	assert.Equal(t, cfg.BaseURL, BaseURL)
	assert.Equal(t, cfg.Currency, "usd")

	_, err = NewCoinGeckoClient(&CoinGeckoConfig{BaseURL: "://bad"})
	assert.Error(t, err)
}
