package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dnldd/pricealerts/shared"
	"github.com/tidwall/gjson"
)

const (
	// BaseURL is the default coingecko api base url.
	BaseURL = "https://api.coingecko.com/api/v3"
	// apiKeyHeader is the coingecko demo api key header.
	apiKeyHeader = "x-cg-demo-api-key"
)

// CoinGeckoConfig represents the configuration for the coingecko client.
type CoinGeckoConfig struct {
	// APIKey is the coingecko API key, optional.
	APIKey string
	// BaseURL is the coingecko api base url.
	BaseURL string
	// Currency is the quote currency of fetched prices.
	Currency string
}

// CoinGeckoClient represents the coingecko API client.
type CoinGeckoClient struct {
	cfg   *CoinGeckoConfig
	httpc http.Client
}

// Ensure the CoinGeckoClient implements the PriceFetcher interface.
var _ shared.PriceFetcher = (*CoinGeckoClient)(nil)

// NewCoinGeckoClient instantiates a new coingecko client.
func NewCoinGeckoClient(cfg *CoinGeckoConfig) (*CoinGeckoClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}

	_, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	return &CoinGeckoClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: time.Second * 5},
	}, nil
}

// formURL creates full urls including parameters for the api.
func (c *CoinGeckoClient) formURL(path string, params string) string {
	var buf bytes.Buffer
	buf.WriteString(c.cfg.BaseURL)
	buf.WriteString(path)
	buf.WriteString("?")
	buf.WriteString(params)

	return buf.String()
}

// FetchMarketChart fetches the price history of an asset over the provided number of days.
func (c *CoinGeckoClient) FetchMarketChart(ctx context.Context, asset string, days int) ([]gjson.Result, error) {
	if days <= 0 {
		return nil, fmt.Errorf("market chart days must be positive, got %d", days)
	}

	params := url.Values{}
	params.Add("vs_currency", c.cfg.Currency)
	params.Add("days", strconv.Itoa(days))

	formedURL := c.formURL("/coins/"+url.PathEscape(asset)+"/market_chart", params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating market chart request for %s: %w", asset, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching market chart for %s: %w", asset, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching market chart for %s: unexpected status %d: %s",
			asset, resp.StatusCode, gjson.GetBytes(body, "error").String())
	}

	prices := gjson.GetBytes(body, "prices")
	if !prices.IsArray() {
		return nil, fmt.Errorf("market chart for %s has no prices", asset)
	}

	return prices.Array(), nil
}
