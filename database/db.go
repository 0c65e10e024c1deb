package database

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/pricealerts/shared"
	"github.com/google/uuid"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createAssetTableSQL      = "CREATE TABLE IF NOT EXISTS asset (ticker TEXT PRIMARY KEY, name TEXT, price REAL, percentchange REAL, updatedon INTEGER)"
	createPricePointTableSQL = "CREATE TABLE IF NOT EXISTS pricepoint (id TEXT PRIMARY KEY, ticker TEXT, time INTEGER, price REAL, UNIQUE(ticker, time))"
	upsertAssetSQL           = "INSERT INTO asset(ticker, name, price, percentchange, updatedon) VALUES(?,?,?,?,?) ON CONFLICT(ticker) DO UPDATE SET name = excluded.name, price = excluded.price, percentchange = excluded.percentchange, updatedon = excluded.updatedon"
	persistPricePointSQL     = "INSERT OR IGNORE INTO pricepoint(id, ticker, time, price) VALUES(?,?,?,?)"
	findAssetSQL             = "SELECT ticker, name, price, percentchange FROM asset WHERE ticker = ?"
	findAssetsSQL            = "SELECT ticker, name, price, percentchange FROM asset ORDER BY ticker"
	findPricePointsSQL       = "SELECT time, price FROM (SELECT time, price FROM pricepoint WHERE ticker = ? ORDER BY time DESC LIMIT ?) ORDER BY time ASC"
)

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	client *rqlitehttp.Client
}

// Ensure the database implements the PriceStorer interface.
var _ shared.PriceStorer = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	if cfg.User != "" {
		client.SetBasicAuth(cfg.User, cfg.Pass)
	}

	db := &Database{
		cfg:    cfg,
		client: client,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// bootstrap initializes the database.
func (db *Database) bootstrap(ctx context.Context) error {
	resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createAssetTableSQL},
		{SQL: createPricePointTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("creating tables: %d -> %s", idx, errStr)
	}

	return nil
}

// PersistPriceUpdate stores the asset snapshot and price points of the provided update.
func (db *Database) PersistPriceUpdate(ctx context.Context, update *shared.PriceUpdate) error {
	asset := update.Asset
	updatedOn := update.Points[len(update.Points)-1].Time.UnixMilli()

	stmts := make(rqlitehttp.SQLStatements, 0, len(update.Points)+1)
	stmts = append(stmts, &rqlitehttp.SQLStatement{
		SQL:              upsertAssetSQL,
		PositionalParams: []any{asset.Ticker, asset.Name, asset.CurrentPrice, asset.PercentChange, updatedOn},
	})
	for idx := range update.Points {
		point := update.Points[idx]
		stmts = append(stmts, &rqlitehttp.SQLStatement{
			SQL:              persistPricePointSQL,
			PositionalParams: []any{uuid.New().String(), asset.Ticker, point.Time.UnixMilli(), point.Price},
		})
	}

	resp, err := db.client.Execute(ctx, stmts, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("persisting %s price update: %d -> %s", asset.Ticker, idx, errStr)
	}

	return nil
}

// query runs the provided statement and returns its rows in associative form.
func (db *Database) query(ctx context.Context, sql string, params ...any) ([]map[string]any, error) {
	resp, err := db.client.Query(ctx, rqlitehttp.SQLStatements{
		{SQL: sql, PositionalParams: params},
	}, &rqlitehttp.QueryOptions{Associative: true})
	if err != nil {
		return nil, err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return nil, fmt.Errorf("querying database: %d -> %s", idx, errStr)
	}

	// Results without rows decode in the non-associative form.
	switch results := resp.Results.(type) {
	case []rqlitehttp.QueryResultAssoc:
		if len(results) == 0 {
			return nil, nil
		}
		return results[0].Rows, nil
	case []rqlitehttp.QueryResult:
		return nil, nil
	default:
		db.cfg.Logger.Error().Msgf("unexpected query results: %s", spew.Sdump(resp.Results))
		return nil, fmt.Errorf("querying database: unexpected results type %T", resp.Results)
	}
}

// toFloat converts a numeric row value.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}

// parseAsset parses an asset snapshot from the provided row.
func (db *Database) parseAsset(row map[string]any) shared.Asset {
	ticker, ok := row["ticker"].(string)
	if !ok {
		db.cfg.Logger.Error().Msgf("unexpected asset row: %s", spew.Sdump(row))
	}
	name, _ := row["name"].(string)

	return shared.Asset{
		Name:          name,
		Ticker:        ticker,
		CurrentPrice:  toFloat(row["price"]),
		PercentChange: toFloat(row["percentchange"]),
	}
}

// FetchAsset returns the latest snapshot of an asset.
func (db *Database) FetchAsset(ctx context.Context, ticker string) (*shared.Asset, error) {
	rows, err := db.query(ctx, findAssetSQL, ticker)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("asset %s: %w", ticker, shared.ErrNotFound)
	}

	asset := db.parseAsset(rows[0])
	return &asset, nil
}

// FetchAssets returns the latest snapshots of all stored assets.
func (db *Database) FetchAssets(ctx context.Context) ([]shared.Asset, error) {
	rows, err := db.query(ctx, findAssetsSQL)
	if err != nil {
		return nil, err
	}

	assets := make([]shared.Asset, 0, len(rows))
	for idx := range rows {
		assets = append(assets, db.parseAsset(rows[idx]))
	}

	return assets, nil
}

// FetchPricePoints returns the latest n price points of an asset in ascending time order.
func (db *Database) FetchPricePoints(ctx context.Context, ticker string, n int) ([]shared.PricePoint, error) {
	if n <= 0 {
		// A negative limit is unbounded.
		n = -1
	}

	rows, err := db.query(ctx, findPricePointsSQL, ticker, n)
	if err != nil {
		return nil, err
	}

	points := make([]shared.PricePoint, 0, len(rows))
	for idx := range rows {
		points = append(points, shared.PricePoint{
			Time:  time.UnixMilli(int64(toFloat(rows[idx]["time"]))).UTC(),
			Price: toFloat(rows[idx]["price"]),
		})
	}

	return points, nil
}
