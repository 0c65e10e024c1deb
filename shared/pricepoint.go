package shared

import (
	"fmt"
	"math"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// DateLayout is the format layout for parsing price point dates.
	DateLayout = "2006-01-02 15:04:05"
)

// PricePoint represents a single price sample of an asset.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// ParsePricePoints parses price points from the provided json data.
//
// Each entry is either an object with "time" and "price" fields, where time is a
// DateLayout string or unix milliseconds, or a [unix_ms, price] pair.
func ParsePricePoints(data []gjson.Result) ([]PricePoint, error) {
	points := make([]PricePoint, 0, len(data))

	for idx := range data {
		var point PricePoint

		switch {
		case data[idx].IsArray():
			pair := data[idx].Array()
			if len(pair) != 2 {
				return nil, fmt.Errorf("price point pair at index %d has %d elements", idx, len(pair))
			}
			point.Time = time.UnixMilli(pair[0].Int()).UTC()
			point.Price = pair[1].Float()

		case data[idx].IsObject():
			ts := data[idx].Get("time")
			switch ts.Type {
			case gjson.Number:
				point.Time = time.UnixMilli(ts.Int()).UTC()
			case gjson.String:
				dt, err := time.Parse(DateLayout, ts.String())
				if err != nil {
					return nil, fmt.Errorf("parsing price point date: %w", err)
				}
				point.Time = dt
			default:
				return nil, fmt.Errorf("price point at index %d has no time", idx)
			}

			price := data[idx].Get("price")
			if !price.Exists() {
				return nil, fmt.Errorf("price point at index %d has no price", idx)
			}
			point.Price = price.Float()

		default:
			return nil, fmt.Errorf("unexpected price point at index %d: %s", idx, data[idx].Raw)
		}

		if math.IsNaN(point.Price) || math.IsInf(point.Price, 0) {
			return nil, fmt.Errorf("price point at index %d has a non-finite price", idx)
		}

		points = append(points, point)
	}

	return points, nil
}

// PriceRange returns the minimum and maximum prices of the provided points.
func PriceRange(points []PricePoint) (float64, float64) {
	if len(points) == 0 {
		return 0, 0
	}

	minPrice := points[0].Price
	maxPrice := points[0].Price
	for idx := 1; idx < len(points); idx++ {
		price := points[idx].Price
		if price < minPrice {
			minPrice = price
		}
		if price > maxPrice {
			maxPrice = price
		}
	}

	return minPrice, maxPrice
}
