package shared

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
	"github.com/tidwall/gjson"
)

func TestParsePricePoints(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []PricePoint
		wantErr bool
	}{
		{
			name: "market chart pairs",
			data: `[[1705147200000, 42850.5], [1705147260000, 42860.25]]`,
			want: []PricePoint{
				{Time: time.UnixMilli(1705147200000).UTC(), Price: 42850.5},
				{Time: time.UnixMilli(1705147260000).UTC(), Price: 42860.25},
			},
		},
		{
			name: "dated objects",
			data: `[{"time":"2024-01-13 12:00:00","price":10},{"time":"2024-01-13 12:01:00","price":200}]`,
			want: []PricePoint{
				{Time: time.Date(2024, 1, 13, 12, 0, 0, 0, time.UTC), Price: 10},
				{Time: time.Date(2024, 1, 13, 12, 1, 0, 0, time.UTC), Price: 200},
			},
		},
		{
			name: "millisecond objects",
			data: `[{"time":1705147200000,"price":0.5}]`,
			want: []PricePoint{
				{Time: time.UnixMilli(1705147200000).UTC(), Price: 0.5},
			},
		},
		{
			name: "empty",
			data: `[]`,
			want: []PricePoint{},
		},
		{
			name:    "malformed pair",
			data:    `[[1705147200000]]`,
			wantErr: true,
		},
		{
			name:    "malformed date",
			data:    `[{"time":"13/01/2024","price":10}]`,
			wantErr: true,
		},
		{
			name:    "missing time",
			data:    `[{"price":10}]`,
			wantErr: true,
		},
		{
			name:    "missing price",
			data:    `[{"time":"2024-01-13 12:00:00"}]`,
			wantErr: true,
		},
		{
			name:    "scalar entry",
			data:    `[42]`,
			wantErr: true,
		},
	}

	for _, test := range tests {
		points, err := ParsePricePoints(gjson.Parse(test.data).Array())
		if test.wantErr {
			if err == nil {
				t.Errorf("%s: expected an error", test.name)
			}
			continue
		}

		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}

		if !cmp.Equal(points, test.want) {
			t.Errorf("%s: mismatching price points, got %v", test.name, cmp.Diff(test.want, points))
		}
	}
}

func TestPriceRange(t *testing.T) {
	points := []PricePoint{{Price: 10}, {Price: 200}, {Price: 3}, {Price: 939}, {Price: 1}, {Price: 0.5}}
	minPrice, maxPrice := PriceRange(points)
	assert.Equal(t, minPrice, 0.5)
	assert.Equal(t, maxPrice, float64(939))

	minPrice, maxPrice = PriceRange(nil)
	assert.Equal(t, minPrice, float64(0))
	assert.Equal(t, maxPrice, float64(0))
}

func TestViewportValid(t *testing.T) {
	tests := []struct {
		name     string
		viewport Viewport
		want     bool
	}{
		{"valid", Viewport{Width: 100, Height: 50}, true},
		{"zero width", Viewport{Width: 0, Height: 50}, false},
		{"negative height", Viewport{Width: 100, Height: -50}, false},
		{"empty", Viewport{}, false},
	}

	for _, test := range tests {
		if got := test.viewport.Valid(); got != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, got)
		}
	}
}
