package gecko

import (
	"encoding/json"
	"fmt"
	"time"
)

// CoinListing is one entry of the vendor's coin catalog (GET coins/list).
// The ID is the vendor-assigned opaque identifier; many listings can share
// one symbol.
type CoinListing struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Point is one (timestamp, value) pair of a market-chart series. The vendor
// encodes points as two-element JSON arrays of epoch milliseconds and a
// possibly-null value; null values decode to zero.
type Point struct {
	Time  time.Time
	Value float64
}

// UnmarshalJSON decodes the vendor's [ms, value] pair representation.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode chart point: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("decode chart point: expected 2 elements, got %d", len(raw))
	}
	if raw[0] == nil {
		return fmt.Errorf("decode chart point: missing timestamp")
	}
	p.Time = time.UnixMilli(int64(*raw[0])).UTC()
	if raw[1] != nil {
		p.Value = *raw[1]
	}
	return nil
}

// MarketChart is the response of GET coins/{id}/market_chart: three
// independently keyed daily series that are not guaranteed to share exact
// timestamps.
type MarketChart struct {
	Prices       []Point `json:"prices"`
	MarketCaps   []Point `json:"market_caps"`
	TotalVolumes []Point `json:"total_volumes"`
}

// ParseCatalog decodes a raw coins/list payload.
func ParseCatalog(body []byte) ([]CoinListing, error) {
	var catalog []CoinListing
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("decode coin catalog: %w", err)
	}
	return catalog, nil
}

// ParseMarketChart decodes a raw market-chart payload.
func ParseMarketChart(body []byte) (MarketChart, error) {
	var chart MarketChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return chart, fmt.Errorf("decode market chart: %w", err)
	}
	return chart, nil
}
