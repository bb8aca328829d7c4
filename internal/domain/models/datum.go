package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the on-disk date format shared by series filenames lines and
// universe snapshot filenames. It is a stable consumer contract and must not
// change.
const DateLayout = "20060102"

// MarketDatum represents one instrument-day observation.
// Each field matches one column in the per-instrument series file.
//
// Column order:
//  1. Date (yyyyMMdd, midnight UTC)
//  2. Price
//  3. Volume
//  4. MarketCap
//
// Invariant: at most one MarketDatum per (instrument, day). Price and Volume
// are overlays and may legitimately be zero when the vendor published a
// market-cap point without a matching price/volume point.
type MarketDatum struct {
	Time      time.Time
	Price     float64
	Volume    float64
	MarketCap float64
}

// DateKey returns the yyyyMMdd key of the observation day.
func (d MarketDatum) DateKey() string {
	return d.Time.UTC().Format(DateLayout)
}

// SeriesLine renders the datum as one per-instrument CSV line:
// "date,price,volume,marketCap".
func (d MarketDatum) SeriesLine() string {
	return d.DateKey() + "," + formatValue(d.Price) + "," + formatValue(d.Volume) + "," + formatValue(d.MarketCap)
}

// UniverseLine renders the datum as one universe snapshot CSV line:
// "TICKER,price,volume,marketCap".
func (d MarketDatum) UniverseLine(ticker string) string {
	return strings.ToUpper(ticker) + "," + formatValue(d.Price) + "," + formatValue(d.Volume) + "," + formatValue(d.MarketCap)
}

// ParseSeriesLine parses one per-instrument CSV line back into a MarketDatum.
func ParseSeriesLine(line string) (MarketDatum, error) {
	var d MarketDatum

	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 4 {
		return d, fmt.Errorf("invalid series line: expected 4 fields, got %d", len(fields))
	}

	ts, err := time.ParseInLocation(DateLayout, fields[0], time.UTC)
	if err != nil {
		return d, fmt.Errorf("invalid date %q: %w", fields[0], err)
	}
	d.Time = ts

	if d.Price, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return d, fmt.Errorf("invalid price %q: %w", fields[1], err)
	}
	if d.Volume, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return d, fmt.Errorf("invalid volume %q: %w", fields[2], err)
	}
	if d.MarketCap, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return d, fmt.Errorf("invalid marketCap %q: %w", fields[3], err)
	}

	return d, nil
}

// formatValue renders a non-negative decimal in its shortest round-trip form.
// Stability matters: the merge step deduplicates by exact line equality, so
// the same value must always render to the same text.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
