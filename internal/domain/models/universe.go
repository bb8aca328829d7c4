package models

import (
	"fmt"
	"strconv"
	"strings"
)

// UniverseEntry represents one line of a per-date universe snapshot file.
//
// Column order:
//  1. Ticker (uppercase)
//  2. Price
//  3. Volume
//  4. MarketCap
type UniverseEntry struct {
	Ticker    string
	Price     float64
	Volume    float64
	MarketCap float64
}

// ParseUniverseLine parses one universe snapshot CSV line.
func ParseUniverseLine(line string) (UniverseEntry, error) {
	var e UniverseEntry

	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 4 {
		return e, fmt.Errorf("invalid universe line: expected 4 fields, got %d", len(fields))
	}

	e.Ticker = strings.ToUpper(strings.TrimSpace(fields[0]))
	if e.Ticker == "" {
		return e, fmt.Errorf("invalid universe line: empty ticker")
	}

	var err error
	if e.Price, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return e, fmt.Errorf("invalid price %q: %w", fields[1], err)
	}
	if e.Volume, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return e, fmt.Errorf("invalid volume %q: %w", fields[2], err)
	}
	if e.MarketCap, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return e, fmt.Errorf("invalid marketCap %q: %w", fields[3], err)
	}

	return e, nil
}
