// Package universe decides which vendor identifiers are in scope for a run:
// it derives the supported-instrument set from the local symbol reference,
// reconciles it against the remote coin catalog, and picks one canonical
// identifier per ticker.
package universe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// expectedHeaders enforces strict column ordering for the symbol reference
// file. If the header doesn't match EXACTLY (order + count), loading fails.
var expectedHeaders = []string{
	"market",
	"symbol",
	"type",
	"quote_currency",
}

// fiatCurrencies are quote/base tokens that are never instruments of their
// own: a pair's fiat leg is stripped, not tracked.
var fiatCurrencies = map[string]struct{}{
	"usd": {}, "eur": {}, "gbp": {}, "jpy": {}, "aud": {}, "cad": {},
	"chf": {}, "cny": {}, "krw": {}, "brl": {}, "try": {}, "rub": {},
	"mxn": {}, "nzd": {}, "sgd": {}, "hkd": {}, "sek": {}, "nok": {},
	"dkk": {}, "pln": {}, "zar": {}, "inr": {},
}

// LoadSupportedTickers derives the supported-instrument set from the symbol
// reference CSV.
//
// For every crypto-market trading pair the recognized quote-currency suffix
// is stripped to recover the base coin ticker; base and quote tokens that
// are not fiat currencies are both kept. The set is recomputed each run and
// never persisted.
//
// Rows whose symbol does not end in the declared quote currency are
// malformed reference data and fail the load, mirroring the strict header
// validation.
func LoadSupportedTickers(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open symbol reference: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // checked explicitly per row

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(expectedHeaders) {
		return nil, fmt.Errorf("invalid header length: expected %d, got %d", len(expectedHeaders), len(header))
	}
	for i, h := range header {
		if strings.TrimSpace(h) != expectedHeaders[i] {
			return nil, fmt.Errorf("invalid header at col %d: expected %q, got %q", i+1, expectedHeaders[i], h)
		}
	}

	supported := make(map[string]struct{})
	line := 1 // header already read

	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read line after %d: %w", line, err)
		}
		line++

		if len(rec) != len(expectedHeaders) {
			return nil, fmt.Errorf("invalid column count on line %d: expected %d got %d", line, len(expectedHeaders), len(rec))
		}

		typ := strings.ToLower(strings.TrimSpace(rec[2]))
		if typ != "crypto" {
			continue
		}

		pair := strings.ToLower(strings.TrimSpace(rec[1]))
		quote := strings.ToLower(strings.TrimSpace(rec[3]))
		if pair == "" || quote == "" {
			return nil, fmt.Errorf("line %d: empty symbol or quote_currency", line)
		}
		if !strings.HasSuffix(pair, quote) || pair == quote {
			return nil, fmt.Errorf("line %d: pair %q does not end in quote currency %q", line, pair, quote)
		}

		base := strings.TrimSuffix(pair, quote)
		if _, fiat := fiatCurrencies[base]; !fiat {
			supported[base] = struct{}{}
		}
		if _, fiat := fiatCurrencies[quote]; !fiat {
			supported[quote] = struct{}{}
		}
	}

	return supported, nil
}
