package series

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"coinpulse/internal/domain/models"
	"coinpulse/internal/gecko"
	"coinpulse/internal/logger"
	"coinpulse/internal/store"
)

// Fetcher retrieves per-identifier historical series, preferring the local
// raw cache over the network so a crashed or repeated run never re-fetches
// the same identifier against the vendor's quota.
type Fetcher struct {
	client         *gecko.Client
	layout         *store.Layout
	maxHistoryDays int

	// indirection for tests
	now func() time.Time
}

// NewFetcher builds a Fetcher. maxHistoryDays caps both the first-run full
// history request and any lookback window.
func NewFetcher(client *gecko.Client, layout *store.Layout, maxHistoryDays int) *Fetcher {
	return &Fetcher{
		client:         client,
		layout:         layout,
		maxHistoryDays: maxHistoryDays,
		now:            time.Now,
	}
}

// Fetch returns the aligned per-day records for one identifier.
//
// Behavior:
//   - If the raw cache file for the id exists, it is parsed directly; no
//     network call is made.
//   - Otherwise the request range is computed: a short lookback window when
//     a processed output file for the ticker already exists, the full
//     configured history when it does not. The raw response is persisted
//     verbatim to the cache before parsing.
//   - A vendor 404 yields (nil, nil): no data for this identifier, the run
//     continues. Nothing is cached so the miss is not sticky.
func (f *Fetcher) Fetch(ctx context.Context, id, ticker string) ([]models.MarketDatum, error) {
	cachePath := f.layout.ChartCachePath(id)
	if raw, err := os.ReadFile(cachePath); err == nil {
		logger.L().Debug().Str("id", id).Str("cache", cachePath).Msg("using cached chart")
		return parseAndAlign(id, raw)
	}

	days := f.lookbackDays(ticker)
	body, found, err := f.client.Get(ctx, gecko.ChartPath(id, days))
	if err != nil {
		return nil, fmt.Errorf("fetch series for %s: %w", id, err)
	}
	if !found {
		logger.L().Warn().Str("id", id).Str("ticker", ticker).Msg("no chart data for identifier")
		return nil, nil
	}

	if err := os.WriteFile(cachePath, body, 0o644); err != nil {
		return nil, fmt.Errorf("cache raw response for %s: %w", id, err)
	}

	return parseAndAlign(id, body)
}

// lookbackDays computes the trailing-day count to request for a ticker:
// from the last processed date forward when prior output exists, the full
// history cap otherwise.
func (f *Fetcher) lookbackDays(ticker string) int {
	path, ok := f.layout.ExistingSeriesPath(ticker)
	if !ok {
		return f.maxHistoryDays
	}
	last, ok := lastProcessedDate(path)
	if !ok {
		return f.maxHistoryDays
	}

	days := int(f.now().UTC().Sub(last).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	if days > f.maxHistoryDays {
		days = f.maxHistoryDays
	}
	return days
}

// lastProcessedDate reads the date of the final row of a series file. The
// file is always sorted ascending, so the last non-empty line carries the
// most recent processed day.
func lastProcessedDate(path string) (time.Time, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, false
	}

	lines := strings.Split(string(raw), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		d, err := models.ParseSeriesLine(line)
		if err != nil {
			return time.Time{}, false
		}
		return d.Time, true
	}
	return time.Time{}, false
}

func parseAndAlign(id string, raw []byte) ([]models.MarketDatum, error) {
	chart, err := gecko.ParseMarketChart(raw)
	if err != nil {
		return nil, fmt.Errorf("parse chart for %s: %w", id, err)
	}
	return Align(chart), nil
}
