// Package pipeline orchestrates one sync run end to end: universe
// resolution, per-instrument series fetching, canonical-identifier
// selection, and the merge of every output file.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"coinpulse/config"
	"coinpulse/internal/domain/models"
	"coinpulse/internal/gecko"
	"coinpulse/internal/logger"
	"coinpulse/internal/ratelimit"
	"coinpulse/internal/series"
	"coinpulse/internal/store"
	"coinpulse/internal/universe"
)

// seriesFetcher is what the runner needs from the series layer.
type seriesFetcher interface {
	Fetch(ctx context.Context, id, ticker string) ([]models.MarketDatum, error)
}

// fetcherCtor is indirection for tests.
var fetcherCtor = func(client *gecko.Client, layout *store.Layout, maxHistoryDays int) seriesFetcher {
	return series.NewFetcher(client, layout, maxHistoryDays)
}

// Runner executes the sync pipeline against one configured environment.
type Runner struct {
	layout        *store.Layout
	client        *gecko.Client
	fetcher       seriesFetcher
	referenceFile string
}

// NewRunner wires the pipeline from configuration: storage layout, shared
// rate limiter, vendor client and series fetcher.
func NewRunner(cfg *config.Config) (*Runner, error) {
	layout := store.NewLayout(cfg.Store.DataDir, cfg.Store.ProcessedDir, cfg.Store.CacheDir)

	limiter := ratelimit.New(cfg.Gecko.RatePerMinute)
	var opts []gecko.Option
	if cfg.Gecko.APIKey != "" {
		opts = append(opts, gecko.WithAPIKey(cfg.Gecko.APIKey, cfg.Gecko.APITier))
	}
	client, err := gecko.NewClient(cfg.Gecko.BaseURL, limiter, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vendor client: %w", err)
	}

	return &Runner{
		layout:        layout,
		client:        client,
		fetcher:       fetcherCtor(client, layout, cfg.Gecko.MaxHistoryDays),
		referenceFile: cfg.Store.ReferenceFile,
	}, nil
}

// Run executes one full sync: resolve the working set, fetch every
// candidate's series, select canonical identifiers, then merge series files,
// universe snapshots and the blacklist.
//
// A terminal fetch error aborts the run immediately and nothing further is
// written; everything already merged stays on disk and the next run picks
// up from there.
func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()

	if err := r.layout.EnsureDirs(); err != nil {
		return err
	}

	supported, err := universe.LoadSupportedTickers(r.referenceFile)
	if err != nil {
		return fmt.Errorf("load supported tickers: %w", err)
	}
	blacklist, err := universe.LoadBlacklist(r.layout.BlacklistPath())
	if err != nil {
		return err
	}

	catalog, err := r.loadCatalog(ctx)
	if err != nil {
		return err
	}

	groups := universe.Resolve(catalog, supported, blacklist.Set())

	tickers := make([]string, 0, len(groups))
	for t := range groups {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	logger.L().Info().
		Int("supported", len(supported)).
		Int("catalog", len(catalog)).
		Int("tickers", len(tickers)).
		Int("blacklisted", blacklist.Len()).
		Msg("universe resolved")

	universeByDate := make(map[string][]string)
	var processed, skipped int

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return err
		}

		candidates := groups[ticker]
		seriesByID := make(map[string][]models.MarketDatum, len(candidates))
		for _, c := range candidates {
			data, err := r.fetcher.Fetch(ctx, c.ID, ticker)
			if err != nil {
				return fmt.Errorf("ticker %s: %w", ticker, err)
			}
			seriesByID[c.ID] = data
		}

		canonicalID, ok := universe.SelectCanonical(candidates, seriesByID)
		if !ok {
			logger.L().Warn().Str("ticker", ticker).Int("candidates", len(candidates)).Msg("no usable data, skipping ticker")
			skipped++
			continue
		}

		// Every candidate that was compared against the winner and lost is
		// excluded permanently. Candidates without any observation are not
		// judged and stay eligible for future runs.
		for id, data := range seriesByID {
			if id != canonicalID && len(data) > 0 {
				blacklist.Add(id)
			}
		}

		data := seriesByID[canonicalID]
		lines := make([]string, 0, len(data))
		for _, d := range data {
			lines = append(lines, d.SeriesLine())
			universeByDate[d.DateKey()] = append(universeByDate[d.DateKey()], d.UniverseLine(ticker))
		}

		prior, _ := r.layout.ExistingSeriesPath(ticker)
		if err := store.MergeSeries(prior, r.layout.SeriesPath(ticker), lines); err != nil {
			return fmt.Errorf("merge series %s: %w", ticker, err)
		}
		processed++

		logger.L().Debug().
			Str("ticker", ticker).
			Str("id", canonicalID).
			Int("rows", len(lines)).
			Msg("series merged")
	}

	if err := store.WriteUniverseSnapshots(ctx, r.layout, universeByDate); err != nil {
		return err
	}
	if err := blacklist.Save(r.layout.BlacklistPath()); err != nil {
		return err
	}

	logger.L().Info().
		Int("processed", processed).
		Int("skipped", skipped).
		Int("universe_dates", len(universeByDate)).
		Int("blacklisted", blacklist.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("sync run complete")
	return nil
}

// loadCatalog returns the vendor coin catalog, preferring the raw cache file
// over the network. An unavailable catalog is terminal: without it no
// universe can be resolved.
func (r *Runner) loadCatalog(ctx context.Context) ([]gecko.CoinListing, error) {
	cachePath := r.layout.CatalogCachePath()
	if raw, err := os.ReadFile(cachePath); err == nil {
		logger.L().Debug().Str("cache", cachePath).Msg("using cached coin catalog")
		return gecko.ParseCatalog(raw)
	}

	body, found, err := r.client.CoinList(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch coin catalog: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("coin catalog endpoint returned no data")
	}
	if err := os.WriteFile(cachePath, body, 0o644); err != nil {
		return nil, fmt.Errorf("cache coin catalog: %w", err)
	}
	return gecko.ParseCatalog(body)
}
