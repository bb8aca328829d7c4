// Package store owns the on-disk persistence of the sync pipeline: the
// naming convention mapping instruments and dates to file paths, and the
// merge-rewrite of the CSV outputs consumed by the trading engine.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Layout maps instrument identifiers and dates to file paths under the
// destination, processed-mirror and cache directories.
//
// Convention:
//   - <DataDir>/<ticker>.csv            per-instrument series (lowercase stem)
//   - <DataDir>/universe/<yyyyMMdd>.csv per-date universe snapshot
//   - <DataDir>/blacklist.csv           excluded identifiers
//   - <CacheDir>/<id>.json              raw market-chart response per id
//   - <CacheDir>/list.json              raw coin catalog response
//   - <ProcessedDir>/<ticker>.csv       already-delivered series mirror
type Layout struct {
	DataDir      string
	ProcessedDir string
	CacheDir     string
}

// NewLayout builds a Layout over the three configured directories.
func NewLayout(dataDir, processedDir, cacheDir string) *Layout {
	return &Layout{DataDir: dataDir, ProcessedDir: processedDir, CacheDir: cacheDir}
}

// EnsureDirs creates every directory of the layout that does not exist yet.
func (l *Layout) EnsureDirs() error {
	for _, dir := range []string{l.DataDir, l.UniverseDir(), l.ProcessedDir, l.CacheDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// SeriesPath returns the destination path of a per-instrument series file.
func (l *Layout) SeriesPath(ticker string) string {
	return filepath.Join(l.DataDir, strings.ToLower(ticker)+".csv")
}

// ProcessedSeriesPath returns the processed-mirror path of a series file.
func (l *Layout) ProcessedSeriesPath(ticker string) string {
	return filepath.Join(l.ProcessedDir, strings.ToLower(ticker)+".csv")
}

// ExistingSeriesPath returns the on-disk series file to treat as prior
// state for a ticker, preferring the processed mirror (the source of truth
// for already-delivered data) over the destination.
func (l *Layout) ExistingSeriesPath(ticker string) (string, bool) {
	for _, p := range []string{l.ProcessedSeriesPath(ticker), l.SeriesPath(ticker)} {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// UniverseDir returns the directory holding per-date universe snapshots.
func (l *Layout) UniverseDir() string {
	return filepath.Join(l.DataDir, "universe")
}

// UniversePath returns the snapshot path for one yyyyMMdd date key.
func (l *Layout) UniversePath(dateKey string) string {
	return filepath.Join(l.UniverseDir(), dateKey+".csv")
}

// BlacklistPath returns the exclusion list path.
func (l *Layout) BlacklistPath() string {
	return filepath.Join(l.DataDir, "blacklist.csv")
}

// ChartCachePath returns the raw-response cache path for one identifier.
// Presence of the file suppresses the network call; deleting it is the
// invalidation mechanism.
func (l *Layout) ChartCachePath(id string) string {
	return filepath.Join(l.CacheDir, id+".json")
}

// CatalogCachePath returns the raw coin-catalog cache path.
func (l *Layout) CatalogCachePath() string {
	return filepath.Join(l.CacheDir, "list.json")
}
