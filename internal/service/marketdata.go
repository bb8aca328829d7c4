package service

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"coinpulse/internal/domain/models"
	"coinpulse/internal/store"
)

// MarketDataService defines read access to the files the sync pipeline
// produces. The API layer serves what is on disk; it never reaches the
// vendor.
type MarketDataService interface {
	// GetSeries returns the daily records of one instrument, optionally
	// bounded by inclusive from/to dates. A nil slice with a nil error means
	// the instrument has no series file.
	GetSeries(ctx context.Context, ticker string, from, to *time.Time) ([]models.MarketDatum, error)

	// GetUniverse returns the instrument cross-section of one calendar date.
	// A nil slice with a nil error means no snapshot exists for that date.
	GetUniverse(ctx context.Context, date time.Time) ([]models.UniverseEntry, error)
}

type marketDataService struct {
	layout *store.Layout
}

// NewMarketDataService builds the service over the configured layout.
func NewMarketDataService(layout *store.Layout) MarketDataService {
	return &marketDataService{layout: layout}
}

func (s *marketDataService) GetSeries(_ context.Context, ticker string, from, to *time.Time) ([]models.MarketDatum, error) {
	lines, err := readFileLines(s.layout.SeriesPath(ticker))
	if err != nil || lines == nil {
		return nil, err
	}

	out := make([]models.MarketDatum, 0, len(lines))
	for _, line := range lines {
		d, err := models.ParseSeriesLine(line)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", ticker, err)
		}
		if from != nil && d.Time.Before(*from) {
			continue
		}
		if to != nil && d.Time.After(*to) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *marketDataService) GetUniverse(_ context.Context, date time.Time) ([]models.UniverseEntry, error) {
	dateKey := date.UTC().Format(models.DateLayout)
	lines, err := readFileLines(s.layout.UniversePath(dateKey))
	if err != nil || lines == nil {
		return nil, err
	}

	out := make([]models.UniverseEntry, 0, len(lines))
	for _, line := range lines {
		e, err := models.ParseUniverseLine(line)
		if err != nil {
			return nil, fmt.Errorf("universe %s: %w", dateKey, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// readFileLines returns the non-empty lines of a file, or nil for a missing
// file.
func readFileLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
