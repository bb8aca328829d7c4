// Package series turns raw vendor market-chart payloads into per-day
// records, fetching them through the cache-first, lookback-aware path the
// pipeline relies on for idempotent reruns.
package series

import (
	"sort"

	"coinpulse/internal/domain/models"
	"coinpulse/internal/gecko"
)

// earliestYear cuts off pre-history garbage points the vendor occasionally
// serves before real daily data begins.
const earliestYear = 2013

// Align collapses the three independently keyed chart series into one
// record per UTC day.
//
// Pass order is observable behavior and fixed:
//  1. market-cap points create records, but only when the point's UTC
//     time-of-day is exactly midnight and its year is >= 2013; everything
//     else is vendor noise and is discarded. Missing amounts are zero.
//  2. price points overlay records whose key matches exactly; price alone
//     never creates a record.
//  3. volume points overlay the same way.
//
// Days that only have a price or volume point are therefore silently lost.
// That is intended: a record exists only where a midnight market-cap
// observation existed.
func Align(chart gecko.MarketChart) []models.MarketDatum {
	byTime := make(map[int64]*models.MarketDatum, len(chart.MarketCaps))

	for _, p := range chart.MarketCaps {
		t := p.Time.UTC()
		if t.Year() < earliestYear {
			continue
		}
		if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
			continue
		}
		byTime[t.UnixMilli()] = &models.MarketDatum{Time: t, MarketCap: p.Value}
	}

	for _, p := range chart.Prices {
		if d, ok := byTime[p.Time.UTC().UnixMilli()]; ok {
			d.Price = p.Value
		}
	}
	for _, p := range chart.TotalVolumes {
		if d, ok := byTime[p.Time.UTC().UnixMilli()]; ok {
			d.Volume = p.Value
		}
	}

	out := make([]models.MarketDatum, 0, len(byTime))
	for _, d := range byTime {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
