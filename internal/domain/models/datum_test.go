package models

import (
	"testing"
	"time"
)

func TestMarketDatum_SeriesLine(t *testing.T) {
	d := MarketDatum{
		Time:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Price:     7194.89,
		Volume:    21487120000,
		MarketCap: 130589374613,
	}
	want := "20200101,7194.89,21487120000,130589374613"
	if got := d.SeriesLine(); got != want {
		t.Fatalf("SeriesLine=%q, want %q", got, want)
	}
}

func TestMarketDatum_UniverseLine_UppercasesTicker(t *testing.T) {
	d := MarketDatum{Time: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), Price: 1, Volume: 2, MarketCap: 3}
	if got := d.UniverseLine("btc"); got != "BTC,1,2,3" {
		t.Fatalf("UniverseLine=%q", got)
	}
}

func TestParseSeriesLine_RoundTrip(t *testing.T) {
	d := MarketDatum{
		Time:      time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC),
		Price:     0.000123,
		Volume:    42,
		MarketCap: 99.5,
	}
	got, err := ParseSeriesLine(d.SeriesLine())
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if !got.Time.Equal(d.Time) || got.Price != d.Price || got.Volume != d.Volume || got.MarketCap != d.MarketCap {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, d)
	}
}

func TestParseSeriesLine_Invalid(t *testing.T) {
	cases := []string{
		"",
		"20200101,1,2",
		"2020-01-01,1,2,3",
		"20200101,x,2,3",
	}
	for _, line := range cases {
		if _, err := ParseSeriesLine(line); err == nil {
			t.Fatalf("expected error for %q", line)
		}
	}
}

func TestParseUniverseLine(t *testing.T) {
	e, err := ParseUniverseLine("eth,120.5,1000,13000000")
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if e.Ticker != "ETH" || e.Price != 120.5 || e.Volume != 1000 || e.MarketCap != 13000000 {
		t.Fatalf("unexpected entry: %+v", e)
	}

	if _, err := ParseUniverseLine(",1,2,3"); err == nil {
		t.Fatalf("expected error for empty ticker")
	}
}
