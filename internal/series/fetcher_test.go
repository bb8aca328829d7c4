package series

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"coinpulse/internal/gecko"
	"coinpulse/internal/ratelimit"
	"coinpulse/internal/store"
)

// 2020-01-01T00:00:00Z in epoch milliseconds.
const chartJSON = `{"prices":[[1577836800000,100]],"market_caps":[[1577836800000,1000]],"total_volumes":[[1577836800000,50]]}`

func testStoreLayout(t *testing.T) *store.Layout {
	t.Helper()
	root := t.TempDir()
	l := store.NewLayout(
		filepath.Join(root, "output"),
		filepath.Join(root, "processed"),
		filepath.Join(root, "cache"),
	)
	if err := l.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	return l
}

func testClient(t *testing.T, baseURL string) *gecko.Client {
	t.Helper()
	c, err := gecko.NewClient(baseURL+"/", ratelimit.New(100000))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestFetch_CacheHitSkipsNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	l := testStoreLayout(t)
	if err := os.WriteFile(l.ChartCachePath("bitcoin"), []byte(chartJSON), 0o600); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	f := NewFetcher(testClient(t, srv.URL), l, 365)
	got, err := f.Fetch(context.Background(), "bitcoin", "BTC")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("cache hit must not touch the network, got %d requests", hits)
	}
	if len(got) != 1 || got[0].Price != 100 {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestFetch_WritesCacheVerbatimAndReusesIt(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	l := testStoreLayout(t)
	f := NewFetcher(testClient(t, srv.URL), l, 365)

	if _, err := f.Fetch(context.Background(), "ethereum", "ETH"); err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	raw, err := os.ReadFile(l.ChartCachePath("ethereum"))
	if err != nil {
		t.Fatalf("cache file missing: %v", err)
	}
	if string(raw) != chartJSON {
		t.Fatalf("cache not verbatim: %q", raw)
	}

	if _, err := f.Fetch(context.Background(), "ethereum", "ETH"); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("second fetch must come from cache, got %d requests", hits)
	}
}

func TestFetch_NotFoundYieldsNoDataAndNoCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	l := testStoreLayout(t)
	f := NewFetcher(testClient(t, srv.URL), l, 365)

	got, err := f.Fetch(context.Background(), "ghost-coin", "GHOST")
	if err != nil {
		t.Fatalf("404 must not be an error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil records, got %+v", got)
	}
	if _, err := os.Stat(l.ChartCachePath("ghost-coin")); !os.IsNotExist(err) {
		t.Fatalf("404 must not be cached, stat err=%v", err)
	}
}

func TestFetch_LookbackFromLastProcessedDate(t *testing.T) {
	var gotDays atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDays.Store(r.URL.Query().Get("days"))
		_, _ = w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	l := testStoreLayout(t)
	mirror := l.ProcessedSeriesPath("btc")
	if err := os.WriteFile(mirror, []byte("20200101,1,1,1\n20200105,2,2,2\n"), 0o600); err != nil {
		t.Fatalf("seed mirror: %v", err)
	}

	f := NewFetcher(testClient(t, srv.URL), l, 365)
	f.now = func() time.Time { return time.Date(2020, 1, 15, 12, 0, 0, 0, time.UTC) }

	if _, err := f.Fetch(context.Background(), "bitcoin", "BTC"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// 2020-01-05 to 2020-01-15T12:00 is 10.5 days, truncated to 10, plus 1.
	days, _ := strconv.Atoi(gotDays.Load().(string))
	if days != 11 {
		t.Fatalf("requested days=%d, want 11", days)
	}
}

func TestFetch_FullHistoryWithoutPriorFile(t *testing.T) {
	var gotDays atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDays.Store(r.URL.Query().Get("days"))
		_, _ = w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	l := testStoreLayout(t)
	f := NewFetcher(testClient(t, srv.URL), l, 90)

	if _, err := f.Fetch(context.Background(), "bitcoin", "BTC"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := gotDays.Load().(string); got != "90" {
		t.Fatalf("requested days=%s, want 90", got)
	}
}
