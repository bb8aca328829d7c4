package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"coinpulse/internal/domain/dto"
	"coinpulse/internal/domain/models"
	"coinpulse/internal/service"
)

type mockMarketDataService struct {
	series   []models.MarketDatum
	universe []models.UniverseEntry
	err      error

	gotFrom *time.Time
	gotTo   *time.Time
}

func (m *mockMarketDataService) GetSeries(_ context.Context, _ string, from, to *time.Time) ([]models.MarketDatum, error) {
	m.gotFrom, m.gotTo = from, to
	return m.series, m.err
}

func (m *mockMarketDataService) GetUniverse(_ context.Context, _ time.Time) ([]models.UniverseEntry, error) {
	return m.universe, m.err
}

var _ service.MarketDataService = (*mockMarketDataService)(nil)

func setupRouterWithMock(s service.MarketDataService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s)
	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/series", h.GetSeries)
	v1.GET("/universe", h.GetUniverse)
	return r
}

func TestGetSeries_TableDriven(t *testing.T) {
	sample := []models.MarketDatum{{
		Time:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Price:     7194.89,
		Volume:    21487120000,
		MarketCap: 130589374613,
	}}

	cases := []struct {
		name   string
		svc    *mockMarketDataService
		query  string
		status int
		assert func(t *testing.T, body []byte)
	}{
		{
			name:   "missing ticker",
			svc:    &mockMarketDataService{},
			query:  "/api/v1/series",
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid from format",
			svc:    &mockMarketDataService{},
			query:  "/api/v1/series?ticker=BTC&from=2020-01-01",
			status: http.StatusBadRequest,
		},
		{
			name:   "not found",
			svc:    &mockMarketDataService{series: nil, err: nil},
			query:  "/api/v1/series?ticker=XYZ",
			status: http.StatusNotFound,
		},
		{
			name:   "internal error",
			svc:    &mockMarketDataService{err: errors.New("disk gone")},
			query:  "/api/v1/series?ticker=BTC",
			status: http.StatusInternalServerError,
		},
		{
			name:   "success",
			svc:    &mockMarketDataService{series: sample},
			query:  "/api/v1/series?ticker=btc&from=20200101&to=20200102",
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var out dto.SeriesResponse
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if out.Ticker != "BTC" || len(out.Points) != 1 {
					t.Fatalf("unexpected body: %+v", out)
				}
				if out.Points[0].Date != "20200101" || out.Points[0].Price != 7194.89 {
					t.Fatalf("unexpected point: %+v", out.Points[0])
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc)
			req := httptest.NewRequest(http.MethodGet, tc.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if tc.assert != nil {
				tc.assert(t, w.Body.Bytes())
			}
		})
	}
}

func TestGetSeries_ForwardsDateBounds(t *testing.T) {
	svc := &mockMarketDataService{series: []models.MarketDatum{}}
	r := setupRouterWithMock(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/series?ticker=BTC&from=20200101&to=20200131", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if svc.gotFrom == nil || svc.gotFrom.Format(models.DateLayout) != "20200101" {
		t.Fatalf("from not forwarded: %v", svc.gotFrom)
	}
	if svc.gotTo == nil || svc.gotTo.Format(models.DateLayout) != "20200131" {
		t.Fatalf("to not forwarded: %v", svc.gotTo)
	}
}

func TestGetUniverse_TableDriven(t *testing.T) {
	sample := []models.UniverseEntry{
		{Ticker: "BTC", Price: 7194.89, Volume: 21487120000, MarketCap: 130589374613},
		{Ticker: "ETH", Price: 129.61, Volume: 7935230000, MarketCap: 14129710000},
	}

	cases := []struct {
		name   string
		svc    *mockMarketDataService
		query  string
		status int
		assert func(t *testing.T, body []byte)
	}{
		{
			name:   "missing date",
			svc:    &mockMarketDataService{},
			query:  "/api/v1/universe",
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid date",
			svc:    &mockMarketDataService{},
			query:  "/api/v1/universe?date=01-01-2020",
			status: http.StatusBadRequest,
		},
		{
			name:   "not found",
			svc:    &mockMarketDataService{universe: nil},
			query:  "/api/v1/universe?date=19990101",
			status: http.StatusNotFound,
		},
		{
			name:   "internal error",
			svc:    &mockMarketDataService{err: errors.New("disk gone")},
			query:  "/api/v1/universe?date=20200101",
			status: http.StatusInternalServerError,
		},
		{
			name:   "success",
			svc:    &mockMarketDataService{universe: sample},
			query:  "/api/v1/universe?date=20200101",
			status: http.StatusOK,
			assert: func(t *testing.T, body []byte) {
				var out dto.UniverseResponse
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if out.Date != "20200101" || len(out.Instruments) != 2 {
					t.Fatalf("unexpected body: %+v", out)
				}
				if out.Instruments[1].Ticker != "ETH" {
					t.Fatalf("unexpected instrument: %+v", out.Instruments[1])
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc)
			req := httptest.NewRequest(http.MethodGet, tc.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if tc.assert != nil {
				tc.assert(t, w.Body.Bytes())
			}
		})
	}
}
