package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"coinpulse/internal/domain/dto"
	"coinpulse/internal/domain/models"
	"coinpulse/internal/service"
)

type mockMarketDataServiceRouter struct {
	series []models.MarketDatum
}

func (m *mockMarketDataServiceRouter) GetSeries(_ context.Context, _ string, _, _ *time.Time) ([]models.MarketDatum, error) {
	return m.series, nil
}

func (m *mockMarketDataServiceRouter) GetUniverse(_ context.Context, _ time.Time) ([]models.UniverseEntry, error) {
	return nil, nil
}

var _ service.MarketDataService = (*mockMarketDataServiceRouter)(nil)

func TestNewRouter_WiringAndMiddlewares(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &mockMarketDataServiceRouter{series: []models.MarketDatum{{
		Time:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Price:     7194.89,
		Volume:    21487120000,
		MarketCap: 130589374613,
	}}}
	r := NewRouter(NewHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/series?ticker=BTC", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}

	var out dto.SeriesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if out.Ticker != "BTC" || len(out.Points) != 1 {
		t.Fatalf("unexpected body: %+v", out)
	}
}
