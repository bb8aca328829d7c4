package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"coinpulse/internal/domain/dto"
	"coinpulse/internal/domain/models"
	"coinpulse/internal/service"
)

// Handler maps the read endpoints onto the market-data service: it
// validates query parameters, queries the service and translates results
// into response DTOs.
type Handler struct {
	svc service.MarketDataService
}

// NewHandler constructs a Handler over the given service.
func NewHandler(svc service.MarketDataService) *Handler {
	return &Handler{svc: svc}
}

// GetSeries handles GET /api/v1/series requests.
//
// Query parameters:
//   - ticker (required): instrument ticker, case-insensitive.
//   - from, to (optional): inclusive date bounds in yyyyMMdd.
//
// Responses:
//   - 200: dto.SeriesResponse with the daily points.
//   - 400: missing ticker or malformed date.
//   - 404: no series file for the ticker.
//   - 500: storage failure.
func (h *Handler) GetSeries(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Query("ticker")))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("ticker is required", nil))
		return
	}

	from, ok := parseDateParam(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateParam(c, "to")
	if !ok {
		return
	}

	data, err := h.svc.GetSeries(c.Request.Context(), ticker, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to read series", err))
		return
	}
	if data == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no data found", nil))
		return
	}

	resp := dto.SeriesResponse{Ticker: ticker, Points: make([]dto.SeriesPoint, 0, len(data))}
	for _, d := range data {
		resp.Points = append(resp.Points, dto.SeriesPoint{
			Date:      d.DateKey(),
			Price:     d.Price,
			Volume:    d.Volume,
			MarketCap: d.MarketCap,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// GetUniverse handles GET /api/v1/universe requests.
//
// Query parameters:
//   - date (required): snapshot date in yyyyMMdd.
//
// Responses:
//   - 200: dto.UniverseResponse with the cross-section of that date.
//   - 400: missing or malformed date.
//   - 404: no snapshot for the date.
//   - 500: storage failure.
func (h *Handler) GetUniverse(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("date is required", nil))
		return
	}
	date, err := time.ParseInLocation(models.DateLayout, raw, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid date format, expected yyyyMMdd", err))
		return
	}

	entries, err := h.svc.GetUniverse(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to read universe", err))
		return
	}
	if entries == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no data found", nil))
		return
	}

	resp := dto.UniverseResponse{Date: raw, Instruments: make([]dto.UniverseInstrument, 0, len(entries))}
	for _, e := range entries {
		resp.Instruments = append(resp.Instruments, dto.UniverseInstrument{
			Ticker:    e.Ticker,
			Price:     e.Price,
			Volume:    e.Volume,
			MarketCap: e.MarketCap,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// parseDateParam reads an optional yyyyMMdd query parameter; on a malformed
// value it writes a 400 and reports ok=false.
func parseDateParam(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	parsed, err := time.ParseInLocation(models.DateLayout, raw, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid "+name+" format, expected yyyyMMdd", err))
		return nil, false
	}
	return &parsed, true
}
