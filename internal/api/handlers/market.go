package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tikalinvest/portfolio-client/internal/api/response"
	"github.com/tikalinvest/portfolio-client/internal/apperrors"
	"github.com/tikalinvest/portfolio-client/internal/model"
	"github.com/tikalinvest/portfolio-client/internal/service"
)

// defaultChartPoints bounds the number of bars a chart request returns when
// the caller does not say otherwise.
const defaultChartPoints = 50

// MarketHandler serves cached price history and current quotes.
type MarketHandler struct {
	marketData *service.MarketDataService
}

// NewMarketHandler creates a new MarketHandler with the provided service dependency.
func NewMarketHandler(marketData *service.MarketDataService) *MarketHandler {
	return &MarketHandler{marketData: marketData}
}

// HistoryResponse is the payload of the history endpoint: the downsampled
// bars plus the stale flag so the UI can badge degraded data.
type HistoryResponse struct {
	Symbol string      `json:"symbol"`
	Stale  bool        `json:"stale"`
	Bars   []model.Bar `json:"bars"`
}

// History handles GET requests for a symbol's price history, serving the
// cache when fresh and falling back to stale data if a live fetch fails.
//
// Endpoint: GET /api/market/history/{symbol}?points=N
// Response: 200 OK with HistoryResponse (stale=true on degraded reads)
// Error: 404 Not Found when no data is cached and the fetch failed
func (h *MarketHandler) History(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	points := defaultChartPoints
	if raw := r.URL.Query().Get("points"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.RespondError(w, http.StatusBadRequest, "points must be a positive integer", nil)
			return
		}
		points = n
	}

	series, err := h.marketData.GetSeries(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, apperrors.ErrDataUnavailable) {
			response.RespondError(w, http.StatusNotFound, "no market data available", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to load market data", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, HistoryResponse{
		Symbol: series.Symbol,
		Stale:  series.Stale,
		Bars:   model.Downsample(series.Bars, points),
	})
}

// Quotes handles GET requests for a batch of current quotes.
//
// Endpoint: GET /api/market/quotes?symbols=AAPL,MSFT
// Response: 200 OK with map of symbol to Quote
func (h *MarketHandler) Quotes(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("symbols"))
	if raw == "" {
		response.RespondError(w, http.StatusBadRequest, "symbols parameter is required", nil)
		return
	}

	quotes, err := h.marketData.GetQuotes(r.Context(), strings.Split(raw, ","))
	if err != nil {
		response.RespondError(w, http.StatusBadGateway, "failed to fetch quotes", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, quotes)
}
