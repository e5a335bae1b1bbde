package handlers

import (
	"errors"
	"net/http"

	"github.com/tikalinvest/portfolio-client/internal/api/request"
	"github.com/tikalinvest/portfolio-client/internal/api/response"
	"github.com/tikalinvest/portfolio-client/internal/apperrors"
	"github.com/tikalinvest/portfolio-client/internal/model"
	"github.com/tikalinvest/portfolio-client/internal/service"
	"github.com/tikalinvest/portfolio-client/internal/validation"
)

// TradeHandler handles trade execution requests.
type TradeHandler struct {
	tradeService *service.TradeService
}

// NewTradeHandler creates a new TradeHandler with the provided service dependency.
func NewTradeHandler(tradeService *service.TradeService) *TradeHandler {
	return &TradeHandler{tradeService: tradeService}
}

// Execute handles POST requests to run one trade through the executor.
// Pre-flight validation failures come back without the backend having been
// contacted; backend rejections carry the backend's reason verbatim.
//
// Endpoint: POST /api/trade
// Request Body: ExecuteTradeRequest (symbol, kind, shares, pricePerShare)
// Response: 201 Created with TradeResult on confirmation
// Error: 400 Bad Request if validation fails (insufficient shares/funds included)
// Error: 409 Conflict if a trade for the symbol is already submitting
// Error: 422 Unprocessable Entity if the backend rejected the trade
// Error: 502 Bad Gateway if the backend could not be reached
func (h *TradeHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ExecuteTradeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateExecuteTrade(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.tradeService.Execute(r.Context(), model.TradeRequest{
		Symbol:        req.Symbol,
		Kind:          req.Kind,
		Shares:        req.Shares,
		PricePerShare: req.PricePerShare,
	})
	if err != nil {
		h.respondTradeError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

func (h *TradeHandler) respondTradeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientShares):
		response.RespondRejection(w, http.StatusBadRequest, apperrors.ReasonInsufficientShares, err.Error())
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		response.RespondRejection(w, http.StatusBadRequest, apperrors.ReasonInsufficientFunds, err.Error())
	case errors.Is(err, apperrors.ErrInvalidShares), errors.Is(err, apperrors.ErrInvalidAmount):
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
	case errors.Is(err, apperrors.ErrTradeInFlight):
		response.RespondError(w, http.StatusConflict, "trade already in progress", err.Error())
	default:
		if rej, ok := apperrors.IsRejection(err); ok {
			response.RespondRejection(w, http.StatusUnprocessableEntity, rej.Reason, rej.Detail)
			return
		}
		response.RespondError(w, http.StatusBadGateway, "trade submission failed", err.Error())
	}
}
