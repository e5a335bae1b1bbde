package handlers

import (
	"net/http"

	"github.com/tikalinvest/portfolio-client/internal/api/response"
	"github.com/tikalinvest/portfolio-client/internal/service"
)

// BalanceHandler serves the available cash balance.
type BalanceHandler struct {
	balanceService *service.BalanceService
}

// NewBalanceHandler creates a new BalanceHandler with the provided service dependency.
func NewBalanceHandler(balanceService *service.BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// Balance handles GET requests for the available cash balance.
//
// Endpoint: GET /api/balance
// Response: 200 OK with {available}
func (h *BalanceHandler) Balance(w http.ResponseWriter, r *http.Request) {
	available, err := h.balanceService.Available(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to read balance", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{"available": available})
}
