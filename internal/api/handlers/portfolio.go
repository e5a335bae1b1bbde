package handlers

import (
	"net/http"
	"time"

	"github.com/tikalinvest/portfolio-client/internal/api/response"
	"github.com/tikalinvest/portfolio-client/internal/service"
)

// PortfolioHandler serves the valuation snapshot and transaction history.
type PortfolioHandler struct {
	ledger       *service.LedgerService
	marketData   *service.MarketDataService
	valuation    *service.ValuationService
	balance      *service.BalanceService
	transactions *service.TransactionService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependencies.
func NewPortfolioHandler(
	ledger *service.LedgerService,
	marketData *service.MarketDataService,
	valuation *service.ValuationService,
	balance *service.BalanceService,
	transactions *service.TransactionService,
) *PortfolioHandler {
	return &PortfolioHandler{
		ledger:       ledger,
		marketData:   marketData,
		valuation:    valuation,
		balance:      balance,
		transactions: transactions,
	}
}

// Portfolio handles GET requests for the current portfolio valuation.
// Combines the ledger with the best known price per symbol; positions
// without any price still appear, flagged unknown.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with PortfolioSummary
func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	positions := h.ledger.Positions()
	quotes := h.marketData.PriceLookup(r.Context(), h.ledger.Symbols())

	snapshot := h.valuation.Snapshot(positions, quotes, time.Now())

	balance, err := h.balance.Available(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to read balance", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, h.valuation.Summary(snapshot, balance))
}

// Transactions handles GET requests for the transaction history, newest first.
//
// Endpoint: GET /api/portfolio/transactions
// Response: 200 OK with array of Transaction
func (h *PortfolioHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	history, err := h.transactions.History(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve transactions", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, history)
}
