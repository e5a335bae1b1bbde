package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tikalinvest/portfolio-client/internal/api/handlers"
	custommiddleware "github.com/tikalinvest/portfolio-client/internal/api/middleware"
	"github.com/tikalinvest/portfolio-client/internal/config"
	"github.com/tikalinvest/portfolio-client/internal/service"
)

// Services bundles the service dependencies the router wires into handlers.
type Services struct {
	System       *service.SystemService
	Ledger       *service.LedgerService
	MarketData   *service.MarketDataService
	Valuation    *service.ValuationService
	Balance      *service.BalanceService
	Trade        *service.TradeService
	Transactions *service.TransactionService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(
				svc.Ledger, svc.MarketData, svc.Valuation, svc.Balance, svc.Transactions,
			)
			r.Get("/", portfolioHandler.Portfolio)
			r.Get("/transactions", portfolioHandler.Transactions)
		})

		tradeHandler := handlers.NewTradeHandler(svc.Trade)
		r.Post("/trade", tradeHandler.Execute)

		balanceHandler := handlers.NewBalanceHandler(svc.Balance)
		r.Get("/balance", balanceHandler.Balance)

		r.Route("/market", func(r chi.Router) {
			marketHandler := handlers.NewMarketHandler(svc.MarketData)
			r.Get("/history/{symbol}", marketHandler.History)
			r.Get("/quotes", marketHandler.Quotes)
		})
	})

	return r
}
