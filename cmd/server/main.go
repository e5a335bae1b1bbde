package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tikalinvest/portfolio-client/internal/api"
	"github.com/tikalinvest/portfolio-client/internal/backend"
	"github.com/tikalinvest/portfolio-client/internal/config"
	"github.com/tikalinvest/portfolio-client/internal/database"
	"github.com/tikalinvest/portfolio-client/internal/logging"
	"github.com/tikalinvest/portfolio-client/internal/refresh"
	"github.com/tikalinvest/portfolio-client/internal/repository"
	"github.com/tikalinvest/portfolio-client/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Init("portfolio-client", "info", true)
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init("portfolio-client", cfg.Log.Level, cfg.Log.Pretty)

	// Open the local store and bring the schema up to date
	db, err := database.Open(cfg.Store.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open store")
	}
	defer db.Close()

	logging.Info().Str("path", cfg.Store.Path).Msg("connected to local store")

	// Create repositories
	transactionRepo := repository.NewTransactionRepository(db)
	balanceRepo := repository.NewBalanceRepository(db)
	seriesRepo := repository.NewSeriesRepository(db)

	// Backend client, authorized with the persisted session token when a
	// fernet key is configured
	var tokens backend.TokenSource
	if cfg.Store.FernetKey != "" {
		sessionRepo, err := repository.NewSessionRepository(db, cfg.Store.FernetKey)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to initialize session store")
		}
		tokens = sessionRepo
	}
	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, tokens)

	// Create services
	systemService := service.NewSystemService(db)
	ledgerService := service.NewLedgerService(transactionRepo)
	marketDataService := service.NewMarketDataService(seriesRepo, backendClient, cfg.Cache.TTL)
	valuationService := service.NewValuationService()
	balanceService := service.NewBalanceService(balanceRepo, backendClient)
	tradeService := service.NewTradeService(db, transactionRepo, ledgerService, balanceService, backendClient)
	transactionService := service.NewTransactionService(transactionRepo)

	// Restore the ledger from the persisted transaction log
	if err := ledgerService.Rebuild(context.Background()); err != nil {
		logging.Fatal().Err(err).Msg("failed to rebuild ledger from transaction log")
	}
	logging.Info().Int("positions", len(ledgerService.Positions())).Msg("ledger restored from store")

	// Background refreshes: balance poll and cache revalidation
	scheduler, err := refresh.New(db, balanceService, marketDataService, cfg.Refresh.BalancePoll, cfg.Refresh.CacheRevalidate)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create refresh scheduler")
	}
	scheduler.Start()

	// Create router
	router := api.NewRouter(api.Services{
		System:       systemService,
		Ledger:       ledgerService,
		MarketData:   marketDataService,
		Valuation:    valuationService,
		Balance:      balanceService,
		Trade:        tradeService,
		Transactions: transactionService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("shutting down")

	scheduler.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logging.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logging.Info().Msg("server exited")
}
