package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/tikalinvest/portfolio-client/internal/repository"
	"github.com/tikalinvest/portfolio-client/internal/service"
)

// NewTestLedger creates a LedgerService over the test database and rebuilds
// it from whatever transactions the test has appended.
func NewTestLedger(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()
	ledger := service.NewLedgerService(repository.NewTransactionRepository(db))
	if err := ledger.Rebuild(context.Background()); err != nil {
		t.Fatalf("failed to rebuild test ledger: %v", err)
	}
	return ledger
}

// NewTestLedgerNoRebuild creates a LedgerService without restoring it, for
// tests that exercise Rebuild directly.
func NewTestLedgerNoRebuild(db *sql.DB) *service.LedgerService {
	return service.NewLedgerService(repository.NewTransactionRepository(db))
}

// NewTestBalanceService creates a BalanceService over the test database.
func NewTestBalanceService(db *sql.DB, backend *MockBackend) *service.BalanceService {
	return service.NewBalanceService(repository.NewBalanceRepository(db), backend)
}

// NewTestTradeService wires a TradeService with a rebuilt ledger over the
// test database and the given mock backend.
func NewTestTradeService(t *testing.T, db *sql.DB, backend service.TradeBackend) (*service.TradeService, *service.LedgerService) {
	t.Helper()
	transactionRepo := repository.NewTransactionRepository(db)
	ledger := NewTestLedger(t, db)
	balance := service.NewBalanceService(repository.NewBalanceRepository(db), nil)
	trade := service.NewTradeService(db, transactionRepo, ledger, balance, backend)
	return trade, ledger
}

// NewTestMarketDataService creates a MarketDataService over the test
// database with the given TTL.
func NewTestMarketDataService(db *sql.DB, backend *MockBackend, ttl time.Duration) *service.MarketDataService {
	return service.NewMarketDataService(repository.NewSeriesRepository(db), backend, ttl)
}
