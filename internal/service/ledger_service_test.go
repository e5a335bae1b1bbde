package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tikalinvest/portfolio-client/internal/apperrors"
	"github.com/tikalinvest/portfolio-client/internal/model"
	"github.com/tikalinvest/portfolio-client/internal/service"
	"github.com/tikalinvest/portfolio-client/internal/testutil"
)

// TestLedgerService_Apply tests the transaction fold rules.
//
// WHY: The fold is the one place holdings are derived from trades. Weighted
// average cost on buys, untouched cost basis on sells and position removal
// at zero shares are the core correctness contracts of the ledger.
func TestLedgerService_Apply(t *testing.T) {
	now := time.Now().UTC()

	t.Run("first buy creates position at trade price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestLedger(t, db)

		pos, err := ledger.Apply(testutil.NewTransaction(t, "AAPL", model.TransactionBuy, "10", "150", now))
		if err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}

		if !pos.Shares.Equal(testutil.Dec(t, "10")) {
			t.Errorf("Expected 10 shares, got %s", pos.Shares)
		}
		if !pos.AverageCost.Equal(testutil.Dec(t, "150")) {
			t.Errorf("Expected average cost 150, got %s", pos.AverageCost)
		}
	})

	t.Run("second buy recomputes weighted average cost", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestLedger(t, db)

		// 10 @ 150 then 10 @ 170 blends to 20 @ 160
		mustApply(t, ledger, testutil.NewTransaction(t, "AAPL", model.TransactionBuy, "10", "150", now))
		pos, err := ledger.Apply(testutil.NewTransaction(t, "AAPL", model.TransactionBuy, "10", "170", now.Add(time.Minute)))
		if err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}

		if !pos.Shares.Equal(testutil.Dec(t, "20")) {
			t.Errorf("Expected 20 shares, got %s", pos.Shares)
		}
		if !pos.AverageCost.Equal(testutil.Dec(t, "160")) {
			t.Errorf("Expected average cost 160, got %s", pos.AverageCost)
		}
	})

	t.Run("sell reduces shares and leaves average cost unchanged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestLedger(t, db)

		mustApply(t, ledger, testutil.NewTransaction(t, "AAPL", model.TransactionBuy, "10", "150", now))
		pos, err := ledger.Apply(testutil.NewTransaction(t, "AAPL", model.TransactionSell, "5", "180", now.Add(time.Minute)))
		if err != nil {
			t.Fatalf("Apply() returned unexpected error: %v", err)
		}

		if !pos.Shares.Equal(testutil.Dec(t, "5")) {
			t.Errorf("Expected 5 shares, got %s", pos.Shares)
		}
		if !pos.AverageCost.Equal(testutil.Dec(t, "150")) {
			t.Errorf("Expected average cost 150 after sell, got %s", pos.AverageCost)
		}
	})

	t.Run("selling down to exactly zero removes the position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestLedger(t, db)

		mustApply(t, ledger, testutil.NewTransaction(t, "AAPL", model.TransactionBuy, "10", "150", now))
		mustApply(t, ledger, testutil.NewTransaction(t, "AAPL", model.TransactionSell, "10", "180", now.Add(time.Minute)))

		if _, err := ledger.Position("AAPL"); !errors.Is(err, apperrors.ErrPositionNotFound) {
			t.Errorf("Expected ErrPositionNotFound after closing position, got %v", err)
		}
		if len(ledger.Positions()) != 0 {
			t.Errorf("Expected empty ledger, got %d positions", len(ledger.Positions()))
		}
	})

	t.Run("overselling fails before mutating state", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestLedger(t, db)

		mustApply(t, ledger, testutil.NewTransaction(t, "AAPL", model.TransactionBuy, "5", "150", now))

		_, err := ledger.Apply(testutil.NewTransaction(t, "AAPL", model.TransactionSell, "15", "180", now.Add(time.Minute)))
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Fatalf("Expected ErrInsufficientShares, got %v", err)
		}

		pos, err := ledger.Position("AAPL")
		if err != nil {
			t.Fatalf("Position() returned unexpected error: %v", err)
		}
		if !pos.Shares.Equal(testutil.Dec(t, "5")) {
			t.Errorf("Expected position untouched at 5 shares, got %s", pos.Shares)
		}
	})

	t.Run("selling an unheld symbol fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestLedger(t, db)

		_, err := ledger.Apply(testutil.NewTransaction(t, "MSFT", model.TransactionSell, "1", "100", now))
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Errorf("Expected ErrInsufficientShares, got %v", err)
		}
	})
}

// TestLedgerService_FoldEquivalence tests that rebuilding from the full log
// matches incremental application.
//
// WHY: Reconstruction is how the ledger is restored after a reload. If
// folding the persisted log ever diverged from the incremental path, a
// restart would silently change the user's holdings.
func TestLedgerService_FoldEquivalence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	transactions := []model.Transaction{
		testutil.NewTransaction(t, "AAPL", model.TransactionBuy, "10", "150", base),
		testutil.NewTransaction(t, "MSFT", model.TransactionBuy, "4", "400", base.Add(1*time.Hour)),
		testutil.NewTransaction(t, "AAPL", model.TransactionBuy, "10", "170", base.Add(2*time.Hour)),
		testutil.NewTransaction(t, "AAPL", model.TransactionSell, "5", "180", base.Add(3*time.Hour)),
		testutil.NewTransaction(t, "MSFT", model.TransactionSell, "4", "390", base.Add(4*time.Hour)),
		testutil.NewTransaction(t, "GOOG", model.TransactionBuy, "2.5", "140.40", base.Add(5*time.Hour)),
	}

	// Incremental application, persisting each transaction as the trade
	// executor would.
	incremental := testutil.NewTestLedger(t, db)
	for _, tx := range transactions {
		testutil.AppendTransaction(t, db, tx)
		mustApply(t, incremental, tx)
	}

	// Full reconstruction from the persisted log.
	rebuilt := testutil.NewTestLedger(t, db)

	left := incremental.Positions()
	right := rebuilt.Positions()
	if len(left) != len(right) {
		t.Fatalf("Position counts differ: incremental %d, rebuilt %d", len(left), len(right))
	}
	for i := range left {
		if left[i].Symbol != right[i].Symbol ||
			!left[i].Shares.Equal(right[i].Shares) ||
			!left[i].AverageCost.Equal(right[i].AverageCost) {
			t.Errorf("Position %d differs: incremental %+v, rebuilt %+v", i, left[i], right[i])
		}
	}
}

// TestLedgerService_Rebuild_InconsistentLog tests that a log violating the
// non-negative shares invariant is rejected at restore time.
func TestLedgerService_Rebuild_InconsistentLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	testutil.AppendTransaction(t, db, testutil.NewTransaction(t, "AAPL", model.TransactionBuy, "5", "150", base))
	testutil.AppendTransaction(t, db, testutil.NewTransaction(t, "AAPL", model.TransactionSell, "10", "180", base.Add(time.Hour)))

	ledger := testutil.NewTestLedgerNoRebuild(db)
	if err := ledger.Rebuild(context.Background()); !errors.Is(err, apperrors.ErrInsufficientShares) {
		t.Errorf("Expected ErrInsufficientShares from inconsistent log, got %v", err)
	}
}

func mustApply(t *testing.T, ledger *service.LedgerService, tx model.Transaction) {
	t.Helper()
	if _, err := ledger.Apply(tx); err != nil {
		t.Fatalf("Apply(%s %s %s) failed: %v", tx.Kind, tx.Shares, tx.Symbol, err)
	}
}
