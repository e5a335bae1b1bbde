package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tikalinvest/portfolio-client/internal/apperrors"
	"github.com/tikalinvest/portfolio-client/internal/testutil"
)

// TestBalanceService tests cash balance accounting.
//
// WHY: Debit and Credit back every trade commit; a debit past zero or an
// unvalidated amount would corrupt the single source of spendable cash.
func TestBalanceService(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("debit reduces the balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "2000")
		svc := testutil.NewTestBalanceService(db, testutil.NewMockBackend())

		remaining, err := svc.Debit(ctx, db, testutil.Dec(t, "1500"), now)
		if err != nil {
			t.Fatalf("Debit() returned unexpected error: %v", err)
		}
		if !remaining.Equal(testutil.Dec(t, "500")) {
			t.Errorf("Expected 500 remaining, got %s", remaining)
		}
	})

	t.Run("debit past the balance fails without mutating", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "500")
		svc := testutil.NewTestBalanceService(db, testutil.NewMockBackend())

		_, err := svc.Debit(ctx, db, testutil.Dec(t, "1700"), now)
		if !errors.Is(err, apperrors.ErrInsufficientFunds) {
			t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
		}

		available, err := svc.Available(ctx)
		if err != nil {
			t.Fatalf("Available() failed: %v", err)
		}
		if !available.Equal(testutil.Dec(t, "500")) {
			t.Errorf("Expected balance untouched at 500, got %s", available)
		}
	})

	t.Run("debit of the full balance reaches exactly zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "500")
		svc := testutil.NewTestBalanceService(db, testutil.NewMockBackend())

		remaining, err := svc.Debit(ctx, db, testutil.Dec(t, "500"), now)
		if err != nil {
			t.Fatalf("Debit() returned unexpected error: %v", err)
		}
		if !remaining.IsZero() {
			t.Errorf("Expected zero balance, got %s", remaining)
		}
	})

	t.Run("credit adds to the balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "500")
		svc := testutil.NewTestBalanceService(db, testutil.NewMockBackend())

		updated, err := svc.Credit(ctx, db, testutil.Dec(t, "900"), now)
		if err != nil {
			t.Fatalf("Credit() returned unexpected error: %v", err)
		}
		if !updated.Equal(testutil.Dec(t, "1400")) {
			t.Errorf("Expected 1400, got %s", updated)
		}
	})

	t.Run("non-positive amounts are rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "500")
		svc := testutil.NewTestBalanceService(db, testutil.NewMockBackend())

		if _, err := svc.Debit(ctx, db, testutil.Dec(t, "0"), now); !errors.Is(err, apperrors.ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount for zero debit, got %v", err)
		}
		if _, err := svc.Credit(ctx, db, testutil.Dec(t, "-10"), now); !errors.Is(err, apperrors.ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount for negative credit, got %v", err)
		}
	})
}

// TestBalanceService_Reconcile tests the backend balance poll.
//
// WHY: The local balance mirrors server state. When they diverge the backend
// must win, and a matching poll must not rewrite the row.
func TestBalanceService_Reconcile(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("divergent local balance is overwritten by the backend", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "500")
		backend := testutil.NewMockBackend()
		backend.Balance = testutil.Dec(t, "750")
		svc := testutil.NewTestBalanceService(db, backend)

		if err := svc.Reconcile(ctx, db, now); err != nil {
			t.Fatalf("Reconcile() returned unexpected error: %v", err)
		}

		available, err := svc.Available(ctx)
		if err != nil {
			t.Fatalf("Available() failed: %v", err)
		}
		if !available.Equal(testutil.Dec(t, "750")) {
			t.Errorf("Expected backend value 750, got %s", available)
		}
	})

	t.Run("matching balances are left alone", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "500")
		backend := testutil.NewMockBackend()
		backend.Balance = testutil.Dec(t, "500")
		svc := testutil.NewTestBalanceService(db, backend)

		if err := svc.Reconcile(ctx, db, now); err != nil {
			t.Fatalf("Reconcile() returned unexpected error: %v", err)
		}
	})

	t.Run("poll failure is surfaced and changes nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.SetBalance(t, db, "500")
		backend := testutil.NewMockBackend()
		backend.BalanceErr = errors.New("backend down")
		svc := testutil.NewTestBalanceService(db, backend)

		if err := svc.Reconcile(ctx, db, now); err == nil {
			t.Fatal("Expected error from failed poll")
		}

		available, _ := svc.Available(ctx)
		if !available.Equal(testutil.Dec(t, "500")) {
			t.Errorf("Expected balance untouched at 500, got %s", available)
		}
	})
}
