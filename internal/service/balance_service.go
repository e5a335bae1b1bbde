package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tikalinvest/portfolio-client/internal/apperrors"
	"github.com/tikalinvest/portfolio-client/internal/logging"
	"github.com/tikalinvest/portfolio-client/internal/repository"
)

// BalanceSource is the slice of the backend client the reconciliation poll
// needs.
type BalanceSource interface {
	GetBalance(ctx context.Context) (decimal.Decimal, error)
}

// BalanceService owns the available cash balance. Debit and Credit are only
// ever invoked from the trade executor's commit, inside its SQL transaction;
// exposing them anywhere else would let the balance drift from the
// transaction log.
type BalanceService struct {
	balanceRepo *repository.BalanceRepository
	source      BalanceSource
}

// NewBalanceService creates a BalanceService.
func NewBalanceService(balanceRepo *repository.BalanceRepository, source BalanceSource) *BalanceService {
	return &BalanceService{balanceRepo: balanceRepo, source: source}
}

// Available returns the current cash balance from the local store.
func (s *BalanceService) Available(ctx context.Context) (decimal.Decimal, error) {
	balance, err := s.balanceRepo.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return balance.Available, nil
}

// Debit subtracts amount from the balance within the caller's SQL
// transaction. Fails with ErrInsufficientFunds when amount exceeds the
// available balance, leaving the row untouched.
func (s *BalanceService) Debit(ctx context.Context, exec repository.Execer, amount decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.ErrInvalidAmount
	}
	balance, err := s.balanceRepo.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.GreaterThan(balance.Available) {
		return decimal.Zero, fmt.Errorf("%w: need %s, have %s",
			apperrors.ErrInsufficientFunds, amount, balance.Available)
	}
	remaining := balance.Available.Sub(amount)
	if err := s.balanceRepo.Set(ctx, exec, remaining, at); err != nil {
		return decimal.Zero, err
	}
	return remaining, nil
}

// Credit adds amount to the balance within the caller's SQL transaction.
func (s *BalanceService) Credit(ctx context.Context, exec repository.Execer, amount decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.ErrInvalidAmount
	}
	balance, err := s.balanceRepo.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	updated := balance.Available.Add(amount)
	if err := s.balanceRepo.Set(ctx, exec, updated, at); err != nil {
		return decimal.Zero, err
	}
	return updated, nil
}

// Reconcile fetches the authoritative backend balance and overwrites the
// local value when they diverge. The client mirrors server-confirmed state
// and is never treated as authoritative, so divergence is logged as an
// inconsistency and the backend wins.
func (s *BalanceService) Reconcile(ctx context.Context, exec repository.Execer, at time.Time) error {
	authoritative, err := s.source.GetBalance(ctx)
	if err != nil {
		return fmt.Errorf("balance poll failed: %w", err)
	}

	local, err := s.balanceRepo.Get(ctx)
	if err != nil {
		return err
	}
	if local.Available.Equal(authoritative) {
		return nil
	}

	logging.Warn().
		Str("local", local.Available.String()).
		Str("backend", authoritative.String()).
		Msg("balance diverged from backend, overwriting local value")
	return s.balanceRepo.Set(ctx, exec, authoritative, at)
}
