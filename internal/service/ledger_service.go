package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tikalinvest/portfolio-client/internal/apperrors"
	"github.com/tikalinvest/portfolio-client/internal/model"
	"github.com/tikalinvest/portfolio-client/internal/repository"
)

// LedgerService maintains the position ledger: the derived mapping of
// symbol to current holding, reconstructed by folding the transaction log
// in timestamp order. The ledger itself is never persisted; the log is the
// sole source of truth and folding it from empty must always reproduce the
// same ledger as incremental application.
type LedgerService struct {
	transactionRepo *repository.TransactionRepository

	mu        sync.RWMutex
	positions map[string]model.Position
}

// NewLedgerService creates an empty ledger over the given transaction log.
func NewLedgerService(transactionRepo *repository.TransactionRepository) *LedgerService {
	return &LedgerService{
		transactionRepo: transactionRepo,
		positions:       make(map[string]model.Position),
	}
}

// Rebuild discards the in-memory ledger and reconstructs it by folding the
// full transaction log in chronological order. Called at startup to restore
// state from the local store without a backend round-trip.
func (s *LedgerService) Rebuild(ctx context.Context) error {
	transactions, err := s.transactionRepo.ListChronological(ctx)
	if err != nil {
		return fmt.Errorf("failed to load transaction log: %w", err)
	}

	rebuilt := make(map[string]model.Position)
	for _, t := range transactions {
		if err := fold(rebuilt, t); err != nil {
			return fmt.Errorf("transaction log is inconsistent at %s: %w", t.ID, err)
		}
	}

	s.mu.Lock()
	s.positions = rebuilt
	s.mu.Unlock()
	return nil
}

// Apply folds one backend-confirmed transaction into the ledger and returns
// the resulting position. A sell that would drive shares negative fails with
// ErrInsufficientShares before any mutation. A sell that lands on exactly
// zero removes the position; the returned Position then has zero shares.
func (s *LedgerService) Apply(t model.Transaction) (model.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fold(s.positions, t); err != nil {
		return model.Position{}, err
	}
	if pos, ok := s.positions[t.Symbol]; ok {
		return pos, nil
	}
	return model.Position{Symbol: t.Symbol, Shares: decimal.Zero}, nil
}

// CanSell reports whether the ledger holds at least the given number of
// shares of a symbol. Used by the trade executor's pre-flight check so an
// oversell never reaches the backend.
func (s *LedgerService) CanSell(symbol string, shares decimal.Decimal) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.positions[symbol]
	return ok && shares.LessThanOrEqual(pos.Shares)
}

// Position returns the current holding for a symbol.
func (s *LedgerService) Position(symbol string) (model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.positions[symbol]
	if !ok {
		return model.Position{}, apperrors.ErrPositionNotFound
	}
	return pos, nil
}

// Positions returns all current holdings sorted by symbol.
func (s *LedgerService) Positions() []model.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Position, 0, len(s.positions))
	for _, pos := range s.positions {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Symbols returns the symbols currently held, sorted.
func (s *LedgerService) Symbols() []string {
	positions := s.Positions()
	symbols := make([]string, len(positions))
	for i, p := range positions {
		symbols[i] = p.Symbol
	}
	return symbols
}

// fold applies one transaction to a ledger map.
//
// Buy: first buy of a symbol creates the position at the trade price;
// subsequent buys recompute the weighted average cost
// (oldShares×oldAvg + shares×price) / (oldShares + shares).
//
// Sell: shares are reduced and the average cost is left untouched: the cost
// basis of the remaining shares is unaffected by a sale. Selling down to
// exactly zero deletes the position.
func fold(positions map[string]model.Position, t model.Transaction) error {
	if !t.Shares.IsPositive() {
		return apperrors.ErrInvalidShares
	}

	switch t.Kind {
	case model.TransactionBuy:
		pos, ok := positions[t.Symbol]
		if !ok {
			positions[t.Symbol] = model.Position{
				Symbol:      t.Symbol,
				Shares:      t.Shares,
				AverageCost: t.PricePerShare,
			}
			return nil
		}
		newShares := pos.Shares.Add(t.Shares)
		totalCost := pos.Shares.Mul(pos.AverageCost).Add(t.Shares.Mul(t.PricePerShare))
		positions[t.Symbol] = model.Position{
			Symbol:      t.Symbol,
			Shares:      newShares,
			AverageCost: totalCost.Div(newShares),
		}
		return nil

	case model.TransactionSell:
		pos, ok := positions[t.Symbol]
		if !ok || t.Shares.GreaterThan(pos.Shares) {
			return apperrors.ErrInsufficientShares
		}
		remaining := pos.Shares.Sub(t.Shares)
		if remaining.IsZero() {
			delete(positions, t.Symbol)
			return nil
		}
		positions[t.Symbol] = model.Position{
			Symbol:      t.Symbol,
			Shares:      remaining,
			AverageCost: pos.AverageCost,
		}
		return nil

	default:
		return fmt.Errorf("unknown transaction kind %q", t.Kind)
	}
}
