package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/tikalinvest/portfolio-client/internal/apperrors"
	"github.com/tikalinvest/portfolio-client/internal/logging"
	"github.com/tikalinvest/portfolio-client/internal/model"
	"github.com/tikalinvest/portfolio-client/internal/repository"
)

// TradeBackend is the slice of the backend client the executor needs.
type TradeBackend interface {
	SubmitTrade(ctx context.Context, req model.TradeRequest) (model.Transaction, error)
}

// TradeService orchestrates a trade through its state machine:
// Idle → Submitting → Confirmed | Rejected. Validation failures are caught
// before the backend is contacted; a backend rejection mutates nothing
// locally and is surfaced verbatim; a confirmation commits the log append
// and balance update in one SQL transaction and then folds the transaction
// into the ledger. Rejected trades are never retried automatically; a
// blind retry could double-execute.
type TradeService struct {
	db              *sql.DB
	transactionRepo *repository.TransactionRepository
	ledger          *LedgerService
	balance         *BalanceService
	backend         TradeBackend

	// inflight guards against a second submission for the same symbol while
	// one is awaiting confirmation; two concurrent folds would race against
	// the same ledger snapshot.
	mu       sync.Mutex
	inflight map[string]bool

	// commitMu serializes the read-compute-write of the balance across
	// confirmed trades.
	commitMu sync.Mutex

	now func() time.Time
}

// NewTradeService creates a TradeService.
func NewTradeService(
	db *sql.DB,
	transactionRepo *repository.TransactionRepository,
	ledger *LedgerService,
	balance *BalanceService,
	backend TradeBackend,
) *TradeService {
	return &TradeService{
		db:              db,
		transactionRepo: transactionRepo,
		ledger:          ledger,
		balance:         balance,
		backend:         backend,
		inflight:        make(map[string]bool),
		now:             time.Now,
	}
}

// Execute runs one trade to a terminal state. The only suspension point is
// the backend call; once Submitting is reached the trade cannot be
// cancelled, only awaited.
func (s *TradeService) Execute(ctx context.Context, req model.TradeRequest) (model.TradeResult, error) {
	// Idle: validate without contacting the backend.
	if !req.Shares.IsPositive() {
		return rejected(), apperrors.ErrInvalidShares
	}
	if req.Kind != model.TransactionBuy && req.Kind != model.TransactionSell {
		return rejected(), fmt.Errorf("unknown trade kind %q", req.Kind)
	}
	if !req.PricePerShare.IsPositive() {
		return rejected(), apperrors.ErrInvalidAmount
	}

	if req.Kind == model.TransactionSell && !s.ledger.CanSell(req.Symbol, req.Shares) {
		return rejected(), apperrors.ErrInsufficientShares
	}
	if req.Kind == model.TransactionBuy {
		available, err := s.balance.Available(ctx)
		if err != nil {
			return rejected(), err
		}
		if req.Shares.Mul(req.PricePerShare).GreaterThan(available) {
			return rejected(), fmt.Errorf("%w: need %s, have %s",
				apperrors.ErrInsufficientFunds, req.Shares.Mul(req.PricePerShare), available)
		}
	}

	if !s.acquire(req.Symbol) {
		return rejected(), fmt.Errorf("%w: %s", apperrors.ErrTradeInFlight, req.Symbol)
	}
	defer s.release(req.Symbol)

	// Submitting: the single blocking step.
	confirmed, err := s.backend.SubmitTrade(ctx, req)
	if err != nil {
		// Rejected: no local state was touched.
		if rej, ok := apperrors.IsRejection(err); ok {
			logging.Info().Str("symbol", req.Symbol).Str("reason", rej.Reason).
				Msg("trade rejected by backend")
		}
		return rejected(), err
	}

	// Confirmed: log append, balance update and ledger fold as one logical
	// unit.
	result, err := s.commit(ctx, confirmed)
	if err != nil {
		return rejected(), fmt.Errorf("failed to record confirmed trade %s: %w", confirmed.ID, err)
	}

	logging.Info().Str("symbol", confirmed.Symbol).Str("kind", confirmed.Kind).
		Str("shares", confirmed.Shares.String()).Str("id", confirmed.ID).
		Msg("trade confirmed")
	return result, nil
}

// commit appends the confirmed transaction and adjusts the balance inside
// one SQL transaction, then folds the trade into the in-memory ledger.
// Pre-flight validation guarantees the fold cannot fail, so either all
// three take effect or none do.
func (s *TradeService) commit(ctx context.Context, confirmed model.Transaction) (model.TradeResult, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	now := s.now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.TradeResult{}, err
	}
	defer tx.Rollback()

	if err := s.transactionRepo.Append(ctx, tx, confirmed); err != nil {
		return model.TradeResult{}, err
	}

	var newBalance = confirmed.Total()
	if confirmed.IsBuy() {
		newBalance, err = s.balance.Debit(ctx, tx, confirmed.Total(), now)
	} else {
		newBalance, err = s.balance.Credit(ctx, tx, confirmed.Total(), now)
	}
	if err != nil {
		return model.TradeResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.TradeResult{}, err
	}

	position, err := s.ledger.Apply(confirmed)
	if err != nil {
		// The log row is durable and correct; the in-memory ledger can be
		// restored from it.
		logging.Error().Err(err).Str("id", confirmed.ID).
			Msg("ledger fold failed after commit, rebuilding from log")
		if rebuildErr := s.ledger.Rebuild(ctx); rebuildErr != nil {
			return model.TradeResult{}, rebuildErr
		}
		position, _ = s.ledger.Position(confirmed.Symbol)
	}

	result := model.TradeResult{
		State:       model.TradeConfirmed,
		Transaction: confirmed,
		NewBalance:  newBalance,
	}
	if position.Shares.IsPositive() {
		result.Position = &position
	}
	return result, nil
}

func (s *TradeService) acquire(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[symbol] {
		return false
	}
	s.inflight[symbol] = true
	return true
}

func (s *TradeService) release(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, symbol)
}

func rejected() model.TradeResult {
	return model.TradeResult{State: model.TradeRejected}
}
