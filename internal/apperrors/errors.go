package apperrors

import (
	"errors"
	"fmt"
)

// Business logic errors represent validation failures or constraint violations.
// These are caught as close to the trigger as possible and surfaced to the
// user without contacting the backend.
var (
	// ErrInsufficientShares indicates a sell for more shares than the
	// ledger currently holds for the symbol.
	ErrInsufficientShares = errors.New("insufficient shares for sale")

	// ErrInsufficientFunds indicates a buy whose total exceeds the
	// available cash balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrTradeInFlight indicates a second submission for a symbol while an
	// earlier trade for it is still awaiting backend confirmation.
	ErrTradeInFlight = errors.New("trade already submitting for symbol")

	// ErrInvalidShares indicates a trade request with zero or negative shares.
	ErrInvalidShares = errors.New("shares must be positive")

	// ErrInvalidAmount indicates a zero or negative amount passed to a
	// balance debit or credit.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Data availability errors.
var (
	// ErrDataUnavailable indicates a price-history read for which no cache
	// entry exists and the live fetch failed. When a prior entry exists the
	// cache serves it flagged stale instead of returning this error.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrPositionNotFound indicates that no position exists for the symbol.
	ErrPositionNotFound = errors.New("position not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID
	// does not exist in the log.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrSessionNotFound indicates that no backend session token has been
	// stored yet.
	ErrSessionNotFound = errors.New("session token not found")
)

// Machine-readable rejection reasons the backend trade endpoint returns.
const (
	ReasonInsufficientFunds  = "insufficient_funds"
	ReasonInsufficientShares = "insufficient_shares"
	ReasonInvalidSymbol      = "invalid_symbol"
	ReasonMarketClosed       = "market_closed"
)

// RejectionError is a trade denied server-side. The Reason is the backend's
// machine-readable code and Detail its human message, passed through verbatim
// so the UI can render the backend's wording. A rejected trade mutates no
// local state and is never retried automatically.
type RejectionError struct {
	Reason string
	Detail string
}

func (e *RejectionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("trade rejected (%s): %s", e.Reason, e.Detail)
	}
	return fmt.Sprintf("trade rejected (%s)", e.Reason)
}

// IsRejection reports whether err is a backend trade rejection and, if so,
// returns it.
func IsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
