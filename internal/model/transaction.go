package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction kinds accepted by the backend trade endpoint.
const (
	TransactionBuy  = "buy"
	TransactionSell = "sell"
)

// Transaction represents a single backend-confirmed buy or sell.
// The ID and Timestamp are assigned by the backend on confirmation; a
// transaction without an ID is a draft and must never reach the log.
// Transactions are immutable once recorded and the log is append-only,
// ordered by timestamp.
type Transaction struct {
	ID            string          `json:"id"`
	Symbol        string          `json:"symbol"`
	Kind          string          `json:"kind"`
	Shares        decimal.Decimal `json:"shares"`
	PricePerShare decimal.Decimal `json:"pricePerShare"`
	Timestamp     time.Time       `json:"timestamp"`
	RecordedAt    time.Time       `json:"recordedAt,omitempty"`
}

// Total returns shares × pricePerShare, the cash effect of the transaction.
func (t Transaction) Total() decimal.Decimal {
	return t.Shares.Mul(t.PricePerShare)
}

// IsBuy reports whether the transaction adds shares to a position.
func (t Transaction) IsBuy() bool {
	return t.Kind == TransactionBuy
}
