package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance tracks the cash available for trading. It mirrors the cumulative
// effect of the transaction log: debited by shares × price on a buy,
// credited on a sell. Any divergence from the log is a bug; the backend
// value wins during reconciliation.
type Balance struct {
	Available decimal.Decimal `json:"available"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
