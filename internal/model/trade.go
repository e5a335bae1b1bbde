package model

import "github.com/shopspring/decimal"

// TradeState tracks a trade request through its lifecycle. Confirmed and
// Rejected are terminal; an executor run is never reused for another trade.
type TradeState string

const (
	TradeIdle       TradeState = "idle"
	TradeSubmitting TradeState = "submitting"
	TradeConfirmed  TradeState = "confirmed"
	TradeRejected   TradeState = "rejected"
)

// TradeRequest is the user's intent as captured by the trade form. It is a
// draft: nothing in it is authoritative until the backend confirms.
type TradeRequest struct {
	Symbol        string          `json:"symbol"`
	Kind          string          `json:"kind"`
	Shares        decimal.Decimal `json:"shares"`
	PricePerShare decimal.Decimal `json:"pricePerShare"`
}

// TradeResult is the terminal outcome of a trade execution.
type TradeResult struct {
	State       TradeState      `json:"state"`
	Transaction Transaction     `json:"transaction"`
	NewBalance  decimal.Decimal `json:"newBalance"`
	Position    *Position       `json:"position,omitempty"` // nil when the sell closed it
}
