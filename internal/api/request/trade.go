package request

import "github.com/shopspring/decimal"

// ExecuteTradeRequest is the body of POST /api/trade. PricePerShare is the
// quoted price the user saw; the backend confirms or rejects at its own
// authoritative price.
type ExecuteTradeRequest struct {
	Symbol        string          `json:"symbol"`
	Kind          string          `json:"kind"`
	Shares        decimal.Decimal `json:"shares"`
	PricePerShare decimal.Decimal `json:"pricePerShare"`
}
