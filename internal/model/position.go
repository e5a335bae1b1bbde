package model

import "github.com/shopspring/decimal"

// Position represents the current holding of a single symbol, derived by
// folding the transaction log in timestamp order. Shares never go negative;
// a position is removed from the ledger the moment shares reach exactly zero,
// at which point AverageCost carries no meaning.
type Position struct {
	Symbol      string          `json:"symbol"`
	Shares      decimal.Decimal `json:"shares"`
	AverageCost decimal.Decimal `json:"averageCost"`
}

// InvestedAmount returns shares × averageCost, the cost basis of the holding.
func (p Position) InvestedAmount() decimal.Decimal {
	return p.Shares.Mul(p.AverageCost)
}
