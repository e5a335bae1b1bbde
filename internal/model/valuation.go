package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionValuation is the per-position slice of a ValuationSnapshot.
// CurrentValue, UnrealizedPnL and related fields are nil when no price is
// available for the symbol (PriceKnown false); the position still appears in
// the report but contributes zero to the aggregate totals.
type PositionValuation struct {
	Symbol            string           `json:"symbol"`
	Shares            decimal.Decimal  `json:"shares"`
	AverageCost       decimal.Decimal  `json:"averageCost"`
	InvestedAmount    decimal.Decimal  `json:"investedAmount"`
	PriceKnown        bool             `json:"priceKnown"`
	CurrentPrice      *decimal.Decimal `json:"currentPrice,omitempty"`
	CurrentValue      *decimal.Decimal `json:"currentValue,omitempty"`
	UnrealizedPnL     *decimal.Decimal `json:"unrealizedPnL,omitempty"`
	PnLPercent        *decimal.Decimal `json:"pnlPercent,omitempty"`
	AllocationPercent *decimal.Decimal `json:"allocationPercent,omitempty"`
	DailyChangePct    *decimal.Decimal `json:"dailyChangePercent,omitempty"`
}

// ValuationSnapshot combines the ledger with current prices into the figures
// the dashboard renders. Derived on demand, never persisted.
type ValuationSnapshot struct {
	GeneratedAt    time.Time           `json:"generatedAt"`
	Positions      []PositionValuation `json:"positions"`
	HoldingsValue  decimal.Decimal     `json:"holdingsValue"`
	InvestedAmount decimal.Decimal     `json:"investedAmount"`
	UnrealizedPnL  decimal.Decimal     `json:"unrealizedPnL"`
	PnLPercent     *decimal.Decimal    `json:"pnlPercent,omitempty"`
	HoldingsCount  int                 `json:"holdingsCount"`
}

// PortfolioSummary widens a ValuationSnapshot with the cash balance, matching
// the payload the dashboard screens consume.
type PortfolioSummary struct {
	ValuationSnapshot
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	TotalValue       decimal.Decimal `json:"totalValue"` // holdings + cash
}
