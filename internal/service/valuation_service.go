package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tikalinvest/portfolio-client/internal/model"
)

var hundred = decimal.NewFromInt(100)

// ValuationService derives per-position and aggregate analytics from the
// ledger and a price lookup. Snapshot is a pure function of its inputs;
// nothing here reads or writes state.
type ValuationService struct{}

// NewValuationService creates a ValuationService.
func NewValuationService() *ValuationService {
	return &ValuationService{}
}

// Snapshot computes the valuation of the given positions against the given
// prices. A position whose symbol has no entry in quotes still appears in
// the report with PriceKnown false and nil value fields, contributing zero
// to the aggregate totals. Monetary outputs are rounded to two decimal
// places the way the dashboard displays them.
func (s *ValuationService) Snapshot(positions []model.Position, quotes map[string]model.Quote, at time.Time) model.ValuationSnapshot {
	snapshot := model.ValuationSnapshot{
		GeneratedAt:   at,
		Positions:     make([]model.PositionValuation, 0, len(positions)),
		HoldingsCount: len(positions),
	}

	for _, pos := range positions {
		invested := pos.InvestedAmount()
		pv := model.PositionValuation{
			Symbol:         pos.Symbol,
			Shares:         pos.Shares,
			AverageCost:    pos.AverageCost,
			InvestedAmount: invested.Round(2),
		}

		quote, ok := quotes[pos.Symbol]
		if ok {
			price := decimal.NewFromFloat(quote.Price)
			value := pos.Shares.Mul(price).Round(2)
			pnl := value.Sub(invested).Round(2)
			change := decimal.NewFromFloat(quote.ChangePercent)

			pv.PriceKnown = true
			pv.CurrentPrice = &price
			pv.CurrentValue = &value
			pv.UnrealizedPnL = &pnl
			pv.DailyChangePct = &change
			if invested.IsPositive() {
				pct := pnl.Div(invested).Mul(hundred).Round(2)
				pv.PnLPercent = &pct
			}

			snapshot.HoldingsValue = snapshot.HoldingsValue.Add(value)
			snapshot.UnrealizedPnL = snapshot.UnrealizedPnL.Add(pnl)
		}
		snapshot.InvestedAmount = snapshot.InvestedAmount.Add(invested)

		snapshot.Positions = append(snapshot.Positions, pv)
	}

	// Allocation needs the total, so it is a second pass.
	if snapshot.HoldingsValue.IsPositive() {
		for i := range snapshot.Positions {
			if v := snapshot.Positions[i].CurrentValue; v != nil {
				alloc := v.Div(snapshot.HoldingsValue).Mul(hundred).Round(2)
				snapshot.Positions[i].AllocationPercent = &alloc
			}
		}
	}

	snapshot.InvestedAmount = snapshot.InvestedAmount.Round(2)
	if snapshot.InvestedAmount.IsPositive() {
		pct := snapshot.UnrealizedPnL.Div(snapshot.InvestedAmount).Mul(hundred).Round(2)
		snapshot.PnLPercent = &pct
	}

	return snapshot
}

// Summary widens a snapshot with the cash balance for the dashboard header.
func (s *ValuationService) Summary(snapshot model.ValuationSnapshot, available decimal.Decimal) model.PortfolioSummary {
	return model.PortfolioSummary{
		ValuationSnapshot: snapshot,
		AvailableBalance:  available,
		TotalValue:        snapshot.HoldingsValue.Add(available).Round(2),
	}
}
