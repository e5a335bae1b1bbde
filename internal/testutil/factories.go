package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tikalinvest/portfolio-client/internal/model"
	"github.com/tikalinvest/portfolio-client/internal/repository"
)

// Dec parses a decimal literal, failing the test on bad input.
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

// NewTransaction builds a confirmed transaction with a generated id.
func NewTransaction(t *testing.T, symbol, kind, shares, price string, ts time.Time) model.Transaction {
	t.Helper()
	return model.Transaction{
		ID:            uuid.New().String(),
		Symbol:        symbol,
		Kind:          kind,
		Shares:        Dec(t, shares),
		PricePerShare: Dec(t, price),
		Timestamp:     ts,
	}
}

// AppendTransaction inserts a confirmed transaction into the log.
func AppendTransaction(t *testing.T, db *sql.DB, tx model.Transaction) {
	t.Helper()
	repo := repository.NewTransactionRepository(db)
	if err := repo.Append(context.Background(), db, tx); err != nil {
		t.Fatalf("failed to append test transaction: %v", err)
	}
}

// SetBalance overwrites the stored cash balance.
func SetBalance(t *testing.T, db *sql.DB, available string) {
	t.Helper()
	repo := repository.NewBalanceRepository(db)
	if err := repo.Set(context.Background(), db, Dec(t, available), time.Now()); err != nil {
		t.Fatalf("failed to set test balance: %v", err)
	}
}

// PutSeries stores a cached series fetched at the given time.
func PutSeries(t *testing.T, db *sql.DB, symbol string, fetchedAt time.Time, bars []model.Bar) {
	t.Helper()
	repo := repository.NewSeriesRepository(db)
	err := repo.Put(context.Background(), model.CachedSeries{
		Symbol:    symbol,
		FetchedAt: fetchedAt,
		Bars:      bars,
	})
	if err != nil {
		t.Fatalf("failed to store test series: %v", err)
	}
}

// MakeBars builds days of daily OHLCV bars ending yesterday, with closes
// rising from basePrice so tests can assert on the last close.
func MakeBars(days int, basePrice float64) []model.Bar {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)

	bars := make([]model.Bar, days)
	for i := 0; i < days; i++ {
		price := basePrice + float64(i)
		bars[i] = model.Bar{
			Date:   yesterday.AddDate(0, 0, i-days+1),
			Open:   price - 0.5,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1000 + int64(i),
		}
	}
	return bars
}
