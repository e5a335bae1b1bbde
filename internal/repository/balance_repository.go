package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tikalinvest/portfolio-client/internal/model"
)

// BalanceRepository provides data access for the single-row cash balance.
// Writes happen only inside the trade executor's SQL transaction or the
// reconciliation poll; nothing else touches the row, which is what keeps
// the balance consistent with the transaction log.
type BalanceRepository struct {
	db *sql.DB
}

// NewBalanceRepository creates a new BalanceRepository with the provided database connection.
func NewBalanceRepository(db *sql.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// Get returns the current available balance.
func (r *BalanceRepository) Get(ctx context.Context) (model.Balance, error) {
	var availableStr, updatedAtStr string
	err := r.db.QueryRowContext(ctx,
		`SELECT available, updated_at FROM balance WHERE id = 1`,
	).Scan(&availableStr, &updatedAtStr)
	if err != nil {
		return model.Balance{}, fmt.Errorf("failed to query balance: %w", err)
	}

	available, err := decimal.NewFromString(availableStr)
	if err != nil {
		return model.Balance{}, fmt.Errorf("failed to parse balance: %w", err)
	}
	updatedAt, err := ParseTime(updatedAtStr)
	if err != nil {
		return model.Balance{}, fmt.Errorf("failed to parse balance updated_at: %w", err)
	}

	return model.Balance{Available: available, UpdatedAt: updatedAt}, nil
}

// Set overwrites the available balance. It takes an Execer so the trade
// executor can update the balance atomically with the log append.
func (r *BalanceRepository) Set(ctx context.Context, exec Execer, available decimal.Decimal, at time.Time) error {
	_, err := exec.ExecContext(ctx, `
		UPDATE balance SET available = ?, updated_at = ? WHERE id = 1
	`, available.String(), at.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}
