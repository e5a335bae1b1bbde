package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tikalinvest/portfolio-client/internal/apperrors"
	"github.com/tikalinvest/portfolio-client/internal/model"
)

// TransactionRepository provides data access for the append-only transaction
// log. Rows are only ever inserted; edits and deletes do not exist because
// the log is the source of truth for ledger reconstruction.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Append inserts a backend-confirmed transaction. It takes an Execer so the
// trade executor can include the insert in the same SQL transaction as the
// balance update.
func (r *TransactionRepository) Append(ctx context.Context, exec Execer, t model.Transaction) error {
	if t.ID == "" {
		return fmt.Errorf("refusing to append transaction without backend id")
	}

	_, err := exec.ExecContext(ctx, `
		INSERT INTO "transaction" (id, symbol, kind, shares, price_per_share, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ID, t.Symbol, t.Kind, t.Shares.String(), t.PricePerShare.String(), t.Timestamp.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

// ListChronological returns the full log ordered by timestamp ascending,
// the order required for ledger reconstruction.
func (r *TransactionRepository) ListChronological(ctx context.Context) ([]model.Transaction, error) {
	return r.list(ctx, "ASC")
}

// ListRecentFirst returns the full log newest first, the order the
// transaction history screen renders.
func (r *TransactionRepository) ListRecentFirst(ctx context.Context) ([]model.Transaction, error) {
	return r.list(ctx, "DESC")
}

func (r *TransactionRepository) list(ctx context.Context, order string) ([]model.Transaction, error) {
	query := `
		SELECT id, symbol, kind, shares, price_per_share, timestamp, recorded_at
		FROM "transaction"
		ORDER BY timestamp ` + order + `, recorded_at ` + order

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// Get retrieves a single transaction by its backend-assigned id.
func (r *TransactionRepository) Get(ctx context.Context, id string) (model.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, symbol, kind, shares, price_per_share, timestamp, recorded_at
		FROM "transaction"
		WHERE id = ?
	`, id)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	return t, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var t model.Transaction
	var sharesStr, priceStr, timestampStr string
	var recordedAtStr sql.NullString

	err := row.Scan(&t.ID, &t.Symbol, &t.Kind, &sharesStr, &priceStr, &timestampStr, &recordedAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, err
		}
		return model.Transaction{}, fmt.Errorf("failed to scan transaction row: %w", err)
	}

	if t.Shares, err = decimal.NewFromString(sharesStr); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse shares: %w", err)
	}
	if t.PricePerShare, err = decimal.NewFromString(priceStr); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse price: %w", err)
	}
	if t.Timestamp, err = ParseTime(timestampStr); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	if recordedAtStr.Valid {
		if t.RecordedAt, err = ParseTime(recordedAtStr.String); err != nil {
			return model.Transaction{}, fmt.Errorf("failed to parse recorded_at: %w", err)
		}
	}

	return t, nil
}
