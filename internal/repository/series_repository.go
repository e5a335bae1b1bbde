package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tikalinvest/portfolio-client/internal/model"
)

// SeriesRepository provides data access for cached price series. One row
// per symbol, overwritten wholesale on every successful fetch; bars are
// stored at full resolution as JSON.
type SeriesRepository struct {
	db *sql.DB
}

// NewSeriesRepository creates a new SeriesRepository with the provided database connection.
func NewSeriesRepository(db *sql.DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

// Get returns the cached series for a symbol, or nil when none exists.
func (r *SeriesRepository) Get(ctx context.Context, symbol string) (*model.CachedSeries, error) {
	var fetchedAtStr, barsJSON string
	err := r.db.QueryRowContext(ctx,
		`SELECT fetched_at, bars FROM cached_series WHERE symbol = ?`, symbol,
	).Scan(&fetchedAtStr, &barsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cached series: %w", err)
	}

	fetchedAt, err := ParseTime(fetchedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fetched_at: %w", err)
	}

	var bars []model.Bar
	if err := json.Unmarshal([]byte(barsJSON), &bars); err != nil {
		return nil, fmt.Errorf("failed to parse cached bars: %w", err)
	}

	return &model.CachedSeries{
		Symbol:    symbol,
		FetchedAt: fetchedAt,
		Bars:      bars,
	}, nil
}

// Put creates or overwrites the cached series for a symbol.
func (r *SeriesRepository) Put(ctx context.Context, series model.CachedSeries) error {
	barsJSON, err := json.Marshal(series.Bars)
	if err != nil {
		return fmt.Errorf("failed to encode bars: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cached_series (symbol, fetched_at, bars)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET fetched_at = excluded.fetched_at, bars = excluded.bars
	`, series.Symbol, series.FetchedAt.UTC().Format("2006-01-02 15:04:05"), string(barsJSON))
	if err != nil {
		return fmt.Errorf("failed to store cached series: %w", err)
	}
	return nil
}

// ExpiredSymbols returns the symbols whose series were fetched before the
// cutoff, the candidates for background revalidation.
func (r *SeriesRepository) ExpiredSymbols(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT symbol FROM cached_series WHERE fetched_at < ?`,
		cutoff.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired series: %w", err)
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached series: %w", err)
	}
	return symbols, nil
}
