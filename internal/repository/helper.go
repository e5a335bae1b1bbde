package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Execer is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repository methods that must participate in the trade commit take an
// Execer so the caller decides the transaction boundary.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// timeFormats lists the layouts SQLite hands back for DATETIME columns,
// most specific first.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a SQLite datetime string in any of the formats the
// driver produces.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %q", s)
}
