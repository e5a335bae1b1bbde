package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/tikalinvest/portfolio-client/internal/apperrors"
)

// SessionRepository stores the backend session token, fernet-encrypted at
// rest. It fills the role the browser's localStorage played for the access
// token, minus the plaintext. Implements backend.TokenSource.
type SessionRepository struct {
	db  *sql.DB
	key *fernet.Key
}

// NewSessionRepository creates a SessionRepository using the given base64
// fernet key.
func NewSessionRepository(db *sql.DB, encodedKey string) (*SessionRepository, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid session fernet key: %w", err)
	}
	return &SessionRepository{db: db, key: key}, nil
}

// SaveToken encrypts and stores the session token, replacing any previous one.
func (r *SessionRepository) SaveToken(ctx context.Context, token string) error {
	sealed, err := fernet.EncryptAndSign([]byte(token), r.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt session token: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO session (id, token, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, updated_at = CURRENT_TIMESTAMP
	`, sealed)
	if err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	return nil
}

// Token decrypts and returns the stored session token. Tokens do not expire
// locally; the backend decides validity.
func (r *SessionRepository) Token(ctx context.Context) (string, error) {
	var sealed []byte
	err := r.db.QueryRowContext(ctx, `SELECT token FROM session WHERE id = 1`).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query session token: %w", err)
	}

	token := fernet.VerifyAndDecrypt(sealed, 0*time.Second, []*fernet.Key{r.key})
	if token == nil {
		return "", fmt.Errorf("stored session token failed verification")
	}
	return string(token), nil
}

// Clear removes the stored session token.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
