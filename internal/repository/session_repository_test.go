package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fernet/fernet-go"

	"github.com/tikalinvest/portfolio-client/internal/apperrors"
	"github.com/tikalinvest/portfolio-client/internal/repository"
	"github.com/tikalinvest/portfolio-client/internal/testutil"
)

func generateKey(t *testing.T) string {
	t.Helper()
	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("failed to generate fernet key: %v", err)
	}
	return key.Encode()
}

// TestSessionRepository tests the encrypted session token store.
//
// WHY: The token is the only credential the client holds. It must round-trip
// through encryption, survive replacement, and never decrypt under the
// wrong key.
func TestSessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("save and read round-trips the token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo, err := repository.NewSessionRepository(db, generateKey(t))
		if err != nil {
			t.Fatalf("NewSessionRepository() failed: %v", err)
		}

		if err := repo.SaveToken(ctx, "access-token-1"); err != nil {
			t.Fatalf("SaveToken() returned unexpected error: %v", err)
		}

		token, err := repo.Token(ctx)
		if err != nil {
			t.Fatalf("Token() returned unexpected error: %v", err)
		}
		if token != "access-token-1" {
			t.Errorf("Expected access-token-1, got %q", token)
		}
	})

	t.Run("save replaces the previous token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo, err := repository.NewSessionRepository(db, generateKey(t))
		if err != nil {
			t.Fatalf("NewSessionRepository() failed: %v", err)
		}

		if err := repo.SaveToken(ctx, "first"); err != nil {
			t.Fatalf("SaveToken() failed: %v", err)
		}
		if err := repo.SaveToken(ctx, "second"); err != nil {
			t.Fatalf("SaveToken() failed: %v", err)
		}

		token, err := repo.Token(ctx)
		if err != nil {
			t.Fatalf("Token() returned unexpected error: %v", err)
		}
		if token != "second" {
			t.Errorf("Expected second, got %q", token)
		}
	})

	t.Run("empty store reports session not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo, err := repository.NewSessionRepository(db, generateKey(t))
		if err != nil {
			t.Fatalf("NewSessionRepository() failed: %v", err)
		}

		if _, err := repo.Token(ctx); !errors.Is(err, apperrors.ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("clear removes the token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo, err := repository.NewSessionRepository(db, generateKey(t))
		if err != nil {
			t.Fatalf("NewSessionRepository() failed: %v", err)
		}

		if err := repo.SaveToken(ctx, "stale"); err != nil {
			t.Fatalf("SaveToken() failed: %v", err)
		}
		if err := repo.Clear(ctx); err != nil {
			t.Fatalf("Clear() returned unexpected error: %v", err)
		}
		if _, err := repo.Token(ctx); !errors.Is(err, apperrors.ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound after clear, got %v", err)
		}
	})

	t.Run("wrong key fails verification", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		writer, err := repository.NewSessionRepository(db, generateKey(t))
		if err != nil {
			t.Fatalf("NewSessionRepository() failed: %v", err)
		}
		if err := writer.SaveToken(ctx, "secret"); err != nil {
			t.Fatalf("SaveToken() failed: %v", err)
		}

		reader, err := repository.NewSessionRepository(db, generateKey(t))
		if err != nil {
			t.Fatalf("NewSessionRepository() failed: %v", err)
		}
		if _, err := reader.Token(ctx); err == nil {
			t.Error("Expected verification failure under a different key")
		}
	})

	t.Run("malformed key is rejected at construction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		if _, err := repository.NewSessionRepository(db, "not-a-key"); err == nil {
			t.Error("Expected error for malformed fernet key")
		}
	})
}
