// Package session issues the opaque per-installation token that correlates
// prompts with their history on the backend.
package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/leapstack-labs/asksql/internal/store"
)

// Identity is the session token for this installation.
type Identity struct {
	token     string
	persisted bool
}

// Load returns the stored token, creating and storing a fresh one when none
// exists. If the store cannot be read or written the token lives in memory
// for the lifetime of the process.
func Load(ctx context.Context, s store.Store, logger *slog.Logger) *Identity {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if s != nil {
		token, err := s.Get(ctx, store.KeyToken)
		switch {
		case err == nil && token != "":
			return &Identity{token: token, persisted: true}
		case err != nil && !errors.Is(err, store.ErrNotFound):
			logger.Warn("preferences store unavailable, using in-memory session token", slog.Any("error", err))
			return &Identity{token: newToken()}
		}
	}

	token := newToken()
	if s == nil {
		return &Identity{token: token}
	}
	if err := s.Set(ctx, store.KeyToken, token); err != nil {
		logger.Warn("failed to persist session token, using in-memory token", slog.Any("error", err))
		return &Identity{token: token}
	}

	logger.Debug("created session token")
	return &Identity{token: token, persisted: true}
}

// Token returns the opaque token value.
func (i *Identity) Token() string {
	return i.token
}

// Persisted reports whether the token survives a restart.
func (i *Identity) Persisted() bool {
	return i.persisted
}

func newToken() string {
	return uuid.NewString()
}
