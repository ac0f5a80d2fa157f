package session

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/gorilla/securecookie"
	"github.com/leapstack-labs/asksql/internal/store"
)

// secretKeyLength is the size of a generated cookie-signing key in bytes.
const secretKeyLength = 32

// ErrNoSecret is returned when no random key could be generated.
var ErrNoSecret = errors.New("failed to generate session secret")

// LoadSecret returns the stored cookie-signing secret, creating and storing
// one on first use so browser sessions survive a restart. Like Load, it
// falls back to a secret that lives only as long as the process when the
// store is missing or fails; persisted reports which case applies.
func LoadSecret(ctx context.Context, s store.Store, logger *slog.Logger) (secret string, persisted bool, err error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if s != nil {
		stored, err := s.Get(ctx, store.KeySessionSecret)
		switch {
		case err == nil && stored != "":
			return stored, true, nil
		case err != nil && !errors.Is(err, store.ErrNotFound):
			logger.Warn("preferences store unavailable, using in-memory session secret", slog.Any("error", err))
			s = nil
		}
	}

	key := securecookie.GenerateRandomKey(secretKeyLength)
	if key == nil {
		return "", false, ErrNoSecret
	}
	secret = hex.EncodeToString(key)
	if s == nil {
		return secret, false, nil
	}
	if err := s.Set(ctx, store.KeySessionSecret, secret); err != nil {
		logger.Warn("failed to persist session secret, using in-memory secret", slog.Any("error", err))
		return secret, false, nil
	}

	logger.Debug("created session secret")
	return secret, true, nil
}
