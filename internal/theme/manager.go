package theme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/asksql/internal/store"
)

// Manager owns the current theme. It persists every transition and applies
// it by rebuilding the palette and styles handed to subscribers.
type Manager struct {
	store  store.Store
	logger *slog.Logger

	mu          sync.Mutex
	current     Theme
	palette     Palette
	styles      Styles
	subscribers []func(Theme, Palette)
}

// NewManager creates a manager set to the default theme. Call Load to read
// the stored setting.
func NewManager(s store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Manager{store: s, logger: logger}
	m.apply(Default)
	return m
}

// Load reads the stored theme, applies it and writes it back so the store
// always holds a valid value. Unknown or missing values become the default.
func (m *Manager) Load(ctx context.Context) (Theme, error) {
	t := Default
	if m.store != nil {
		raw, err := m.store.Get(ctx, store.KeyTheme)
		switch {
		case err == nil:
			parsed, perr := Parse(raw)
			if perr != nil {
				m.logger.Warn("ignoring stored theme", slog.String("value", raw))
			} else {
				t = parsed
			}
		case !errors.Is(err, store.ErrNotFound):
			m.apply(t)
			return t, fmt.Errorf("failed to load theme: %w", err)
		}
	}
	return t, m.Set(ctx, t)
}

// Toggle flips the theme, persists and applies it.
func (m *Manager) Toggle(ctx context.Context) (Theme, error) {
	next := m.Current().Toggle()
	return next, m.Set(ctx, next)
}

// Set persists t and applies it. The theme is applied even when persisting
// fails.
func (m *Manager) Set(ctx context.Context, t Theme) error {
	var err error
	if m.store != nil {
		if serr := m.store.Set(ctx, store.KeyTheme, t.String()); serr != nil {
			err = fmt.Errorf("failed to persist theme: %w", serr)
			m.logger.Warn("theme not persisted", slog.Any("error", serr))
		}
	}
	m.apply(t)
	return err
}

// Current returns the active theme.
func (m *Manager) Current() Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Palette returns the active color tokens.
func (m *Manager) Palette() Palette {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.palette
}

// Styles returns the active view styles.
func (m *Manager) Styles() Styles {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.styles
}

// Subscribe registers fn to be called after every applied transition.
func (m *Manager) Subscribe(fn func(Theme, Palette)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

func (m *Manager) apply(t Theme) {
	m.mu.Lock()
	m.current = t
	m.palette = PaletteFor(t)
	m.styles = NewStyles(m.palette)
	subs := append([]func(Theme, Palette){}, m.subscribers...)
	palette := m.palette
	m.mu.Unlock()

	m.logger.Debug("theme applied", slog.String("theme", t.String()))
	for _, fn := range subs {
		fn(t, palette)
	}
}
