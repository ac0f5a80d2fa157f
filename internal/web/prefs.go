package web

import (
	"context"

	"github.com/leapstack-labs/asksql/internal/store"
)

// cookiePrefs exposes a browser session's values as a preferences store, so
// the session token and theme live in the signed cookie the same way the
// terminal keeps them in its state database.
type cookiePrefs struct {
	values map[any]any
	dirty  bool
}

var _ store.Store = (*cookiePrefs)(nil)

func (c *cookiePrefs) Get(_ context.Context, key string) (string, error) {
	v, ok := c.values[key].(string)
	if !ok || v == "" {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (c *cookiePrefs) Set(_ context.Context, key, value string) error {
	if cur, ok := c.values[key].(string); ok && cur == value {
		return nil
	}
	c.values[key] = value
	c.dirty = true
	return nil
}

func (c *cookiePrefs) Close() error { return nil }
