package web

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/leapstack-labs/asksql/internal/api"
	"github.com/leapstack-labs/asksql/internal/history"
	"github.com/leapstack-labs/asksql/internal/submit"
)

// Backend is what the page shell needs from the AskSQL backend.
type Backend interface {
	submit.Generator
	history.Fetcher
	Download(ctx context.Context, path string, w io.Writer) (int64, error)
}

// SwitchableBackend forwards to the current client and lets a configuration
// reload replace it while requests are in flight.
type SwitchableBackend struct {
	current atomic.Pointer[api.Client]
}

var _ Backend = (*SwitchableBackend)(nil)

// NewSwitchableBackend starts with client.
func NewSwitchableBackend(client *api.Client) *SwitchableBackend {
	b := &SwitchableBackend{}
	b.current.Store(client)
	return b
}

// Swap replaces the client used by subsequent calls.
func (b *SwitchableBackend) Swap(client *api.Client) {
	b.current.Store(client)
}

// Client returns the current client.
func (b *SwitchableBackend) Client() *api.Client {
	return b.current.Load()
}

func (b *SwitchableBackend) ProcessPrompt(ctx context.Context, prompt, token string) (*api.Generation, error) {
	return b.Client().ProcessPrompt(ctx, prompt, token)
}

func (b *SwitchableBackend) FetchLogs(ctx context.Context, token string) ([]api.HistoryRecord, error) {
	return b.Client().FetchLogs(ctx, token)
}

func (b *SwitchableBackend) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	return b.Client().Download(ctx, path, w)
}
