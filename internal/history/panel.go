package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/leapstack-labs/asksql/internal/api"
)

// Fetcher loads history records for a token.
type Fetcher interface {
	FetchLogs(ctx context.Context, token string) ([]api.HistoryRecord, error)
}

// Panel is the history panel state. It never fails the caller: fetch errors
// are logged and the previous list is kept.
type Panel struct {
	fetcher Fetcher
	logger  *slog.Logger
	now     func() time.Time

	mu          sync.Mutex
	token       string
	records     []api.HistoryRecord
	loading     bool
	visible     bool
	autoFetched bool
}

// NewPanel creates a hidden, empty panel.
func NewPanel(fetcher Fetcher, logger *slog.Logger) *Panel {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Panel{fetcher: fetcher, logger: logger, now: time.Now}
}

// SetToken sets the session token. It reports true exactly once, when a
// token first becomes available, so the caller performs the automatic fetch.
func (p *Panel) SetToken(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = token
	if token == "" || p.autoFetched {
		return false
	}
	p.autoFetched = true
	return true
}

// Token returns the current session token.
func (p *Panel) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

// Toggle shows or hides the panel and reports whether it was revealed,
// in which case the caller re-fetches.
func (p *Panel) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = !p.visible
	return p.visible
}

// Visible reports whether the panel is shown.
func (p *Panel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Loading reports whether a fetch is outstanding.
func (p *Panel) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// BeginFetch marks a fetch as started and returns the token to fetch for.
// It returns false when there is no token or a fetch is already running.
func (p *Panel) BeginFetch() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token == "" || p.loading {
		return "", false
	}
	p.loading = true
	return p.token, true
}

// Fetch calls the backend. It touches no panel state and is safe to run off
// the UI goroutine.
func (p *Panel) Fetch(ctx context.Context, token string) ([]api.HistoryRecord, error) {
	return p.fetcher.FetchLogs(ctx, token)
}

// Finish records the fetch result and clears the loading flag.
func (p *Panel) Finish(records []api.HistoryRecord, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		p.logger.Error("error fetching logs", slog.Any("error", err))
		return
	}
	if records == nil {
		records = []api.HistoryRecord{}
	}
	p.records = records
	p.logger.Debug("fetched logs", slog.Int("count", len(records)))
}

// Refresh runs a complete fetch synchronously.
func (p *Panel) Refresh(ctx context.Context) {
	token, ok := p.BeginFetch()
	if !ok {
		return
	}
	records, err := p.Fetch(ctx, token)
	p.Finish(records, err)
}

// Records returns the last fetched records in server order.
func (p *Panel) Records() []api.HistoryRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]api.HistoryRecord(nil), p.records...)
}

// Previews returns the display form of the records.
func (p *Panel) Previews() []Preview {
	records := p.Records()
	now := p.now()
	previews := make([]Preview, 0, len(records))
	for _, rec := range records {
		previews = append(previews, NewPreview(rec, now))
	}
	return previews
}
