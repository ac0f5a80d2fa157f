package components

import (
	"context"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/asksql/internal/history"
)

// HistoryList renders the fetched history entries, newest first as the
// backend orders them.
func HistoryList(previews []history.Preview, loading bool) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div`)
		h.attr("id", IDHistoryList)
		h.raw(`>`)
		switch {
		case loading && len(previews) == 0:
			h.raw(`<p class="muted">Loading history...</p>`)
		case len(previews) == 0:
			h.raw(`<p class="muted">`)
			h.text(history.NoHistory)
			h.raw(`</p>`)
		default:
			if loading {
				h.raw(`<p class="muted">Refreshing...</p>`)
			}
			for _, p := range previews {
				h.raw(`<article><strong>`)
				h.text(p.Prompt)
				h.raw(`</strong> <time`)
				h.attr("title", p.Timestamp)
				h.raw(`>`)
				h.text(p.Age)
				h.raw(`</time>`)
				if p.Message != "" {
					h.raw(`<p>`)
					h.text(p.Message)
					h.raw(`</p>`)
				}
				if p.Tables != "" {
					h.raw(`<p class="muted">Tables: `)
					h.text(p.Tables)
					h.raw(`</p>`)
				}
				if p.DBFilePath != "" {
					h.raw(`<a`)
					h.attr("href", DownloadHref(p.DBFilePath))
					h.raw(` download>Export .db</a>`)
				}
				h.raw(`</article>`)
			}
		}
		h.raw(`</div>`)
	})
}
