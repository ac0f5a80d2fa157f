package components

import (
	"context"
	"net/url"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/asksql/internal/schematree"
)

// EmptyHint is shown before the first successful generation.
const EmptyHint = "Describe the database you need and press enter."

// ResultView is what the result area shows.
type ResultView struct {
	HasResult  bool
	Message    string
	DBFilePath string
	Tree       *schematree.Model
	Selection  *schematree.Selection
}

// Result renders the message, the tree and the export link of the last
// successful generation.
func Result(v ResultView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section`)
		h.attr("id", IDResult)
		h.raw(`>`)
		if !v.HasResult || v.Tree == nil {
			h.raw(`<p class="intro muted">`)
			h.text(EmptyHint)
			h.raw(`</p></section>`)
			return
		}

		if v.Message != "" {
			h.raw(`<p class="message">`)
			h.text(v.Message)
			h.raw(`</p>`)
		}
		h.render(ctx, Tree(v.Tree, v.Selection))

		if v.DBFilePath != "" {
			h.raw(`<div class="actions"><a class="button"`)
			h.attr("href", DownloadHref(v.DBFilePath))
			h.raw(` download>Export .db</a></div>`)
		}
		h.raw(`</section>`)
	})
}

// DownloadHref is the local proxy link for a generated file.
func DownloadHref(path string) string {
	return "/download?path=" + url.QueryEscape(path)
}
