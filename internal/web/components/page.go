package components

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/asksql/internal/submit"
	"github.com/leapstack-labs/asksql/internal/theme"
	"github.com/leapstack-labs/asksql/internal/web/resources"
)

// DatastarScript is the client runtime the page loads.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// PageData is everything the full page needs on first load.
type PageData struct {
	Theme  theme.Theme
	Result ResultView
}

// Signals is the client-side state the page starts with.
type Signals struct {
	Prompt      string `json:"prompt"`
	Processing  bool   `json:"processing"`
	Error       string `json:"error"`
	Theme       string `json:"theme"`
	ShowHistory bool   `json:"showHistory"`
}

// Page renders the complete document.
func Page(data PageData) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		signals, err := json.Marshal(Signals{Theme: data.Theme.String()})
		if err != nil {
			h.err = err
			return
		}

		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>AskSQL</title><link rel="stylesheet"`)
		h.attr("href", resources.StaticPath("app.css"))
		h.raw(`><style>`, paletteCSS(), `</style><script type="module"`)
		h.attr("src", DatastarScript)
		h.raw(`></script></head>`)

		h.raw(`<body`)
		h.attr("data-theme", data.Theme.String())
		h.attr("data-signals", string(signals))
		h.attr("data-attr:data-theme", "$theme")
		h.attr("data-on:keydown__window", "(evt.ctrlKey || evt.metaKey) && evt.key === 'k' && (evt.preventDefault(), document.getElementById('prompt').focus())")
		h.raw(`><div id="app">`)

		header(h, data.Theme)
		h.raw(`<main>`)
		h.render(ctx, Result(data.Result))
		historySection(h)
		h.raw(`</main>`)
		promptBar(h)

		h.raw(`</div></body></html>`)
	})
}

func header(h *htmlWriter, current theme.Theme) {
	h.raw(`<header><h1>AskSQL</h1><nav class="actions">`)
	h.raw(`<button id="history-toggle"`)
	h.attr("data-on:click", "$showHistory = !$showHistory")
	h.raw(`>History</button>`)
	h.raw(`<button id="theme-toggle"`)
	h.attr("data-on:click", "@post('/theme')")
	h.attr("data-text", "$theme === 'dark' ? '☾ dark' : '☀ light'")
	h.raw(`>`)
	h.text(themeLabel(current))
	h.raw(`</button></nav></header>`)
}

// historySection is hidden until revealed. Revealing it opens the history
// stream, which fetches once and re-sends after every generation.
func historySection(h *htmlWriter) {
	h.raw(`<section id="history" data-show="$showHistory" style="display: none"`)
	h.attr("data-effect", "$showHistory && @get('/history')")
	h.raw(`><header><h2>Schema History</h2><button`)
	h.attr("data-on:click", "@post('/history/refresh')")
	h.raw(`>Refresh</button></header><div`)
	h.attr("id", IDHistoryList)
	h.raw(`><p class="muted">Loading history...</p></div></section>`)
}

func promptBar(h *htmlWriter) {
	h.raw(`<footer id="prompt-bar">`)
	h.raw(`<div class="banner info" data-show="$processing" style="display: none">`)
	h.text(submit.MsgProcessing)
	h.raw(`</div>`)
	h.raw(`<div class="banner error" data-show="$error != ''" data-text="$error" style="display: none"></div>`)
	h.raw(`<div class="inner"><input id="prompt" type="text" autocomplete="off" autofocus data-bind:prompt`)
	h.attr("placeholder", "Describe your database schema...")
	h.attr("data-attr:placeholder", "$processing ? 'Processing...' : 'Describe your database schema...'")
	h.attr("data-attr:disabled", "$processing")
	h.attr("data-on:input", "$error = ''")
	h.attr("data-on:keydown", "evt.key === 'Enter' && !$processing && @post('/generate')")
	h.raw(`><button`)
	h.attr("data-attr:disabled", "$processing")
	h.attr("data-on:click", "@post('/generate')")
	h.raw(`>Generate</button></div></footer>`)
}

func themeLabel(t theme.Theme) string {
	if t == theme.Dark {
		return "☾ dark"
	}
	return "☀ light"
}

// paletteCSS defines the color variables for both themes from the same
// palettes the terminal views use.
func paletteCSS() string {
	return vars(":root", theme.PaletteFor(theme.Light)) + vars(`body[data-theme="dark"]`, theme.PaletteFor(theme.Dark))
}

func vars(selector string, p theme.Palette) string {
	return fmt.Sprintf("%s{--bg:%s;--fg:%s;--muted:%s;--accent:%s;--table:%s;--column:%s;--error:%s;--info:%s}",
		selector, p.Background, p.Foreground, p.Muted, p.Accent, p.Table, p.Column, p.Error, p.Info)
}
