package web

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/asksql/internal/api"
	"github.com/leapstack-labs/asksql/internal/dbfile"
	"github.com/leapstack-labs/asksql/internal/history"
	"github.com/leapstack-labs/asksql/internal/schematree"
	"github.com/leapstack-labs/asksql/internal/session"
	"github.com/leapstack-labs/asksql/internal/submit"
	"github.com/leapstack-labs/asksql/internal/theme"
	"github.com/leapstack-labs/asksql/internal/web/components"
	"github.com/leapstack-labs/asksql/internal/web/notifier"
	"github.com/leapstack-labs/asksql/internal/web/resources"
	"github.com/starfederation/datastar-go/datastar"
)

const sessionName = "asksql"

// pageState is the per-token view state: the tree being browsed, the last
// generation and the submission workflow that enforces one request at a time.
type pageState struct {
	mu        sync.Mutex
	tree      *schematree.Model
	selection *schematree.Selection
	gen       *api.Generation

	workflow *submit.Workflow
	history  *history.Panel
}

// apply shows gen. Caller holds mu.
func (s *pageState) apply(gen *api.Generation) {
	s.gen = gen
	s.selection = nil
	s.tree.SetResult(gen.DBStructure)
}

// view returns the result area. Caller holds mu.
func (s *pageState) view() components.ResultView {
	v := components.ResultView{Tree: s.tree, Selection: s.selection}
	if s.gen != nil {
		v.HasResult = true
		v.Message = s.gen.Message
		v.DBFilePath = s.gen.DBFilePath
	}
	return v
}

// Handlers provides the page shell's HTTP handlers.
type Handlers struct {
	backend  Backend
	sessions sessions.Store
	notifier *notifier.Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	states map[string]*pageState
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(backend Backend, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		backend:  backend,
		sessions: sessionStore,
		notifier: notify,
		logger:   logger,
		states:   make(map[string]*pageState),
	}
}

// Routes registers every page shell route on r.
func (h *Handlers) Routes(r chi.Router) {
	r.Handle("/static/*", resources.Handler())

	r.Get("/", h.Page)
	r.Post("/generate", h.Generate)
	r.Post("/theme", h.ToggleTheme)
	r.Get("/history", h.History)
	r.Post("/history/refresh", h.RefreshHistory)
	r.Post("/tree/db/{db}", h.ToggleDatabase)
	r.Post("/tree/table/{db}/{table}", h.ToggleTable)
	r.Post("/tree/column/{db}/{table}/{column}", h.SelectColumn)
	r.Get("/download", h.Download)
}

// visitor is the browser behind a request.
type visitor struct {
	token string
	theme *theme.Manager
	prefs *cookiePrefs
	sess  *sessions.Session
}

// visit loads the browser session, issuing a token on first visit. It may
// set a cookie, so it must run before any response is written.
func (h *Handlers) visit(w http.ResponseWriter, r *http.Request) *visitor {
	sess, err := h.sessions.Get(r, sessionName)
	if err != nil {
		h.logger.Debug("starting a new browser session", slog.Any("error", err))
	}
	if sess == nil {
		sess = sessions.NewSession(h.sessions, sessionName)
	}

	prefs := &cookiePrefs{values: sess.Values}
	identity := session.Load(r.Context(), prefs, h.logger)
	themes := theme.NewManager(prefs, h.logger)
	if _, err := themes.Load(r.Context()); err != nil {
		h.logger.Warn("failed to load theme", slog.Any("error", err))
	}

	v := &visitor{token: identity.Token(), theme: themes, prefs: prefs, sess: sess}
	h.save(w, r, v)
	return v
}

func (h *Handlers) save(w http.ResponseWriter, r *http.Request, v *visitor) {
	if !v.prefs.dirty {
		return
	}
	if err := v.sess.Save(r, w); err != nil {
		h.logger.Warn("failed to save browser session", slog.Any("error", err))
	}
	v.prefs.dirty = false
}

func (h *Handlers) state(token string) *pageState {
	h.mu.Lock()
	defer h.mu.Unlock()

	if st, ok := h.states[token]; ok {
		return st
	}
	st := &pageState{
		workflow: submit.New(h.backend, h.logger, nil),
		history:  history.NewPanel(h.backend, h.logger),
	}
	st.tree = schematree.New(nil, schematree.WithOnSelect(func(sel schematree.Selection) {
		st.selection = &sel
	}))
	st.history.SetToken(token)
	h.states[token] = st
	return st
}

// Page renders the full page with the visitor's last result.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	v := h.visit(w, r)
	st := h.state(v.token)

	var buf bytes.Buffer
	st.mu.Lock()
	err := components.Page(components.PageData{Theme: v.theme.Current(), Result: st.view()}).Render(r.Context(), &buf)
	st.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Generate submits the prompt signal. The processing banner is shown while
// the backend works; on success the result area is replaced and the prompt
// cleared, on failure the prompt is kept and the error banner shown.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var signals components.Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(fmt.Errorf("failed to read signals: %w", err))
		return
	}

	v := h.visit(w, r)
	st := h.state(v.token)
	sse := datastar.NewSSE(w, r)

	if _, err := submit.Validate(signals.Prompt); err != nil {
		_ = sse.MarshalAndPatchSignals(map[string]any{"error": submit.ErrorMessage(err)})
		return
	}
	if err := sse.MarshalAndPatchSignals(map[string]any{"processing": true, "error": ""}); err != nil {
		return
	}

	outcome := st.workflow.Submit(r.Context(), signals.Prompt, v.token)
	if !outcome.OK() {
		_ = sse.MarshalAndPatchSignals(map[string]any{"processing": false, "error": outcome.Message()})
		return
	}

	st.mu.Lock()
	st.apply(outcome.Generation)
	err := sse.PatchElementTempl(components.Result(st.view()))
	st.mu.Unlock()
	if err != nil {
		_ = sse.ConsoleError(err)
	}

	_ = sse.MarshalAndPatchSignals(map[string]any{"prompt": "", "processing": false, "error": ""})
	h.logger.Info("schema generated",
		slog.Int("databases", len(outcome.Generation.DBStructure)),
		slog.Int("tables", outcome.Generation.DBStructure.TotalTables()))

	h.notifier.Broadcast(v.token)
}

// ToggleTheme flips the visitor's theme and patches the theme signal.
func (h *Handlers) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	v := h.visit(w, r)
	next, err := v.theme.Toggle(r.Context())
	h.save(w, r, v)

	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = sse.ConsoleError(err)
	}
	_ = sse.MarshalAndPatchSignals(map[string]any{"theme": next.String()})
}

// History is the long-lived SSE endpoint of the history panel. It sends the
// list once, then again whenever a generation for the same token completes.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	v := h.visit(w, r)
	st := h.state(v.token)

	updates := h.notifier.Subscribe(v.token)
	defer h.notifier.Unsubscribe(v.token, updates)

	sse := datastar.NewSSE(w, r)
	ctx := r.Context()
	if err := h.sendHistory(ctx, sse, st); err != nil {
		_ = sse.ConsoleError(err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := h.sendHistory(ctx, sse, st); err != nil {
				_ = sse.ConsoleError(err)
				// Don't return - keep trying on next update
			}
		}
	}
}

// RefreshHistory re-fetches the list once.
func (h *Handlers) RefreshHistory(w http.ResponseWriter, r *http.Request) {
	v := h.visit(w, r)
	st := h.state(v.token)

	sse := datastar.NewSSE(w, r)
	if err := h.sendHistory(r.Context(), sse, st); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// sendHistory fetches the list and patches it. A failed fetch keeps the
// previous list. When another fetch is already running the current list is
// sent as is.
func (h *Handlers) sendHistory(ctx context.Context, sse *datastar.ServerSentEventGenerator, st *pageState) error {
	if token, ok := st.history.BeginFetch(); ok {
		if err := sse.PatchElementTempl(components.HistoryList(st.history.Previews(), true)); err != nil {
			st.history.Finish(nil, err)
			return err
		}
		records, err := st.history.Fetch(ctx, token)
		st.history.Finish(records, err)
	}
	return sse.PatchElementTempl(components.HistoryList(st.history.Previews(), st.history.Loading()))
}

// ToggleDatabase expands or collapses one database.
func (h *Handlers) ToggleDatabase(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathInts(w, r, "db")
	if !ok {
		return
	}
	h.patchTree(w, r, func(t *schematree.Model) { t.ToggleDatabase(idx[0]) })
}

// ToggleTable expands or collapses one table.
func (h *Handlers) ToggleTable(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathInts(w, r, "db", "table")
	if !ok {
		return
	}
	h.patchTree(w, r, func(t *schematree.Model) { t.ToggleTable(idx[0], idx[1]) })
}

// SelectColumn marks one column as selected.
func (h *Handlers) SelectColumn(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathInts(w, r, "db", "table", "column")
	if !ok {
		return
	}
	h.patchTree(w, r, func(t *schematree.Model) { t.SelectColumn(idx[0], idx[1], idx[2]) })
}

func (h *Handlers) patchTree(w http.ResponseWriter, r *http.Request, fn func(*schematree.Model)) {
	v := h.visit(w, r)
	st := h.state(v.token)
	sse := datastar.NewSSE(w, r)

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.gen == nil {
		return
	}
	fn(st.tree)
	if err := sse.PatchElementTempl(components.Tree(st.tree, st.selection)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Download proxies a generated database file as an attachment.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "File path is required", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if _, err := h.backend.Download(r.Context(), path, &buf); err != nil {
		status := http.StatusBadGateway
		if be, ok := api.AsBackendError(err); ok && be.StatusCode >= 400 {
			status = be.StatusCode
		}
		h.logger.Warn("download failed", slog.String("path", path), slog.Any("error", err))
		http.Error(w, submit.ErrorMessage(err), status)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dbfile.DefaultFileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// pathInts parses the named URL parameters as indices, answering 400 when
// one is not a number.
func pathInts(w http.ResponseWriter, r *http.Request, names ...string) ([]int, bool) {
	out := make([]int, 0, len(names))
	for _, name := range names {
		n, err := strconv.Atoi(chi.URLParam(r, name))
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid %s index", name), http.StatusBadRequest)
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}
