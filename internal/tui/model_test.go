package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/leapstack-labs/asksql/internal/api"
	"github.com/leapstack-labs/asksql/internal/schema"
	"github.com/leapstack-labs/asksql/internal/store"
	"github.com/leapstack-labs/asksql/internal/submit"
	"github.com/leapstack-labs/asksql/internal/testutil"
	"github.com/leapstack-labs/asksql/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu       sync.Mutex
	gen      *api.Generation
	err      error
	prompts  []string
	tokens   []string
	logs     []api.HistoryRecord
	logCalls int
}

func (f *fakeBackend) ProcessPrompt(_ context.Context, prompt, token string) (*api.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.tokens = append(f.tokens, token)
	return f.gen, f.err
}

func (f *fakeBackend) FetchLogs(context.Context, string) ([]api.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logCalls++
	return f.logs, nil
}

func (f *fakeBackend) DownloadURL(path string) string {
	return "http://backend.test/download_db?path=" + path
}

func blogGeneration() *api.Generation {
	return &api.Generation{
		Message:    "A blog with users and posts, plus an analytics store.",
		DBFilePath: "/tmp/blog.db",
		DBStructure: schema.Result{
			{
				Name:   "blog",
				Tables: []string{"users", "posts"},
				Columns: map[string][]schema.Column{
					"users": {{Name: "id", DType: "INTEGER"}, {Name: "email", DType: "TEXT"}},
					"posts": {{Name: "id", DType: "INTEGER"}, {Name: "title", DType: "TEXT"}},
				},
			},
			{
				Name:    "analytics",
				Tables:  []string{"events"},
				Columns: map[string][]schema.Column{"events": {{Name: "id", DType: "INTEGER"}}},
			},
		},
	}
}

type harness struct {
	m       *Model
	backend *fakeBackend
	opened  []string
	copied  []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{backend: &fakeBackend{gen: blogGeneration()}}
	h.m = New(context.Background(), Deps{
		Backend: h.backend,
		Token:   "tok-1",
		Theme:   theme.NewManager(store.NewMemoryStore(), testutil.NewTestLogger(t)),
		Logger:  testutil.NewTestLogger(t),
		OpenURL: func(u string) error {
			h.opened = append(h.opened, u)
			return nil
		},
		CopyText: func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		},
	})
	h.m.prompt.input.Cursor.SetMode(cursor.CursorStatic)
	h.run(h.m.Init())
	return h
}

// drain executes cmd and any batched commands, returning their messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// run feeds the messages produced by cmd back into the model, one level deep.
func (h *harness) run(cmd tea.Cmd) {
	for _, msg := range drain(cmd) {
		h.m.Update(msg)
	}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.m.Update(msg)
	return cmd
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) press(k tea.KeyType) tea.Cmd {
	return h.send(tea.KeyMsg{Type: k})
}

func (h *harness) rune(r rune) tea.Cmd {
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func TestModel_InitialState(t *testing.T) {
	h := newHarness(t)

	assert.True(t, h.m.prompt.focused())
	assert.Equal(t, 1, h.backend.logCalls, "history fetched once on startup")
	view := h.m.View()
	assert.Contains(t, view, appTitle)
	assert.Contains(t, view, emptyHint)
}

func TestModel_SubmitSuccess(t *testing.T) {
	h := newHarness(t)

	h.typeText("create a blog schema")
	h.run(h.press(tea.KeyEnter))

	require.Len(t, h.backend.prompts, 1)
	assert.Equal(t, "create a blog schema", h.backend.prompts[0])
	assert.Equal(t, "tok-1", h.backend.tokens[0])

	assert.Len(t, h.m.Result(), 2)
	assert.Equal(t, "A blog with users and posts, plus an analytics store.", h.m.Message())
	assert.Equal(t, "/tmp/blog.db", h.m.DBFilePath())
	assert.Empty(t, h.m.prompt.input.Value(), "prompt cleared")
	assert.False(t, h.m.prompt.focused(), "input blurred")
	assert.False(t, h.m.prompt.processing)
	assert.Empty(t, h.m.prompt.err)

	view := h.m.View()
	assert.Contains(t, view, "Database Structure  3 tables")
	assert.Contains(t, view, "blog")
	assert.Contains(t, view, "analytics")
	assert.Contains(t, view, "A blog with users and posts")
}

func TestModel_EmptyPromptIsRejectedLocally(t *testing.T) {
	h := newHarness(t)

	h.typeText("   ")
	cmd := h.press(tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.Empty(t, h.backend.prompts)
	assert.Equal(t, submit.MsgEmptyPrompt, h.m.prompt.err)
	assert.Contains(t, h.m.View(), submit.MsgEmptyPrompt)

	h.typeText("x")
	assert.Empty(t, h.m.prompt.err, "typing clears the error")
}

func TestModel_FailureKeepsPreviousResult(t *testing.T) {
	h := newHarness(t)
	h.typeText("create a blog schema")
	h.run(h.press(tea.KeyEnter))
	require.Len(t, h.m.Result(), 2)

	h.backend.gen = nil
	h.backend.err = &api.TransportError{Op: "process_prompt", Err: errors.New("connection refused")}

	h.press(tea.KeyCtrlK)
	require.True(t, h.m.prompt.focused())
	h.typeText("add comments")
	h.run(h.press(tea.KeyEnter))

	assert.Equal(t, "Connection error: connection refused", h.m.prompt.err)
	assert.Equal(t, "add comments", h.m.prompt.input.Value(), "typed text kept")
	assert.Len(t, h.m.Result(), 2, "previous schema still displayed")
	assert.Equal(t, "A blog with users and posts, plus an analytics store.", h.m.Message())

	view := h.m.View()
	assert.Contains(t, view, "Connection error: connection refused")
	assert.Contains(t, view, "Database Structure  3 tables")
}

func TestModel_BackendErrorMessage(t *testing.T) {
	h := newHarness(t)
	h.backend.gen = nil
	h.backend.err = &api.Error{StatusCode: 500, Message: "model overloaded"}

	h.typeText("anything")
	h.run(h.press(tea.KeyEnter))

	assert.Equal(t, "model overloaded", h.m.prompt.err)
	assert.True(t, h.m.tree.Empty())
}

func TestModel_InputLockedWhileProcessing(t *testing.T) {
	h := newHarness(t)
	h.typeText("create a blog schema")

	cmd := h.press(tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, h.m.prompt.processing)
	assert.Contains(t, h.m.View(), submit.MsgProcessing)

	h.typeText("more")
	assert.Equal(t, "create a blog schema", h.m.prompt.input.Value())
	assert.Nil(t, h.press(tea.KeyEnter), "second submit is ignored")

	h.run(cmd)
	assert.False(t, h.m.prompt.processing)
	assert.Len(t, h.backend.prompts, 1)
}

func TestModel_TreeNavigation(t *testing.T) {
	h := newHarness(t)
	h.typeText("create a blog schema")
	h.run(h.press(tea.KeyEnter))

	h.press(tea.KeyEnter) // open blog
	db, ok := h.m.tree.OpenDatabase()
	require.True(t, ok)
	assert.Equal(t, 0, db)
	require.NotNil(t, h.m.selection)
	assert.Equal(t, "blog", h.m.selection.Database.Name)

	h.rune('j') // users
	h.rune(' ') // open users
	tbl, ok := h.m.tree.OpenTable(0)
	require.True(t, ok)
	assert.Equal(t, 0, tbl)

	h.rune('j') // id column
	h.rune('j') // email column
	h.press(tea.KeyEnter)
	require.NotNil(t, h.m.selection.Column)
	assert.Equal(t, "email", h.m.selection.Column.Name)
	assert.Contains(t, h.m.View(), "Selected: blog › users › email (TEXT)")

	h.rune('k')
	assert.Equal(t, 2, h.m.tree.Cursor())
}

func TestModel_ThemeToggle(t *testing.T) {
	h := newHarness(t)
	h.press(tea.KeyEsc)

	h.rune('t')
	assert.Equal(t, theme.Dark, h.m.theme.Current())
	assert.Contains(t, h.m.View(), "dark")

	h.rune('t')
	assert.Equal(t, theme.Light, h.m.theme.Current())
}

func TestModel_HistoryPanel(t *testing.T) {
	h := newHarness(t)
	h.backend.logs = []api.HistoryRecord{{
		ID:        1,
		Prompt:    "create a blog schema",
		Message:   "A blog.",
		CreatedAt: "2024-05-01 10:00:00",
		Schema:    blogGeneration().DBStructure,
	}}
	h.press(tea.KeyEsc)

	h.run(h.rune('h'))
	assert.True(t, h.m.history.Visible())
	assert.Equal(t, 2, h.backend.logCalls, "fetched again on reveal")

	view := h.m.View()
	assert.Contains(t, view, "Schema History")
	assert.Contains(t, view, "create a blog schema")
	assert.Contains(t, view, "Tables: users, posts")

	h.run(h.rune('r'))
	assert.Equal(t, 3, h.backend.logCalls)

	h.run(h.rune('h'))
	assert.False(t, h.m.history.Visible())
	assert.Equal(t, 3, h.backend.logCalls, "hiding does not fetch")
	assert.NotContains(t, h.m.View(), "Schema History")
}

func TestModel_HistoryEmpty(t *testing.T) {
	h := newHarness(t)
	h.press(tea.KeyEsc)
	h.run(h.rune('h'))

	assert.Contains(t, h.m.View(), "No schema history found for this session.")
}

func TestModel_ExportAndCopy(t *testing.T) {
	h := newHarness(t)
	h.press(tea.KeyEsc)

	assert.Nil(t, h.rune('e'), "nothing to export yet")

	h.press(tea.KeyCtrlK)
	h.typeText("create a blog schema")
	h.run(h.press(tea.KeyEnter))

	h.run(h.rune('e'))
	assert.Equal(t, []string{"http://backend.test/download_db?path=/tmp/blog.db"}, h.opened)
	assert.Contains(t, h.m.View(), "Opened http://backend.test/download_db?path=/tmp/blog.db")

	h.run(h.rune('y'))
	assert.Equal(t, []string{"http://backend.test/download_db?path=/tmp/blog.db"}, h.copied)
	assert.Contains(t, h.m.View(), "Copied download link")
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t)

	h.typeText("q")
	assert.Equal(t, "q", h.m.prompt.input.Value(), "q is text while typing")

	h.press(tea.KeyEsc)
	cmd := h.rune('q')
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	cmd = h.press(tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_WindowSize(t *testing.T) {
	h := newHarness(t)
	h.send(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 100, h.m.width)
	assert.Equal(t, 94, h.m.prompt.input.Width)
}

func TestModel_SelectionOfUnnamedDatabase(t *testing.T) {
	h := newHarness(t)
	h.backend.gen = &api.Generation{
		DBStructure: schema.Result{{Tables: []string{"posts"}, Columns: map[string][]schema.Column{}}},
	}
	h.typeText("something")
	h.run(h.press(tea.KeyEnter))

	h.press(tea.KeyEnter) // open the database
	h.rune('j')           // posts
	h.press(tea.KeyEnter)

	assert.Contains(t, h.m.View(), "Selected: Database 1 › posts")
}
