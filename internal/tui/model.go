// Package tui is the interactive page shell: a prompt input, the generated
// schema tree, the history panel and the theme toggle composed into one
// bubbletea program.
package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/leapstack-labs/asksql/internal/history"
	"github.com/leapstack-labs/asksql/internal/schema"
	"github.com/leapstack-labs/asksql/internal/schematree"
	"github.com/leapstack-labs/asksql/internal/submit"
	"github.com/leapstack-labs/asksql/internal/theme"
	"github.com/pkg/browser"
)

// Backend is the part of the API client the shell talks to.
type Backend interface {
	submit.Generator
	history.Fetcher
	DownloadURL(path string) string
}

// Deps wires the shell to its collaborators.
type Deps struct {
	Backend Backend
	Token   string
	Theme   *theme.Manager
	Logger  *slog.Logger

	// OpenURL and CopyText default to the system browser and clipboard.
	OpenURL  func(url string) error
	CopyText func(text string) error
}

// Model is the page shell.
type Model struct {
	ctx     context.Context
	logger  *slog.Logger
	backend Backend
	token   string
	theme   *theme.Manager

	openURL  func(string) error
	copyText func(string) error

	keys    keyMap
	help    help.Model
	prompt  promptForm
	tree    *schematree.Model
	history *history.Panel

	message    string
	dbFilePath string
	lastPrompt string
	selection  *schematree.Selection
	notice     string
	noticeErr  bool

	width  int
	height int
}

// New builds the shell. ctx bounds every request the shell issues.
func New(ctx context.Context, deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	mgr := deps.Theme
	if mgr == nil {
		mgr = theme.NewManager(nil, logger)
	}

	m := &Model{
		ctx:      ctx,
		logger:   logger,
		backend:  deps.Backend,
		token:    deps.Token,
		theme:    mgr,
		openURL:  deps.OpenURL,
		copyText: deps.CopyText,
		keys:     defaultKeyMap(),
		help:     help.New(),
		history:  history.NewPanel(deps.Backend, logger),
	}
	if m.openURL == nil {
		m.openURL = browser.OpenURL
	}
	if m.copyText == nil {
		m.copyText = clipboard.WriteAll
	}

	wf := submit.New(deps.Backend, logger, func(processing bool) {
		logger.Debug("processing state changed", "processing", processing)
	})
	m.prompt = newPromptForm(wf)
	m.tree = schematree.New(nil, schematree.WithOnSelect(func(sel schematree.Selection) {
		m.selection = &sel
	}))
	return m
}

// Init focuses the prompt and performs the automatic history fetch.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.prompt.focus()}
	if m.history.SetToken(m.token) {
		cmds = append(cmds, m.fetchHistory())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.prompt.input.Width = max(msg.Width-6, 10)
		return m, nil

	case submitResultMsg:
		m.applyOutcome(msg.outcome)
		return m, nil

	case historyResultMsg:
		m.history.Finish(msg.records, msg.err)
		return m, nil

	case noticeMsg:
		m.notice = msg.text
		m.noticeErr = msg.isErr
		return m, nil

	case spinner.TickMsg:
		return m, m.prompt.tick(msg)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	if m.prompt.focused() {
		return m, m.prompt.update(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.ForceQuit) {
		return tea.Quit
	}

	if m.prompt.focused() {
		switch {
		case msg.String() == "ctrl+k":
			return nil
		case key.Matches(msg, m.keys.Blur):
			m.prompt.blur()
			return nil
		case key.Matches(msg, m.keys.Submit):
			m.notice = ""
			return m.prompt.submit(m.ctx, m.token)
		}
		return m.prompt.update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.FocusInput):
		return m.prompt.focus()
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.tree.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.tree.MoveDown()
	case key.Matches(msg, m.keys.Activate):
		m.tree.Activate()
	case key.Matches(msg, m.keys.ToggleTheme):
		return m.toggleTheme()
	case key.Matches(msg, m.keys.History):
		if m.history.Toggle() {
			return m.fetchHistory()
		}
	case key.Matches(msg, m.keys.Refresh):
		if m.history.Visible() {
			return m.fetchHistory()
		}
	case key.Matches(msg, m.keys.Export):
		return m.export()
	case key.Matches(msg, m.keys.CopyLink):
		return m.copyLink()
	}
	return nil
}

// applyOutcome replaces the displayed result on success. Failures leave the
// previous result on screen.
func (m *Model) applyOutcome(o submit.Outcome) {
	m.prompt.finish(o)
	if !o.OK() {
		return
	}
	g := o.Generation
	m.message = g.Message
	m.dbFilePath = g.DBFilePath
	m.lastPrompt = o.Prompt
	m.selection = nil
	m.tree.SetResult(g.DBStructure)
	m.logger.Info("schema generated",
		"databases", len(g.DBStructure),
		"tables", g.DBStructure.TotalTables())
}

func (m *Model) fetchHistory() tea.Cmd {
	token, ok := m.history.BeginFetch()
	if !ok {
		return nil
	}
	ctx := m.ctx
	panel := m.history
	return func() tea.Msg {
		records, err := panel.Fetch(ctx, token)
		return historyResultMsg{records: records, err: err}
	}
}

func (m *Model) toggleTheme() tea.Cmd {
	t, err := m.theme.Toggle(m.ctx)
	if err != nil {
		return notice(fmt.Sprintf("Theme %s applied but not saved: %v", t, err), true)
	}
	return nil
}

func (m *Model) export() tea.Cmd {
	if m.dbFilePath == "" {
		return nil
	}
	link := m.backend.DownloadURL(m.dbFilePath)
	open := m.openURL
	logger := m.logger
	return func() tea.Msg {
		if err := open(link); err != nil {
			logger.Warn("failed to open download link", "url", link, "error", err)
			return noticeMsg{text: "Could not open browser: " + err.Error(), isErr: true}
		}
		return noticeMsg{text: "Opened " + link}
	}
}

func (m *Model) copyLink() tea.Cmd {
	if m.dbFilePath == "" {
		return nil
	}
	link := m.backend.DownloadURL(m.dbFilePath)
	if err := m.copyText(link); err != nil {
		m.logger.Warn("failed to copy download link", "error", err)
		return notice("Could not copy link: "+err.Error(), true)
	}
	return notice("Copied download link", false)
}

func notice(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return noticeMsg{text: text, isErr: isErr}
	}
}

// Result returns the schema currently on display.
func (m *Model) Result() schema.Result {
	return m.tree.Result()
}

// Message returns the explanatory text of the current result.
func (m *Model) Message() string {
	return m.message
}

// DBFilePath returns the server path of the current result's database file.
func (m *Model) DBFilePath() string {
	return m.dbFilePath
}
