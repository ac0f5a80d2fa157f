package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/asksql/internal/history"
	"github.com/leapstack-labs/asksql/internal/submit"
	"github.com/leapstack-labs/asksql/internal/theme"
)

const (
	defaultWidth = 80
	appTitle     = "AskSQL"
	emptyHint    = "Describe the database you need and press enter."
)

// View implements tea.Model.
func (m *Model) View() string {
	s := m.theme.Styles()
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	sections := []string{
		m.headerView(s, width),
		m.resultView(s, width),
	}
	if m.history.Visible() {
		sections = append(sections, m.historyView(s, width))
	}
	if line := m.statusView(s); line != "" {
		sections = append(sections, line)
	}
	sections = append(sections, m.promptView(s, width), m.helpView())

	out := strings.Join(sections, "\n\n")
	if m.width > 0 {
		return s.App.Width(m.width).Render(out)
	}
	return out
}

func (m *Model) headerView(s theme.Styles, width int) string {
	title := s.Title.Render(appTitle)
	mode := s.Muted.Render(themeIcon(m.theme.Current()) + " " + m.theme.Current().String())
	gap := max(width-lipgloss.Width(title)-lipgloss.Width(mode), 1)
	return title + strings.Repeat(" ", gap) + mode
}

func themeIcon(t theme.Theme) string {
	if t == theme.Dark {
		return "☾"
	}
	return "☀"
}

func (m *Model) resultView(s theme.Styles, width int) string {
	if m.tree.Empty() && m.message == "" {
		return s.Muted.Render(emptyHint)
	}

	var b strings.Builder
	if m.message != "" {
		b.WriteString(s.Message.Width(width).Render(m.message))
		b.WriteString("\n\n")
	}
	b.WriteString(m.tree.View(s, !m.prompt.focused()))
	if m.dbFilePath != "" {
		b.WriteString("\n\n")
		b.WriteString(s.Badge.Render("e export .db · y copy link · " + m.backend.DownloadURL(m.dbFilePath)))
	}
	return b.String()
}

func (m *Model) historyView(s theme.Styles, width int) string {
	var b strings.Builder
	title := "Schema History"
	if m.history.Loading() {
		title += "  " + s.Muted.Render("Refreshing...")
	} else {
		title += "  " + s.Muted.Render("r refresh")
	}
	b.WriteString(s.Title.Render(title))
	b.WriteString("\n")

	previews := m.history.Previews()
	switch {
	case len(previews) == 0 && m.history.Loading():
		b.WriteString(s.Muted.Render("Loading history..."))
	case len(previews) == 0:
		b.WriteString(s.Muted.Render(history.NoHistory))
	default:
		for i, p := range previews {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(historyEntry(s, p))
		}
	}
	return s.Panel.Width(max(width-2, 20)).Render(b.String())
}

func historyEntry(s theme.Styles, p history.Preview) string {
	when := p.Timestamp
	if p.Age != "" {
		when += " (" + p.Age + ")"
	}
	lines := []string{
		s.Database.Render(p.Prompt) + "  " + s.Muted.Render(when),
	}
	if p.Message != "" {
		lines = append(lines, s.Message.Render(p.Message))
	}
	lines = append(lines, s.Badge.Render("Tables: "+p.Tables))
	return strings.Join(lines, "\n")
}

func (m *Model) statusView(s theme.Styles) string {
	if m.notice != "" {
		if m.noticeErr {
			return s.Error.Render(m.notice)
		}
		return s.Info.Render(m.notice)
	}
	if m.selection != nil {
		return s.Info.Render("Selected: " + m.selection.Path())
	}
	return ""
}

func (m *Model) promptView(s theme.Styles, width int) string {
	var b strings.Builder
	switch {
	case m.prompt.processing:
		b.WriteString(s.Info.Render(m.prompt.spinner.View() + " " + submit.MsgProcessing))
		b.WriteString("\n")
	case m.prompt.err != "":
		b.WriteString(s.Error.Render(m.prompt.err))
		b.WriteString("\n")
	}
	b.WriteString(s.Input.Width(max(width-2, 20)).Render(m.prompt.input.View()))
	return b.String()
}

func (m *Model) helpView() string {
	if m.prompt.focused() {
		return m.help.ShortHelpView(m.keys.inputHelp())
	}
	bindings := m.keys.ShortHelp()
	if m.dbFilePath == "" {
		bindings = withoutBindings(bindings, m.keys.Export)
	}
	return m.help.ShortHelpView(bindings)
}

func withoutBindings(in []key.Binding, drop key.Binding) []key.Binding {
	out := make([]key.Binding, 0, len(in))
	for _, b := range in {
		if b.Help() == drop.Help() {
			continue
		}
		out = append(out, b)
	}
	return out
}
