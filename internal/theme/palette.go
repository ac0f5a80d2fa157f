package theme

import "github.com/charmbracelet/lipgloss"

// Palette holds the color tokens for one theme. Background and Foreground
// are the two display variables every view is painted with.
type Palette struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Accent     lipgloss.Color
	Table      lipgloss.Color
	Column     lipgloss.Color
	Error      lipgloss.Color
	Info       lipgloss.Color
}

// PaletteFor returns the palette of t.
func PaletteFor(t Theme) Palette {
	if t == Dark {
		return Palette{
			Background: lipgloss.Color("#222831"),
			Foreground: lipgloss.Color("#ededed"),
			Muted:      lipgloss.Color("#9ca3af"),
			Accent:     lipgloss.Color("#818cf8"),
			Table:      lipgloss.Color("#4ade80"),
			Column:     lipgloss.Color("#60a5fa"),
			Error:      lipgloss.Color("#f87171"),
			Info:       lipgloss.Color("#93c5fd"),
		}
	}
	return Palette{
		Background: lipgloss.Color("#F2F2F2"),
		Foreground: lipgloss.Color("#171717"),
		Muted:      lipgloss.Color("#6b7280"),
		Accent:     lipgloss.Color("#4f46e5"),
		Table:      lipgloss.Color("#16a34a"),
		Column:     lipgloss.Color("#2563eb"),
		Error:      lipgloss.Color("#b91c1c"),
		Info:       lipgloss.Color("#1d4ed8"),
	}
}

// Styles are the lipgloss styles every view renders with.
type Styles struct {
	App      lipgloss.Style
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Message  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Database lipgloss.Style
	Table    lipgloss.Style
	Column   lipgloss.Style
	DType    lipgloss.Style
	Badge    lipgloss.Style
	Cursor   lipgloss.Style
	Panel    lipgloss.Style
	Input    lipgloss.Style
}

// NewStyles derives the view styles from p.
func NewStyles(p Palette) Styles {
	base := lipgloss.NewStyle().Foreground(p.Foreground)
	return Styles{
		App:      base.Background(p.Background),
		Title:    base.Bold(true).Foreground(p.Accent),
		Muted:    base.Foreground(p.Muted),
		Message:  base,
		Error:    base.Foreground(p.Error).Bold(true),
		Info:     base.Foreground(p.Info),
		Database: base.Bold(true),
		Table:    base.Foreground(p.Table),
		Column:   base,
		DType:    base.Foreground(p.Column),
		Badge:    base.Foreground(p.Muted).Faint(true),
		Cursor:   base.Reverse(true),
		Panel:    base.Border(lipgloss.RoundedBorder()).BorderForeground(p.Muted).Padding(0, 1),
		Input:    base.Border(lipgloss.NormalBorder()).BorderForeground(p.Accent).Padding(0, 1),
	}
}

// Plain returns styles that render text unchanged.
func Plain() Styles {
	s := lipgloss.NewStyle()
	return Styles{
		App: s, Title: s, Muted: s, Message: s, Error: s, Info: s,
		Database: s, Table: s, Column: s, DType: s, Badge: s, Cursor: s,
		Panel: s, Input: s,
	}
}
