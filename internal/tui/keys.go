package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	ForceQuit   key.Binding
	FocusInput  key.Binding
	Blur        key.Binding
	Submit      key.Binding
	Up          key.Binding
	Down        key.Binding
	Activate    key.Binding
	ToggleTheme key.Binding
	History     key.Binding
	Refresh     key.Binding
	Export      key.Binding
	CopyLink    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:   key.NewBinding(key.WithKeys("ctrl+c")),
		FocusInput:  key.NewBinding(key.WithKeys("ctrl+k", "/"), key.WithHelp("ctrl+k", "prompt")),
		Blur:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "browse")),
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "generate")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Activate:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open")),
		ToggleTheme: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		History:     key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Export:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export .db")),
		CopyLink:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link")),
	}
}

// ShortHelp implements help.KeyMap for the browsing state.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.FocusInput, k.Up, k.Down, k.Activate, k.ToggleTheme, k.History, k.Export, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.FocusInput, k.Blur, k.Submit},
		{k.Up, k.Down, k.Activate},
		{k.ToggleTheme, k.History, k.Refresh},
		{k.Export, k.CopyLink, k.Quit},
	}
}

// inputHelp is shown while the prompt input has focus.
func (k keyMap) inputHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Blur}
}
