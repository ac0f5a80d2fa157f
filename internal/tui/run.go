package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// RunOptions controls how the program is attached to the terminal.
type RunOptions struct {
	AltScreen bool
	// ProgramOptions are appended after the defaults, e.g. custom input
	// and output in tests.
	ProgramOptions []tea.ProgramOption
}

// Run starts the shell and blocks until the user quits or ctx is done.
func Run(ctx context.Context, deps Deps, opts RunOptions) error {
	m := New(ctx, deps)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	programOpts = append(programOpts, opts.ProgramOptions...)

	p := tea.NewProgram(m, programOpts...)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run interface: %w", err)
	}
	return nil
}
