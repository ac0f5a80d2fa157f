package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/leapstack-labs/asksql/internal/submit"
)

const (
	placeholderIdle       = "Describe your database schema..."
	placeholderProcessing = "Processing..."
)

// promptForm owns the text input and the in-flight and error state of the
// submission workflow.
type promptForm struct {
	input      textinput.Model
	spinner    spinner.Model
	workflow   *submit.Workflow
	processing bool
	err        string
}

func newPromptForm(workflow *submit.Workflow) promptForm {
	ti := textinput.New()
	ti.Placeholder = placeholderIdle
	ti.Prompt = "› "
	ti.CharLimit = 2000

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return promptForm{input: ti, spinner: sp, workflow: workflow}
}

// submit starts a submission of the current input. Empty prompts set the
// validation error and send nothing. It is a no-op while in flight.
func (p *promptForm) submit(ctx context.Context, token string) tea.Cmd {
	if p.processing {
		return nil
	}
	prompt := p.input.Value()
	if _, err := submit.Validate(prompt); err != nil {
		p.err = submit.ErrorMessage(err)
		return nil
	}

	p.processing = true
	p.err = ""
	p.input.Placeholder = placeholderProcessing
	wf := p.workflow
	return tea.Batch(p.spinner.Tick, func() tea.Msg {
		return submitResultMsg{outcome: wf.Submit(ctx, prompt, token)}
	})
}

// finish reconciles a submission outcome. On success the input is cleared
// and loses focus; on failure the typed text is kept.
func (p *promptForm) finish(outcome submit.Outcome) {
	p.processing = false
	p.input.Placeholder = placeholderIdle
	if outcome.OK() {
		p.input.SetValue("")
		p.input.Blur()
		p.err = ""
		return
	}
	p.err = outcome.Message()
}

// update forwards a key to the input. Keys are dropped while in flight, and
// an edit clears the displayed error.
func (p *promptForm) update(msg tea.Msg) tea.Cmd {
	if p.processing {
		return nil
	}
	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.err != "" && p.input.Value() != before {
		p.err = ""
	}
	return cmd
}

func (p *promptForm) focus() tea.Cmd {
	return p.input.Focus()
}

func (p *promptForm) blur() {
	p.input.Blur()
}

func (p *promptForm) focused() bool {
	return p.input.Focused()
}

func (p *promptForm) tick(msg spinner.TickMsg) tea.Cmd {
	if !p.processing {
		return nil
	}
	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(msg)
	return cmd
}
