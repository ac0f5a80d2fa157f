// Package submit implements the prompt submission workflow: local
// validation, in-flight tracking and reconciliation of the backend reply
// into a user-visible outcome.
package submit

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/leapstack-labs/asksql/internal/api"
)

// User-visible messages.
const (
	MsgEmptyPrompt   = "Please enter a prompt to generate schema"
	MsgBackendFailed = "Failed to process prompt"
	MsgNetworkError  = "Network error occurred"
	MsgProcessing    = "Generating database schema..."
)

var (
	// ErrEmptyPrompt is returned for empty or whitespace-only prompts.
	ErrEmptyPrompt = errors.New(MsgEmptyPrompt)
	// ErrInFlight is returned when a submission is already outstanding.
	ErrInFlight = errors.New("a prompt is already being processed")
)

// Generator produces a schema for a prompt.
type Generator interface {
	ProcessPrompt(ctx context.Context, prompt, token string) (*api.Generation, error)
}

// Observer is told when processing starts (true) and ends (false).
type Observer func(processing bool)

// Outcome is the terminal result of one submission.
type Outcome struct {
	// Prompt is the text that was sent, or the raw input when it was
	// rejected as empty.
	Prompt     string
	Generation *api.Generation
	Err        error
}

// OK reports whether the submission succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Generation != nil
}

// Message returns the user-visible error text, or "" on success.
func (o Outcome) Message() string {
	return ErrorMessage(o.Err)
}

// Workflow submits prompts one at a time.
type Workflow struct {
	gen      Generator
	logger   *slog.Logger
	observer Observer
	inFlight atomic.Bool
}

// New creates a workflow backed by gen.
func New(gen Generator, logger *slog.Logger, observer Observer) *Workflow {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Workflow{gen: gen, logger: logger, observer: observer}
}

// Validate trims prompt and rejects it when nothing is left.
func Validate(prompt string) (string, error) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "", ErrEmptyPrompt
	}
	return trimmed, nil
}

// InFlight reports whether a submission is outstanding.
func (w *Workflow) InFlight() bool {
	return w.inFlight.Load()
}

// Submit validates prompt and, when valid, issues exactly one request with
// the trimmed text. Validation and in-flight rejections never reach the
// generator or the observer.
func (w *Workflow) Submit(ctx context.Context, prompt, token string) Outcome {
	trimmed, err := Validate(prompt)
	if err != nil {
		return Outcome{Prompt: prompt, Err: err}
	}
	if !w.inFlight.CompareAndSwap(false, true) {
		return Outcome{Prompt: trimmed, Err: ErrInFlight}
	}
	w.notify(true)
	defer func() {
		w.inFlight.Store(false)
		w.notify(false)
	}()

	gen, err := w.gen.ProcessPrompt(ctx, trimmed, token)
	if err != nil {
		w.logger.Error("error processing prompt", slog.Any("error", err))
		return Outcome{Prompt: trimmed, Err: err}
	}

	w.logger.Info("prompt processed successfully",
		slog.Int("databases", len(gen.DBStructure)),
		slog.String("file", gen.DBFilePath),
	)
	return Outcome{Prompt: trimmed, Generation: gen}
}

func (w *Workflow) notify(processing bool) {
	if w.observer != nil {
		w.observer(processing)
	}
}

// ErrorMessage maps a submission error to the text shown to the user.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrEmptyPrompt) || errors.Is(err, ErrInFlight) {
		return err.Error()
	}
	if be, ok := api.AsBackendError(err); ok {
		if be.Message == "" {
			return MsgBackendFailed
		}
		return be.Message
	}
	text := err.Error()
	if text == "" {
		text = MsgNetworkError
	}
	return "Connection error: " + text
}
