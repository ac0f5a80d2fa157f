package tui

import (
	"github.com/leapstack-labs/asksql/internal/api"
	"github.com/leapstack-labs/asksql/internal/submit"
)

// submitResultMsg carries the terminal outcome of a prompt submission.
type submitResultMsg struct {
	outcome submit.Outcome
}

// historyResultMsg carries the result of a history fetch.
type historyResultMsg struct {
	records []api.HistoryRecord
	err     error
}

// noticeMsg is a transient status line.
type noticeMsg struct {
	text  string
	isErr bool
}
