// Package history holds the session history panel: fetch state for the
// current token and the preview text shown for each record.
package history

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/leapstack-labs/asksql/internal/api"
	"github.com/leapstack-labs/asksql/internal/schema"
)

// Preview limits, in characters.
const (
	PromptPreviewLimit  = 80
	MessagePreviewLimit = 150
	Ellipsis            = "..."
)

// Fallback texts.
const (
	UnknownTime = "Unknown"
	NoTables    = "No tables"
	NoHistory   = "No schema history found for this session."
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.RFC1123,
}

// Preview is the display form of one history record.
type Preview struct {
	ID         int64
	Prompt     string
	Message    string
	Timestamp  string
	Age        string
	Tables     string
	DBFilePath string
}

// NewPreview builds the preview of rec relative to now.
func NewPreview(rec api.HistoryRecord, now time.Time) Preview {
	ts, age := FormatTimestamp(rec.CreatedAt, now)
	return Preview{
		ID:         rec.ID,
		Prompt:     Truncate(rec.Prompt, PromptPreviewLimit),
		Message:    Truncate(rec.Message, MessagePreviewLimit),
		Timestamp:  ts,
		Age:        age,
		Tables:     TablesSummary(rec.Schema),
		DBFilePath: rec.DBFilePath,
	}
}

// Truncate cuts s to limit characters and appends an ellipsis. Strings at or
// under the limit are returned unchanged.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + Ellipsis
}

// FormatTimestamp renders a server timestamp in local time together with a
// humanized age. Timestamps without a zone are taken as UTC, which is what
// the backend stores. Unparsable values are returned as-is with no age.
func FormatTimestamp(raw string, now time.Time) (string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UnknownTime, ""
	}
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, raw, time.UTC)
		if err != nil {
			continue
		}
		return t.Local().Format("2006-01-02 15:04:05"), humanize.RelTime(t, now, "ago", "from now")
	}
	return raw, ""
}

// TablesSummary joins the table names of the first database.
func TablesSummary(r schema.Result) string {
	if len(r) == 0 || len(r[0].Tables) == 0 {
		return NoTables
	}
	return strings.Join(r[0].Tables, ", ")
}
