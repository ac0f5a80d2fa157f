package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/asksql/internal/api"
	"github.com/leapstack-labs/asksql/internal/history"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Messages bool
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the prompts submitted in this session",
		Long: `Fetch the schema history recorded for your session token, newest first.

Prompts are shortened to 80 characters and explanations to 150.`,
		Example: `  # Show history
  asksql history

  # Include the explanation of each entry
  asksql history --messages

  # Raw records
  asksql history --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Messages, "messages", "m", false, "Include the explanation column")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Show at most n entries (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx, cleanup := NewCommandContext(cmd)
	defer cleanup()

	records, err := cmdCtx.Client.FetchLogs(cmd.Context(), cmdCtx.Identity.Token())
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}

	out := cmd.OutOrStdout()
	if jsonOutput(cmdCtx.Cfg) {
		return writeJSON(out, records)
	}
	renderHistory(out, records, opts.Messages, time.Now())
	return nil
}

func renderHistory(w io.Writer, records []api.HistoryRecord, messages bool, now time.Time) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, history.NoHistory)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"#", "Prompt", "Created", "Tables"}
	if messages {
		header = append(header, "Message")
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 5, WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		})
	}
	t.AppendHeader(header)

	for _, rec := range records {
		p := history.NewPreview(rec, now)
		created := p.Timestamp
		if p.Age != "" {
			created += "\n" + p.Age
		}
		row := table.Row{p.ID, p.Prompt, created, p.Tables}
		if messages {
			row = append(row, p.Message)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d entries)\n", len(records))
}
