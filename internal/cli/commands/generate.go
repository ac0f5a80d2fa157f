package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/asksql/internal/api"
	"github.com/leapstack-labs/asksql/internal/schematree"
	"github.com/leapstack-labs/asksql/internal/submit"
	"github.com/spf13/cobra"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <prompt...>",
		Short: "Generate a database schema from a prompt",
		Long: `Send a natural-language prompt to the backend and print the generated
schema, the explanation and the download link of the SQLite file.

The prompt is recorded in the session history under your session token.`,
		Example: `  # Generate a schema
  asksql generate "create a blog schema with users, posts and comments"

  # Print the raw response
  asksql generate --output json "an inventory system"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, strings.Join(args, " "))
		},
	}

	return cmd
}

func runGenerate(cmd *cobra.Command, prompt string) error {
	cmdCtx, cleanup := NewCommandContext(cmd)
	defer cleanup()

	wf := submit.New(cmdCtx.Client, cmdCtx.Logger, nil)
	outcome := wf.Submit(cmd.Context(), prompt, cmdCtx.Identity.Token())
	if !outcome.OK() {
		return errors.New(outcome.Message())
	}

	out := cmd.OutOrStdout()
	if jsonOutput(cmdCtx.Cfg) {
		return writeJSON(out, outcome.Generation)
	}
	return printGeneration(out, cmdCtx.Client, outcome.Generation)
}

func printGeneration(w io.Writer, client *api.Client, gen *api.Generation) error {
	if gen.Message != "" {
		_, _ = fmt.Fprintln(w, gen.Message)
		_, _ = fmt.Fprintln(w)
	}
	if err := schematree.RenderPlain(w, gen.DBStructure); err != nil {
		return fmt.Errorf("failed to render schema: %w", err)
	}
	if gen.DBFilePath != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "Download: %s\n", client.DownloadURL(gen.DBFilePath))
	}
	return nil
}
