package commands

import (
	"github.com/leapstack-labs/asksql/internal/dbfile"
	"github.com/leapstack-labs/asksql/internal/schema"
	"github.com/leapstack-labs/asksql/internal/schematree"
	"github.com/spf13/cobra"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file.db>",
		Short: "Print the tables and columns of a local SQLite file",
		Long: `Open a SQLite database read-only and print its structure as a tree, the
same way generated schemas are shown.`,
		Example: `  # Inspect a downloaded schema
  asksql inspect generated_schema.db

  # As JSON, in the backend's db_structure shape
  asksql inspect generated_schema.db --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}

	return cmd
}

func runInspect(cmd *cobra.Command, path string) error {
	db, err := dbfile.Inspect(cmd.Context(), path)
	if err != nil {
		return err
	}

	result := schema.Result{db}
	if jsonOutput(getConfig()) {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	return schematree.RenderPlain(cmd.OutOrStdout(), result)
}
