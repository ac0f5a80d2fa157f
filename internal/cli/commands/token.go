package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTokenCommand creates the token command.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print the session token",
		Long: `Print the token that identifies this installation to the backend. The
history is stored under this token.

A token is created on first use and kept in the preferences database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup := NewCommandContext(cmd)
			defer cleanup()

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cmdCtx.Identity.Token())
			if !cmdCtx.Identity.Persisted() {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning: token is not persisted and will change on the next run")
			}
			return nil
		},
	}

	return cmd
}
