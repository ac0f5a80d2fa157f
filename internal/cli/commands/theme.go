package commands

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/asksql/internal/theme"
	"github.com/spf13/cobra"
)

// NewThemeCommand creates the theme command.
func NewThemeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme [light|dark|toggle]",
		Short: "Show or change the color theme",
		Long: `Show the current color theme, or set it. The choice is stored in the
preferences database and used by the interactive client.`,
		Example: `  # Show the current theme
  asksql theme

  # Switch to dark
  asksql theme dark

  # Flip between light and dark
  asksql theme toggle`,
		ValidArgs: []string{"light", "dark", "toggle"},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTheme(cmd, args)
		},
	}

	return cmd
}

func runTheme(cmd *cobra.Command, args []string) error {
	cmdCtx, cleanup := NewCommandContext(cmd)
	defer cleanup()

	arg := ""
	if len(args) == 1 {
		arg = args[0]
	}
	if err := applyTheme(cmd.Context(), cmdCtx.Theme, arg); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", cmdCtx.Theme.Current())
	return nil
}

// applyTheme sets the theme named by arg ("light", "dark" or "toggle").
// An empty arg leaves the theme unchanged.
func applyTheme(ctx context.Context, mgr *theme.Manager, arg string) error {
	switch arg {
	case "":
		return nil
	case "toggle":
		_, err := mgr.Toggle(ctx)
		return err
	}
	t, err := theme.Parse(arg)
	if err != nil {
		return err
	}
	return mgr.Set(ctx, t)
}
