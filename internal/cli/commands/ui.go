package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/asksql/internal/cli/config"
	applog "github.com/leapstack-labs/asksql/internal/log"
	"github.com/leapstack-labs/asksql/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ErrNoTerminal is returned when the interactive client is started without a
// terminal on stdin and stdout.
var ErrNoTerminal = errors.New(`the interactive client needs a terminal; use "asksql generate" or "asksql shell" instead`)

// isTerminal is replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// UIOptions holds options for the ui command.
type UIOptions struct {
	NoAltScreen bool
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the interactive client",
		Long: `Start the interactive terminal client.

Type a description of the database you need and press enter. The generated
schema is shown as a tree you can expand with the arrow keys; h shows your
history, t switches between light and dark, e opens the SQLite download.

Logs are written to the log file (see "asksql config") while the client runs.`,
		Example: `  # Start the client
  asksql ui

  # Start inline instead of on the alternate screen
  asksql ui --no-alt-screen`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.NoAltScreen, "no-alt-screen", false, "Render inline instead of on the alternate screen")

	return cmd
}

func runUI(cmd *cobra.Command, opts *UIOptions) error {
	if !isTerminal() {
		return ErrNoTerminal
	}
	cfg := getConfig()

	logger, closer, err := applog.NewFileLogger(cfg.LogFile, cfg.Verbose)
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: logging disabled: %v\n", err)
		logger = slog.New(slog.DiscardHandler)
	} else {
		defer func() { _ = closer.Close() }()
	}

	ctx := config.WithLogger(cmd.Context(), logger)
	cmdCtx, cleanup := newCommandContext(ctx, cfg, logger)
	defer cleanup()
	defer applog.RecoverPanic(logger, "ui", cleanup)

	logger.Info("starting interactive client",
		slog.String("api_url", cfg.APIURL),
		slog.Bool("token_persisted", cmdCtx.Identity.Persisted()),
	)

	altScreen := cfg.GetUIConfig().AltScreen && !opts.NoAltScreen
	return tui.Run(ctx, tui.Deps{
		Backend: cmdCtx.Client,
		Token:   cmdCtx.Identity.Token(),
		Theme:   cmdCtx.Theme,
		Logger:  logger,
	}, tui.RunOptions{AltScreen: altScreen})
}
