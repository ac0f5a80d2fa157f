package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/asksql/internal/cli/config"
	"github.com/leapstack-labs/asksql/internal/session"
	"github.com/leapstack-labs/asksql/internal/web"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the AskSQL page in the browser",
		Long: `Start a local web server with the AskSQL page: a prompt box, the generated
schema tree, your history and the light/dark switch.

Each browser gets its own session token, kept in a signed cookie. Set
ASKSQL_SESSION_SECRET to keep sessions valid across restarts.`,
		Example: `  # Serve on the default port and open the browser
  asksql serve

  # Custom port, no browser
  asksql serve --port 3000 --no-browser

  # Pick up api_url changes from the config file while running
  asksql serve --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, fmt.Sprintf("Port to serve on (default: %d)", config.DefaultServePort))
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Reload the config file when it changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := getConfig()
	logger := getLogger(cmd)

	// CLI flags override config file
	serveCfg := cfg.GetServeConfig()
	port := serveCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	autoOpen := serveCfg.AutoOpen && !opts.NoBrowser
	watch := serveCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	secret, err := resolveSessionSecret(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	backend := web.NewSwitchableBackend(newClient(cfg, logger))
	serverCfg := web.Config{
		Backend:       backend,
		Port:          port,
		SessionSecret: secret,
		Logger:        logger,
		OnListening: func(url string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving AskSQL on %s (backend: %s)\n", url, cfg.APIURL)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")
			if autoOpen {
				if err := openURL(url); err != nil {
					logger.Warn("could not open browser", slog.Any("error", err))
				}
			}
		},
	}

	if watch {
		if file := config.GetConfigFileUsed(); file != "" {
			serverCfg.ConfigFile = file
			serverCfg.Reload = func() error {
				next, err := config.LoadConfig(file, cmd.Root().PersistentFlags())
				if err != nil {
					return err
				}
				backend.Swap(newClient(next, logger))
				logger.Info("backend updated", slog.String("api_url", next.APIURL))
				return nil
			}
		} else {
			logger.Warn("--watch has no effect without a config file")
		}
	}

	server, err := web.NewServer(serverCfg)
	if err != nil {
		return err
	}
	return server.Serve(cmd.Context())
}

// resolveSessionSecret returns the configured secret, else the one kept in
// the preferences store, so browser cookies stay valid across restarts.
func resolveSessionSecret(ctx context.Context, cfg *config.Config, logger *slog.Logger) (string, error) {
	if cfg.SessionSecret != "" {
		return cfg.SessionSecret, nil
	}

	st := openStore(cfg.StatePath, logger)
	if st != nil {
		defer func() { _ = st.Close() }()
	}

	secret, persisted, err := session.LoadSecret(ctx, st, logger)
	if err != nil {
		return "", err
	}
	if !persisted {
		logger.Warn("session secret not persisted, browser sessions end when the server stops")
	}
	return secret, nil
}
