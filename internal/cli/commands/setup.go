package commands

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/leapstack-labs/asksql/internal/api"
	"github.com/leapstack-labs/asksql/internal/cli/config"
	"github.com/leapstack-labs/asksql/internal/session"
	"github.com/leapstack-labs/asksql/internal/store"
	"github.com/leapstack-labs/asksql/internal/theme"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    store.Store // nil when preferences are not persisted
	Identity *session.Identity
	Theme    *theme.Manager
	Client   *api.Client
}

// NewCommandContext opens the preferences store, resolves the session
// identity and theme, and builds the API client.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func()) {
	return newCommandContext(cmd.Context(), getConfig(), getLogger(cmd))
}

func newCommandContext(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*CommandContext, func()) {
	st := openStore(cfg.StatePath, logger)

	ident := session.Load(ctx, st, logger)
	mgr := theme.NewManager(st, logger)
	if _, err := mgr.Load(ctx); err != nil {
		logger.Warn("theme preference not restored", slog.Any("error", err))
	}

	cleanup := func() {
		if st != nil {
			_ = st.Close()
		}
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Store:    st,
		Identity: ident,
		Theme:    mgr,
		Client:   newClient(cfg, logger),
	}, cleanup
}

// openStore opens the SQLite preferences store. It returns nil when the
// store cannot be opened; the session then runs without persistence.
func openStore(path string, logger *slog.Logger) store.Store {
	s := store.NewSQLiteStore(logger)
	if err := s.Open(path); err != nil {
		logger.Warn("preferences store unavailable, using in-memory state",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return nil
	}
	return s
}

// getLogger returns the logger stored on the command context.
func getLogger(cmd *cobra.Command) *slog.Logger {
	return config.GetLogger(cmd.Context())
}

func newClient(cfg *config.Config, logger *slog.Logger) *api.Client {
	return api.NewClient(cfg.APIURL, api.WithLogger(logger))
}

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded (commands run outside the root command).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Defaults()
}

func jsonOutput(cfg *config.Config) bool {
	return cfg.OutputFormat == "json"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
