// Package web serves the browser page shell: the same prompt, result tree,
// history and theme features as the terminal interface, driven by datastar
// server-sent events.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/asksql/internal/web/notifier"
	"golang.org/x/sync/errgroup"
)

// DefaultPort is used when no port is configured.
const DefaultPort = 8765

// Server is the page shell server.
type Server struct {
	handlers    *Handlers
	notifier    *notifier.Notifier
	port        int
	configFile  string
	reload      func() error
	logger      *slog.Logger
	onListening func(url string)
}

// Config holds configuration for the page shell server.
type Config struct {
	Backend Backend
	Port    int
	// SessionSecret signs the session cookie. A random key is used when
	// empty, so sessions do not survive a restart; callers with a
	// preferences store pass the persisted one from session.LoadSecret.
	SessionSecret string
	Logger        *slog.Logger

	// ConfigFile is watched when Reload is set; Reload runs after it changes.
	ConfigFile string
	Reload     func() error

	// OnListening is called with the page URL once the listener is open.
	OnListening func(url string)
}

// NewServer creates a new page shell server.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
		if secret == nil {
			return nil, errors.New("failed to generate session secret")
		}
	}

	notify := notifier.New()
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	return &Server{
		handlers:    NewHandlers(cfg.Backend, newSessionStore(secret), notify, logger),
		notifier:    notify,
		port:        port,
		configFile:  cfg.ConfigFile,
		reload:      cfg.Reload,
		logger:      logger,
		onListening: cfg.OnListening,
	}, nil
}

func newSessionStore(secret []byte) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore(secret)
	sessionStore.MaxAge(86400 * 365)
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	return sessionStore
}

// Handler returns the router with every route and middleware mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	s.handlers.Routes(r)
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("localhost:%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	url := "http://" + addr
	s.logger.Info("starting page server", slog.String("addr", url))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.reload != nil && s.configFile != "" {
		eg.Go(func() error {
			return s.watchConfig(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down page server...")
		return srv.Shutdown(shutdownCtx)
	})

	if s.onListening != nil {
		s.onListening(url)
	}

	return eg.Wait()
}

// watchConfig re-runs the reload hook when the configuration file changes.
// The directory is watched because editors often replace the file.
func (s *Server) watchConfig(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(s.configFile)); err != nil {
		s.logger.Error("failed to watch config file", slog.String("file", s.configFile), slog.Any("error", err))
		// Don't fail - continue without watching
		<-ctx.Done()
		return nil
	}

	name := filepath.Clean(s.configFile)
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("config changed, reloading", slog.String("file", event.Name))
				if err := s.reload(); err != nil {
					s.logger.Error("config reload failed", slog.Any("error", err))
					return
				}
				s.logger.Info("configuration reloaded")
				s.notifier.BroadcastAll()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", slog.Any("error", err))
		}
	}
}
