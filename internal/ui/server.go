// Package ui provides the browser interface for exploring uploaded databases.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqlview/internal/ui/features/common"
	uimw "github.com/leapstack-labs/sqlview/internal/ui/middleware"
	"github.com/leapstack-labs/sqlview/internal/ui/notifier"
	"github.com/leapstack-labs/sqlview/internal/ui/resources"
	"github.com/leapstack-labs/sqlview/internal/ui/router"
	"github.com/leapstack-labs/sqlview/internal/viewer"
	"github.com/leapstack-labs/sqlview/internal/workspace"
)

// DefaultIdleTimeout is how long an unused session workspace is kept.
const DefaultIdleTimeout = 24 * time.Hour

// Server is the main UI server.
type Server struct {
	service      *viewer.Service
	workspaces   *workspace.Manager
	sessionStore *sessions.CookieStore
	host         string
	port         int
	watch        bool
	maxUpload    int64
	idleTimeout  time.Duration
	dev          bool
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Service *viewer.Service
	Host    string
	Port    int
	// Watch rescans the upload directory when files change on disk.
	Watch bool
	// SessionSecret signs session cookies. A random key is used when empty,
	// so sessions do not survive a restart.
	SessionSecret string
	// MaxUploadMB limits the size of one upload request. Zero means no limit.
	MaxUploadMB int64
	IdleTimeout time.Duration
	Logger      *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}

	return &Server{
		service:      cfg.Service,
		workspaces:   workspace.NewManager(),
		sessionStore: uimw.NewSessionStore(cfg.SessionSecret),
		host:         cfg.Host,
		port:         cfg.Port,
		watch:        cfg.Watch,
		maxUpload:    cfg.MaxUploadMB << 20,
		idleTimeout:  idle,
		dev:          resources.Dev,
		logger:       logger,
		notifier:     notifier.New(),
	}
}

// Handler builds the HTTP handler with all routes and middleware.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	deps := common.Deps{
		Service:        s.service,
		Notifier:       s.notifier,
		Logger:         s.logger,
		MaxUploadBytes: s.maxUpload,
		Dev:            s.dev,
	}
	if err := router.SetupRoutes(r, deps, s.sessionStore, s.workspaces); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, fmt.Sprint(s.port))
}

// URL returns the address a browser can open.
func (s *Server) URL() string {
	host := s.host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, fmt.Sprint(s.port))
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
	}
	s.logger.Info("starting UI server", "addr", s.URL())

	return s.serve(ctx, ln, handler)
}

func (s *Server) serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Pick up database files copied into the upload directory
	if s.watch {
		eg.Go(func() error {
			err := s.service.Catalog().Watch(egctx, s.notifier.Rescanned)
			if err != nil {
				s.logger.Error("failed to watch upload directory", "error", err)
			}
			// Don't fail - continue without watching
			return nil
		})
	}

	eg.Go(func() error {
		s.reapWorkspaces(egctx)
		return nil
	})

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// reapWorkspaces drops workspaces whose session has been idle too long.
func (s *Server) reapWorkspaces(ctx context.Context) {
	interval := s.idleTimeout / 4
	if interval > time.Hour {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.workspaces.Reap(s.idleTimeout); n > 0 {
				s.logger.Debug("reaped idle workspaces", "count", n)
			}
		}
	}
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Workspaces returns the session workspaces.
func (s *Server) Workspaces() *workspace.Manager {
	return s.workspaces
}
