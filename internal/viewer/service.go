// Package viewer implements the data-exploration flows behind the UI and
// CLI: uploading databases, selecting one, previewing tables with column
// filters, and running SQL in named query tabs.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/sqlview/internal/catalog"
	"github.com/leapstack-labs/sqlview/internal/workspace"
	"github.com/leapstack-labs/sqlview/pkg/core"
)

// Default limits.
const (
	DefaultPreviewLimit = 1000
	DefaultMaxRows      = 10000
	DefaultQueryTimeout = 30 * time.Second
)

// Options configures a Service.
type Options struct {
	// PreviewLimit bounds the rows loaded for a table view.
	PreviewLimit int
	// MaxRows bounds the rows kept from an ad-hoc query.
	MaxRows int
	// QueryTimeout bounds a single ad-hoc query.
	QueryTimeout time.Duration
	Logger       *slog.Logger
}

// Service runs viewer operations against the catalog on behalf of a workspace.
type Service struct {
	catalog *catalog.Catalog
	opts    Options
	logger  *slog.Logger
}

// New creates a Service. Zero options fall back to the defaults.
func New(cat *catalog.Catalog, opts Options) *Service {
	if opts.PreviewLimit <= 0 {
		opts.PreviewLimit = DefaultPreviewLimit
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = DefaultQueryTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{catalog: cat, opts: opts, logger: logger}
}

// Catalog returns the underlying catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// PreviewLimit returns the row limit used for table views.
func (s *Service) PreviewLimit() int {
	return s.opts.PreviewLimit
}

// Database is a catalog entry as seen from one workspace.
type Database struct {
	catalog.Entry
	Active bool
}

// Databases lists the usable databases and marks the active one. When the
// active database is gone, the first available one becomes active.
func (s *Service) Databases(ws *workspace.Workspace) []Database {
	entries := s.catalog.List()
	active := s.ensureActive(ws, entries)

	out := make([]Database, 0, len(entries))
	for _, e := range entries {
		out = append(out, Database{Entry: e, Active: e.Name == active})
	}
	return out
}

// ensureActive repairs the workspace selection against the catalog.
func (s *Service) ensureActive(ws *workspace.Workspace, entries []catalog.Entry) string {
	active := ws.Active()
	for _, e := range entries {
		if e.Name == active {
			return active
		}
	}

	if active != "" {
		ws.Forget(active)
	}
	if len(entries) == 0 {
		return ""
	}
	ws.Select(entries[0].Name)
	return entries[0].Name
}

// ActiveDatabase returns the active database name after repairing the
// selection, or core.ErrNoActiveDatabase when nothing is uploaded.
func (s *Service) ActiveDatabase(ws *workspace.Workspace) (string, error) {
	active := s.ensureActive(ws, s.catalog.List())
	if active == "" {
		return "", core.ErrNoActiveDatabase
	}
	return active, nil
}

// SelectDatabase makes name the active database of ws.
func (s *Service) SelectDatabase(ws *workspace.Workspace, name string) error {
	if _, ok := s.catalog.Get(name); !ok {
		return fmt.Errorf("%w: %s", core.ErrDatabaseNotFound, name)
	}
	ws.Select(name)
	return nil
}

// RemoveDatabase deletes an uploaded database and forgets its state in ws.
// Other workspaces repair their selection on their next render.
func (s *Service) RemoveDatabase(ws *workspace.Workspace, name string) error {
	if err := s.catalog.Remove(name); err != nil {
		return err
	}
	ws.Forget(name)
	return nil
}

// withActive opens the active database and runs fn with it.
func (s *Service) withActive(ctx context.Context, ws *workspace.Workspace, fn func(core.Adapter) error) error {
	name, err := s.ActiveDatabase(ws)
	if err != nil {
		return err
	}

	adp, err := s.catalog.Open(ctx, name)
	if err != nil {
		return err
	}
	defer func() { _ = adp.Close() }()

	return fn(adp)
}
