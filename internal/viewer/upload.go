package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/leapstack-labs/sqlview/internal/catalog"
	"github.com/leapstack-labs/sqlview/internal/workspace"
	"github.com/leapstack-labs/sqlview/pkg/core"
)

// UploadOutcome describes what happened to one uploaded file.
type UploadOutcome struct {
	Name string
	// Entry is set when the file is usable.
	Entry *catalog.Entry
	// AlreadyLoaded is true when a database with the same name existed.
	AlreadyLoaded bool
	// Warning is the message shown for a rejected file.
	Warning string
}

// Accepted reports whether the file is in the usable set.
func (o UploadOutcome) Accepted() bool {
	return o.Entry != nil
}

// NotDatabaseWarning is the message shown when an upload is rejected.
func NotDatabaseWarning(name string) string {
	return fmt.Sprintf("'%s' is not a valid SQLite database.", name)
}

// Upload stores one file and validates it. Rejected files produce a warning
// on ws instead of an error. When ws has no active database, the first
// accepted file becomes active. Only storage failures are returned as errors.
func (s *Service) Upload(ctx context.Context, ws *workspace.Workspace, name string, r io.Reader) (UploadOutcome, error) {
	out := UploadOutcome{Name: name}

	entry, err := s.catalog.Save(ctx, name, r)
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrAlreadyLoaded):
		out.AlreadyLoaded = true
	case errors.Is(err, core.ErrNotDatabase):
		out.Warning = NotDatabaseWarning(name)
	case errors.Is(err, core.ErrInvalidName):
		out.Warning = fmt.Sprintf("'%s' is not a valid file name.", name)
	default:
		return out, fmt.Errorf("failed to upload %s: %w", name, err)
	}

	if out.Warning != "" {
		ws.AddWarning(out.Warning)
		s.logger.Info("upload rejected", "file", name, "error", err)
		return out, nil
	}

	out.Entry = entry
	out.Name = entry.Name
	if ws.Active() == "" {
		ws.Select(entry.Name)
	}
	return out, nil
}
