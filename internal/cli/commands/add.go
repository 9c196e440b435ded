package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlview/internal/catalog"
	"github.com/leapstack-labs/sqlview/internal/cli/output"
	"github.com/leapstack-labs/sqlview/internal/viewer"
	"github.com/leapstack-labs/sqlview/pkg/core"
)

// NewAddCommand creates the add command.
func NewAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Copy database files into the upload directory",
		Long: `Copy database files into the upload directory, exactly as the browser
upload does. Each file is validated by listing its tables; files that are
not databases are reported and left out of the database list. Files whose
name is already loaded are skipped.`,
		Example: `  sqlview add shop.db
  sqlview add data/*.sqlite --upload-dir /srv/dbs`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args)
		},
	}
}

// addResult is the outcome of adding one file.
type addResult struct {
	File   string `json:"file"`
	Name   string `json:"name,omitempty"`
	Engine string `json:"engine,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Add statuses.
const (
	addAdded    = "added"
	addSkipped  = "already loaded"
	addRejected = "rejected"
)

func runAdd(cmd *cobra.Command, files []string) error {
	cmdCtx := NewCommandContext(cmd)
	ctx := cmd.Context()

	cat, err := cmdCtx.OpenCatalog(ctx)
	if err != nil {
		return err
	}

	results := make([]addResult, 0, len(files))
	rejected := 0
	for _, file := range files {
		res := addFile(cmd, cat, file)
		if res.Status == addRejected {
			rejected++
		}
		results = append(results, res)
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			switch res.Status {
			case addAdded:
				r.StatusLine(res.Name, "success", res.Engine)
			case addSkipped:
				r.StatusLine(res.Name, "warning", addSkipped)
			default:
				r.StatusLine(res.File, "error", res.Error)
			}
		}
	}

	if rejected > 0 {
		return fmt.Errorf("%d of %d file(s) rejected", rejected, len(files))
	}
	return nil
}

func addFile(cmd *cobra.Command, cat *catalog.Catalog, file string) addResult {
	res := addResult{File: file}

	f, err := os.Open(file) //nolint:gosec // user-supplied path is the point
	if err != nil {
		res.Status = addRejected
		res.Error = err.Error()
		return res
	}
	defer func() { _ = f.Close() }()

	entry, err := cat.Save(cmd.Context(), filepath.Base(file), f)
	switch {
	case err == nil:
		res.Status = addAdded
	case errors.Is(err, catalog.ErrAlreadyLoaded):
		res.Status = addSkipped
	case errors.Is(err, core.ErrNotDatabase):
		res.Status = addRejected
		res.Error = viewer.NotDatabaseWarning(filepath.Base(file))
		return res
	default:
		res.Status = addRejected
		res.Error = err.Error()
		return res
	}

	res.Name = entry.Name
	res.Engine = entry.Engine
	return res
}
