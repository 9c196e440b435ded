package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlview/internal/catalog"
	"github.com/leapstack-labs/sqlview/internal/cli/config"
	"github.com/leapstack-labs/sqlview/internal/cli/output"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// OpenCatalog loads the upload directory.
func (c *CommandContext) OpenCatalog(ctx context.Context) (*catalog.Catalog, error) {
	cat := catalog.New(c.Cfg.UploadDir, catalog.Options{
		Engines: c.Cfg.EngineParams(),
		Logger:  c.Logger,
	})
	if err := cat.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load upload directory: %w", err)
	}
	return cat, nil
}

// getConfig returns the current configuration, or the defaults when none
// was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
