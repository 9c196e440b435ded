package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/leapstack-labs/sqlview/internal/cli/output"
	"github.com/leapstack-labs/sqlview/pkg/adapter"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.UploadDir == "" {
		errs = append(errs, errors.New("upload_dir is required"))
	}
	if c.OutputFormat != "" && !slices.Contains(output.Modes, c.OutputFormat) {
		errs = append(errs, fmt.Errorf("output must be one of %v, got %q", output.Modes, c.OutputFormat))
	}

	ui := c.UI
	if ui.Port < 0 || ui.Port > 65535 {
		errs = append(errs, fmt.Errorf("ui.port must be between 0 and 65535, got %d", ui.Port))
	}
	if ui.PreviewLimit <= 0 {
		errs = append(errs, fmt.Errorf("ui.preview_limit must be positive, got %d", ui.PreviewLimit))
	}
	if ui.MaxRows <= 0 {
		errs = append(errs, fmt.Errorf("ui.max_rows must be positive, got %d", ui.MaxRows))
	}
	if ui.QueryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ui.query_timeout must be positive, got %s", ui.QueryTimeout))
	}
	if ui.MaxUploadMB < 0 {
		errs = append(errs, fmt.Errorf("ui.max_upload_mb must not be negative, got %d", ui.MaxUploadMB))
	}
	if ui.WorkspaceIdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ui.workspace_idle_timeout must be positive, got %s", ui.WorkspaceIdleTimeout))
	}

	for name := range c.Engines {
		if !adapter.IsRegistered(name) {
			errs = append(errs, &adapter.UnknownAdapterError{Type: name, Available: adapter.ListAdapters()})
		}
	}

	return errors.Join(errs...)
}

// EngineParams returns the engine params in the form adapters accept.
func (c *Config) EngineParams() adapter.EngineParams {
	if len(c.Engines) == 0 {
		return nil
	}
	params := make(adapter.EngineParams, len(c.Engines))
	for name, p := range c.Engines {
		params[name] = p
	}
	return params
}
