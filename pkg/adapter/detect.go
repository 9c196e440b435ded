package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/leapstack-labs/sqlview/pkg/core"
)

// EngineParams maps an engine name to its configuration parameters.
type EngineParams map[string]map[string]any

// Detect finds the first registered engine able to open path and list its
// tables. Engines are tried in priority order and the file is opened
// read-only. A *core.NotDatabaseError is returned when no engine accepts it.
func Detect(ctx context.Context, path string, params EngineParams, logger *slog.Logger) (string, error) {
	regs := detectOrder()
	if len(regs) == 0 {
		return "", fmt.Errorf("no database engines registered")
	}

	var errs []error
	for _, reg := range regs {
		adp := reg.factory(logger)
		err := tryEngine(ctx, adp, path, params[reg.name])
		if err == nil {
			return reg.name, nil
		}
		if logger != nil {
			logger.Debug("engine rejected file", "engine", reg.name, "path", path, "error", err)
		}
		errs = append(errs, fmt.Errorf("%s: %w", reg.name, err))
	}

	return "", &core.NotDatabaseError{
		Name: filepath.Base(path),
		Err:  errors.Join(errs...),
	}
}

func tryEngine(ctx context.Context, adp Adapter, path string, params map[string]any) error {
	if err := adp.Open(ctx, Config{Path: path, ReadOnly: true, Params: params}); err != nil {
		return err
	}
	defer func() { _ = adp.Close() }()

	_, err := adp.ListTables(ctx)
	return err
}

// Open creates an engine by name and opens path with it.
func Open(ctx context.Context, engine, path string, params EngineParams, logger *slog.Logger) (Adapter, error) {
	adp, err := NewAdapter(engine, logger)
	if err != nil {
		return nil, err
	}
	if err := adp.Open(ctx, Config{Path: path, Params: params[engine]}); err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", engine, err)
	}
	return adp, nil
}
