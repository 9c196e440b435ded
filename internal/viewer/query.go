package viewer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlview/internal/workspace"
	"github.com/leapstack-labs/sqlview/pkg/core"
)

// NewQueryTab creates a query tab. An empty name picks "Query N".
func (s *Service) NewQueryTab(ws *workspace.Workspace, name string) (workspace.Tab, error) {
	return ws.NewTab(strings.TrimSpace(name))
}

// ExecuteQuery runs sqlText against the active database and stores the
// outcome in the named tab. On failure the error is recorded in the tab,
// its previous result is kept, and an error wrapping core.ErrQueryFailed
// is returned. Failures to open the database are returned unwrapped.
func (s *Service) ExecuteQuery(ctx context.Context, ws *workspace.Workspace, tab, sqlText string) (workspace.Tab, error) {
	if strings.TrimSpace(sqlText) == "" {
		return ws.RecordError(tab, sqlText, core.ErrEmptyQuery), core.ErrEmptyQuery
	}

	var result *core.ResultSet
	var queryErr error
	err := s.withActive(ctx, ws, func(adp core.Adapter) error {
		qctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
		defer cancel()

		result, queryErr = adp.Query(qctx, sqlText, s.opts.MaxRows)
		if queryErr != nil && errors.Is(qctx.Err(), context.DeadlineExceeded) {
			queryErr = fmt.Errorf("query timed out after %s: %w", s.opts.QueryTimeout, queryErr)
		}
		return nil
	})
	if errors.Is(err, core.ErrNoActiveDatabase) {
		return ws.RecordError(tab, sqlText, err), err
	}
	if err != nil {
		return workspace.Tab{}, err
	}

	if queryErr != nil {
		wrapped := fmt.Errorf("%w: %w", core.ErrQueryFailed, queryErr)
		s.logger.Debug("query failed", "tab", tab, "error", queryErr)
		return ws.RecordError(tab, sqlText, wrapped), wrapped
	}

	s.logger.Debug("query executed", "tab", tab, "rows", result.RowCount(), "ms", result.QueryMS)
	return ws.RecordResult(tab, sqlText, result), nil
}
