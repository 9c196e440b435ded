package viewer

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/sqlview/internal/workspace"
	"github.com/leapstack-labs/sqlview/pkg/core"
)

// TableView is one render of a table tab.
type TableView struct {
	Database string
	Table    string
	Columns  []string
	// Filters has an entry for every column, "" when unfiltered.
	Filters core.ColumnFilters
	// Result holds the loaded rows that pass the filters.
	Result *core.ResultSet
	// LoadedRows is the number of rows loaded before filtering.
	LoadedRows int
	// Limited is true when the preview limit was reached.
	Limited bool
}

// Filtered reports whether any filter narrowed the view.
func (v *TableView) Filtered() bool {
	return v.Filters.Active()
}

// Tables lists the tables of the active database.
func (s *Service) Tables(ctx context.Context, ws *workspace.Workspace) ([]string, error) {
	var tables []string
	err := s.withActive(ctx, ws, func(adp core.Adapter) error {
		var err error
		tables, err = adp.ListTables(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// Columns describes the columns of a table in the active database.
func (s *Service) Columns(ctx context.Context, ws *workspace.Workspace, table string) ([]core.Column, error) {
	var cols []core.Column
	err := s.withActive(ctx, ws, func(adp core.Adapter) error {
		var err error
		cols, err = adp.TableColumns(ctx, table)
		return err
	})
	return cols, err
}

// TableView renders table: pending clear requests are applied, the preview
// is re-read from the database and the filters are applied to it.
func (s *Service) TableView(ctx context.Context, ws *workspace.Workspace, table string) (*TableView, error) {
	filters := ws.TakeFilters(table)

	view := &TableView{Table: table}
	err := s.withActive(ctx, ws, func(adp core.Adapter) error {
		view.Database = ws.Active()

		preview, err := adp.Preview(ctx, table, s.opts.PreviewLimit)
		if err != nil {
			return fmt.Errorf("failed to load table %s: %w", table, err)
		}

		view.Columns = preview.Columns
		view.LoadedRows = preview.RowCount()
		view.Limited = view.LoadedRows >= s.opts.PreviewLimit
		view.Result = preview.Filter(filters)
		return nil
	})
	if err != nil {
		return nil, err
	}

	view.Filters = make(core.ColumnFilters, len(view.Columns))
	for _, col := range view.Columns {
		view.Filters[col] = filters[col]
	}
	return view, nil
}

// OpenTable opens a table tab and renders it.
func (s *Service) OpenTable(ctx context.Context, ws *workspace.Workspace, table string) (*TableView, error) {
	ws.OpenTable(table)
	return s.TableView(ctx, ws, table)
}

// ApplyFilters replaces the column filters of table and renders it again.
func (s *Service) ApplyFilters(ctx context.Context, ws *workspace.Workspace, table string, filters core.ColumnFilters) (*TableView, error) {
	ws.SetFilters(table, filters)
	return s.TableView(ctx, ws, table)
}

// ClearFilters requests a filter reset for table and renders it again.
func (s *Service) ClearFilters(ctx context.Context, ws *workspace.Workspace, table string) (*TableView, error) {
	ws.RequestClear(table)
	return s.TableView(ctx, ws, table)
}
