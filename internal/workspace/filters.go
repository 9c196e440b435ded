package workspace

import "github.com/leapstack-labs/sqlview/pkg/core"

// state returns the table state of the active database. Callers hold w.mu.
func (w *Workspace) state() *dbState {
	st, ok := w.dbs[w.active]
	if !ok {
		st = newDBState()
		w.dbs[w.active] = st
	}
	return st
}

// SetFilter sets the filter text of one column. Empty text disables it.
func (w *Workspace) SetFilter(table, column, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := w.state()
	f, ok := st.filters[table]
	if !ok {
		f = core.ColumnFilters{}
		st.filters[table] = f
	}
	f[column] = text
}

// SetFilters replaces every column filter of table.
func (w *Workspace) SetFilters(table string, filters core.ColumnFilters) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state().filters[table] = filters.Clone()
}

// Filters returns a copy of the filters of table in the active database.
func (w *Workspace) Filters(table string) core.ColumnFilters {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state().filters[table].Clone()
}

// RequestClear flags table so its filters reset on the next TakeFilters.
func (w *Workspace) RequestClear(table string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state().clear[table] = true
}

// ClearPending reports whether a clear was requested for table.
func (w *Workspace) ClearPending(table string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state().clear[table]
}

// TakeFilters returns the filters to use for rendering table. A pending
// clear request resets every column filter to "" first and is consumed.
func (w *Workspace) TakeFilters(table string) core.ColumnFilters {
	w.mu.Lock()
	defer w.mu.Unlock()

	st := w.state()
	if st.clear[table] {
		for col := range st.filters[table] {
			st.filters[table][col] = ""
		}
		delete(st.clear, table)
	}

	return st.filters[table].Clone()
}
