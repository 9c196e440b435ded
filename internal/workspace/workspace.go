// Package workspace holds the UI state of one browser session: the active
// database, the open table tabs with their column filters, and the query
// tabs with their cached results.
//
// All methods are safe for concurrent use. Handlers for the same session run
// concurrently, so every mutation happens under the workspace lock.
package workspace

import (
	"slices"
	"sync"

	"github.com/leapstack-labs/sqlview/pkg/core"
)

// dbState is the table state kept for one database.
type dbState struct {
	filters map[string]core.ColumnFilters
	clear   map[string]bool
}

func newDBState() *dbState {
	return &dbState{
		filters: make(map[string]core.ColumnFilters),
		clear:   make(map[string]bool),
	}
}

// Workspace is the state of a single browser session.
type Workspace struct {
	id string

	mu           sync.Mutex
	active       string
	openTables   []string
	focusedTable string
	dbs          map[string]*dbState

	tabs       map[string]*Tab
	tabOrder   []string
	tabCounter int
	focusedTab string

	warnings []string
}

// New creates an empty workspace.
func New(id string) *Workspace {
	return &Workspace{
		id:   id,
		dbs:  make(map[string]*dbState),
		tabs: make(map[string]*Tab),
	}
}

// ID returns the workspace identifier.
func (w *Workspace) ID() string {
	return w.id
}

// Select makes name the active database. Switching to a different database
// closes the open table tabs. Filters stay with the database they were set on.
func (w *Workspace) Select(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.active == name {
		return
	}
	w.active = name
	w.openTables = nil
	w.focusedTable = ""
}

// Active returns the active database name, or "" when none is selected.
func (w *Workspace) Active() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// Forget drops all state kept for database name. If it was active, the
// workspace has no active database afterwards.
func (w *Workspace) Forget(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.dbs, name)
	if w.active == name {
		w.active = ""
		w.openTables = nil
		w.focusedTable = ""
	}
}

// OpenTable adds table to the open tables and focuses it.
func (w *Workspace) OpenTable(table string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !slices.Contains(w.openTables, table) {
		w.openTables = append(w.openTables, table)
	}
	w.focusedTable = table
}

// CloseTable removes table from the open tables. Its filters are kept.
func (w *Workspace) CloseTable(table string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := slices.Index(w.openTables, table)
	if idx < 0 {
		return
	}
	w.openTables = slices.Delete(w.openTables, idx, idx+1)
	if w.focusedTable == table {
		w.focusedTable = neighbor(w.openTables, idx)
	}
}

// OpenTables returns the open tables in the order they were opened.
func (w *Workspace) OpenTables() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.openTables)
}

// FocusTable focuses an open table. Unknown tables are ignored.
func (w *Workspace) FocusTable(table string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if slices.Contains(w.openTables, table) {
		w.focusedTable = table
	}
}

// FocusedTable returns the focused table tab, or "".
func (w *Workspace) FocusedTable() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focusedTable
}

// AddWarning queues a message shown once on the next render.
func (w *Workspace) AddWarning(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warnings = append(w.warnings, msg)
}

// TakeWarnings returns and clears the queued warnings.
func (w *Workspace) TakeWarnings() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := w.warnings
	w.warnings = nil
	return out
}

// neighbor picks the entry that takes the place of a removed one at idx.
func neighbor(items []string, idx int) string {
	switch {
	case len(items) == 0:
		return ""
	case idx > 0:
		return items[idx-1]
	default:
		return items[0]
	}
}
