package workspace

import (
	"fmt"
	"slices"
	"time"

	"github.com/leapstack-labs/sqlview/pkg/core"
)

// autoTabPrefix prefixes generated query tab names.
const autoTabPrefix = "Query "

// Tab is a named query slot holding the most recent result.
// Result is shared between snapshots and must not be modified.
type Tab struct {
	Name      string
	SQL       string
	Result    *core.ResultSet
	Error     string
	UpdatedAt time.Time
}

// HasResult reports whether the tab holds a result.
func (t Tab) HasResult() bool {
	return t.Result != nil
}

// NewTab creates a query tab and focuses it. An empty name is replaced by
// "Query N" where N comes from a counter that only increases.
func (w *Workspace) NewTab(name string) (Tab, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if name == "" {
		name = w.nextTabName()
	} else if _, ok := w.tabs[name]; ok {
		return Tab{}, fmt.Errorf("%w: %s", core.ErrTabExists, name)
	}

	tab := w.addTab(name)
	w.focusedTab = name
	return *tab, nil
}

// nextTabName advances the counter past names that are already taken.
func (w *Workspace) nextTabName() string {
	for {
		w.tabCounter++
		name := fmt.Sprintf("%s%d", autoTabPrefix, w.tabCounter)
		if _, ok := w.tabs[name]; !ok {
			return name
		}
	}
}

func (w *Workspace) addTab(name string) *Tab {
	tab := &Tab{Name: name}
	w.tabs[name] = tab
	w.tabOrder = append(w.tabOrder, name)
	return tab
}

// tabOrCreate returns the named tab, creating it when missing. Callers hold w.mu.
func (w *Workspace) tabOrCreate(name string) *Tab {
	if tab, ok := w.tabs[name]; ok {
		return tab
	}
	return w.addTab(name)
}

// Tab returns a snapshot of the named tab.
func (w *Workspace) Tab(name string) (Tab, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tab, ok := w.tabs[name]
	if !ok {
		return Tab{}, fmt.Errorf("%w: %s", core.ErrTabNotFound, name)
	}
	return *tab, nil
}

// Tabs returns snapshots of all tabs in creation order.
func (w *Workspace) Tabs() []Tab {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Tab, 0, len(w.tabOrder))
	for _, name := range w.tabOrder {
		out = append(out, *w.tabs[name])
	}
	return out
}

// CloseTab deletes the named tab.
func (w *Workspace) CloseTab(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.tabs[name]; !ok {
		return fmt.Errorf("%w: %s", core.ErrTabNotFound, name)
	}
	delete(w.tabs, name)

	idx := slices.Index(w.tabOrder, name)
	w.tabOrder = slices.Delete(w.tabOrder, idx, idx+1)
	if w.focusedTab == name {
		w.focusedTab = neighbor(w.tabOrder, idx)
	}
	return nil
}

// FocusTab focuses an existing query tab.
func (w *Workspace) FocusTab(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.tabs[name]; !ok {
		return fmt.Errorf("%w: %s", core.ErrTabNotFound, name)
	}
	w.focusedTab = name
	return nil
}

// FocusedTab returns the focused query tab name, or "".
func (w *Workspace) FocusedTab() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focusedTab
}

// RecordResult stores the result of executing sql in the named tab,
// creating the tab if needed. Any previous error is cleared.
func (w *Workspace) RecordResult(name, sql string, result *core.ResultSet) Tab {
	w.mu.Lock()
	defer w.mu.Unlock()

	tab := w.tabOrCreate(name)
	tab.SQL = sql
	tab.Result = result.Clone()
	tab.Error = ""
	tab.UpdatedAt = time.Now()
	return *tab
}

// RecordError stores a failed execution in the named tab, creating the tab
// if needed. The previous result is left unchanged.
func (w *Workspace) RecordError(name, sql string, err error) Tab {
	w.mu.Lock()
	defer w.mu.Unlock()

	tab := w.tabOrCreate(name)
	tab.SQL = sql
	tab.Error = err.Error()
	tab.UpdatedAt = time.Now()
	return *tab
}
