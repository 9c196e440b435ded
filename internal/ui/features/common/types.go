// Package common provides shared types, components and helpers for UI features.
package common

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

import (
	"log/slog"

	"github.com/leapstack-labs/sqlview/internal/ui/notifier"
	"github.com/leapstack-labs/sqlview/internal/viewer"
	"github.com/leapstack-labs/sqlview/internal/workspace"
)

// Deps holds what feature handlers need.
type Deps struct {
	Service  *viewer.Service
	Notifier *notifier.Notifier
	Logger   *slog.Logger
	// MaxUploadBytes bounds a single upload request.
	MaxUploadBytes int64
	// Dev enables the hot reload hook in the page layout.
	Dev bool
}

// AppData is everything rendered inside the #app container.
type AppData struct {
	Databases []viewer.Database
	Active    string

	// Tables of the active database.
	Tables       []string
	OpenTables   []string
	FocusedTable string
	// View is the render of FocusedTable.
	View *viewer.TableView

	Tabs       []workspace.Tab
	FocusedTab string

	Warnings []string
	// Error is shown above the content when an action failed.
	Error string

	MaxUploadMB  int64
	PreviewLimit int
}

// TableOpen reports whether table has an open tab.
func (d AppData) TableOpen(table string) bool {
	for _, t := range d.OpenTables {
		if t == table {
			return true
		}
	}
	return false
}

// FocusedQueryTab returns the query tab named by FocusedTab.
func (d AppData) FocusedQueryTab() (workspace.Tab, bool) {
	for _, tab := range d.Tabs {
		if tab.Name == d.FocusedTab {
			return tab, true
		}
	}
	return workspace.Tab{}, false
}
