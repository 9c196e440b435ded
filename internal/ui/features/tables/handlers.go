package tables

import (
	"fmt"
	"net/http"

	"github.com/leapstack-labs/sqlview/internal/ui/features/common"
	"github.com/leapstack-labs/sqlview/pkg/core"
)

// Handlers provides HTTP handlers for the tables feature.
type Handlers struct {
	deps common.Deps
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{deps: deps}
}

// OpenSSE opens a table tab and renders its preview.
func (h *Handlers) OpenSSE(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	view, err := h.deps.Service.OpenTable(r.Context(), ws, common.PathParam(r, "name"))
	h.deps.PatchApp(w, r, ws, view, err)
}

// CloseSSE closes a table tab. Its filters are kept for later.
func (h *Handlers) CloseSSE(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	ws.CloseTable(common.PathParam(r, "name"))
	h.deps.PatchApp(w, r, ws, nil, nil)
}

// ViewSSE focuses a table tab and renders it again from the database.
func (h *Handlers) ViewSSE(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	table := common.PathParam(r, "name")
	ws.FocusTable(table)
	view, err := h.deps.Service.TableView(r.Context(), ws, table)
	h.deps.PatchApp(w, r, ws, view, err)
}

// FiltersSSE stores the submitted column filters and re-renders the table.
// The form posts one field per column.
func (h *Handlers) FiltersSSE(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	// Read the form BEFORE creating SSE (SSE consumes the request)
	if err := r.ParseForm(); err != nil {
		h.deps.PatchApp(w, r, ws, nil, fmt.Errorf("failed to read filters: %w", err))
		return
	}

	filters := make(core.ColumnFilters, len(r.PostForm))
	for col, values := range r.PostForm {
		if len(values) > 0 {
			filters[col] = values[0]
		}
	}

	table := common.PathParam(r, "name")
	ws.FocusTable(table)
	view, err := h.deps.Service.ApplyFilters(r.Context(), ws, table, filters)
	h.deps.PatchApp(w, r, ws, view, err)
}

// ClearFiltersSSE resets every column filter of the table.
func (h *Handlers) ClearFiltersSSE(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	table := common.PathParam(r, "name")
	ws.FocusTable(table)
	view, err := h.deps.Service.ClearFilters(r.Context(), ws, table)
	h.deps.PatchApp(w, r, ws, view, err)
}
