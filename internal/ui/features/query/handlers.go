package query

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/sqlview/internal/ui/features/common"
	"github.com/leapstack-labs/sqlview/internal/viewer"
	"github.com/leapstack-labs/sqlview/pkg/core"
)

// Handlers provides HTTP handlers for the query feature.
type Handlers struct {
	deps common.Deps
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{deps: deps}
}

// newTabSignals is the client state sent with a new tab request.
type newTabSignals struct {
	TabName string `json:"tabName"`
}

// NewTabSSE creates a query tab named after the tabName signal.
func (h *Handlers) NewTabSSE(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	// Read signals BEFORE creating SSE (SSE consumes the request)
	var signals newTabSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.deps.Logger.Debug("no tab name signal", "error", err)
	}

	sse := datastar.NewSSE(w, r)
	_, err := h.deps.Service.NewQueryTab(ws, signals.TabName)
	if err == nil {
		_ = sse.MarshalAndPatchSignals(newTabSignals{})
	}
	h.deps.SendApp(r.Context(), sse, ws, nil, err)
}

// ExecuteSSE runs the submitted SQL in the tab. Query failures are shown
// inside the tab rather than as an application error.
func (h *Handlers) ExecuteSSE(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	// Read the form BEFORE creating SSE (SSE consumes the request)
	if err := r.ParseForm(); err != nil {
		h.deps.PatchApp(w, r, ws, nil, fmt.Errorf("failed to read query: %w", err))
		return
	}

	tab := common.PathParam(r, "name")
	sqlText := r.PostForm.Get("sql")

	_, err := h.deps.Service.ExecuteQuery(r.Context(), ws, tab, sqlText)
	// The tab is only missing when the database could not be opened.
	_ = ws.FocusTab(tab)
	if inlineError(err) {
		err = nil
	}
	h.deps.PatchApp(w, r, ws, nil, err)
}

func inlineError(err error) bool {
	return errors.Is(err, core.ErrQueryFailed) ||
		errors.Is(err, core.ErrEmptyQuery) ||
		errors.Is(err, core.ErrNoActiveDatabase)
}

// FocusSSE brings a query tab to the front.
func (h *Handlers) FocusSSE(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	err := ws.FocusTab(common.PathParam(r, "name"))
	h.deps.PatchApp(w, r, ws, nil, err)
}

// CloseSSE closes a query tab and drops its result.
func (h *Handlers) CloseSSE(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	err := ws.CloseTab(common.PathParam(r, "name"))
	h.deps.PatchApp(w, r, ws, nil, err)
}

// Export downloads the last result of a tab as csv, json or md.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	tab := common.PathParam(r, "name")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = viewer.FormatCSV
	}

	f, err := viewer.LookupExportFormat(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := h.deps.Service.ExportTab(ws, tab, f.Name, &buf); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, core.ErrTabNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(tab, f)))
	_, _ = w.Write(buf.Bytes())
}

func exportFilename(tab string, f viewer.ExportFormat) string {
	name := make([]rune, 0, len(tab))
	for _, r := range tab {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			name = append(name, r)
		default:
			name = append(name, '_')
		}
	}
	if len(name) == 0 {
		return "result" + f.Extension
	}
	return string(name) + f.Extension
}
