package common

import (
	"context"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/sqlview/internal/ui/middleware"
	"github.com/leapstack-labs/sqlview/internal/viewer"
	"github.com/leapstack-labs/sqlview/internal/workspace"
)

// SessionWorkspace returns the workspace bound to the request, writing a
// 500 response when the session middleware did not run.
func SessionWorkspace(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	ws := middleware.Workspace(r.Context())
	if ws == nil {
		http.Error(w, "no session workspace", http.StatusInternalServerError)
		return nil, false
	}
	return ws, true
}

// BuildAppData assembles the state of ws for rendering. A view already
// computed for the focused table is reused instead of querying again.
func (d Deps) BuildAppData(ctx context.Context, ws *workspace.Workspace, view *viewer.TableView) AppData {
	svc := d.Service
	data := AppData{
		Databases:    svc.Databases(ws),
		Active:       ws.Active(),
		Warnings:     ws.TakeWarnings(),
		MaxUploadMB:  d.MaxUploadBytes >> 20,
		PreviewLimit: svc.PreviewLimit(),
	}

	if data.Active != "" {
		tables, err := svc.Tables(ctx, ws)
		if err != nil {
			data.Error = err.Error()
		}
		data.Tables = tables
		data.OpenTables = ws.OpenTables()
		data.FocusedTable = ws.FocusedTable()

		switch {
		case data.FocusedTable == "":
		case view != nil && view.Table == data.FocusedTable:
			data.View = view
		default:
			v, err := svc.TableView(ctx, ws, data.FocusedTable)
			if err != nil && data.Error == "" {
				data.Error = err.Error()
			}
			data.View = v
		}
	}

	data.Tabs = ws.Tabs()
	data.FocusedTab = ws.FocusedTab()
	return data
}

// PatchApp reports opErr, when set, and patches #app with the state of ws.
func (d Deps) PatchApp(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, view *viewer.TableView, opErr error) {
	sse := datastar.NewSSE(w, r)
	d.SendApp(r.Context(), sse, ws, view, opErr)
}

// SendApp is PatchApp for an existing SSE stream.
func (d Deps) SendApp(ctx context.Context, sse *datastar.ServerSentEventGenerator, ws *workspace.Workspace, view *viewer.TableView, opErr error) {
	if opErr != nil {
		_ = sse.ConsoleError(opErr)
	}

	data := d.BuildAppData(ctx, ws, view)
	if opErr != nil {
		data.Error = opErr.Error()
	}

	if err := sse.PatchElementTempl(App(data)); err != nil {
		_ = sse.ConsoleError(err)
	}
}
