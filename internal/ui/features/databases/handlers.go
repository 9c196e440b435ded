package databases

import (
	"net/http"

	"github.com/leapstack-labs/sqlview/internal/ui/features/common"
	"github.com/leapstack-labs/sqlview/internal/ui/notifier"
)

// Handlers provides HTTP handlers for the databases feature.
type Handlers struct {
	deps common.Deps
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{deps: deps}
}

// SelectSSE makes a database active for the session.
func (h *Handlers) SelectSSE(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	err := h.deps.Service.SelectDatabase(ws, common.PathParam(r, "name"))
	h.deps.PatchApp(w, r, ws, nil, err)
}

// RemoveSSE deletes an uploaded database and refreshes every open page.
func (h *Handlers) RemoveSSE(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	err := h.deps.Service.RemoveDatabase(ws, common.PathParam(r, "name"))
	if err == nil {
		h.deps.Notifier.Broadcast(notifier.Removed)
	}
	h.deps.PatchApp(w, r, ws, nil, err)
}
