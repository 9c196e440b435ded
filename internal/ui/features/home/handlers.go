package home

import (
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/sqlview/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the home feature.
type Handlers struct {
	deps common.Deps
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{deps: deps}
}

// HomePage renders the full page for the session workspace.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	data := h.deps.BuildAppData(r.Context(), ws, nil)
	page := common.Page("Explore", h.deps.Dev, common.App(data))
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HomePageUpdates is the long-lived SSE endpoint of the page. It re-patches
// #app whenever the notifier fires. Nothing is sent up front because
// HomePage already rendered the current state.
func (h *Handlers) HomePageUpdates(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)

	updates := h.deps.Notifier.Subscribe()
	defer h.deps.Notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-updates:
			if !ok {
				return
			}
			h.deps.Logger.Debug("catalog changed", "reason", change.Reason, "workspace", ws.ID())
			h.deps.SendApp(ctx, sse, ws, nil, nil)
		}
	}
}
