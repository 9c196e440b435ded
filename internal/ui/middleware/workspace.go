// Package middleware binds browser sessions to workspaces.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/sqlview/internal/workspace"
)

// SessionName is the cookie name used for the session.
const SessionName = "sqlview"

// sessionKey holds the workspace id inside the session.
const sessionKey = "workspace_id"

type ctxKey struct{}

// WithWorkspace returns a context carrying ws.
func WithWorkspace(ctx context.Context, ws *workspace.Workspace) context.Context {
	return context.WithValue(ctx, ctxKey{}, ws)
}

// Workspace returns the workspace stored in ctx, or nil.
func Workspace(ctx context.Context) *workspace.Workspace {
	ws, _ := ctx.Value(ctxKey{}).(*workspace.Workspace)
	return ws
}

// Workspaces loads the session of each request, assigns it a workspace id
// on first visit, and stores the matching workspace in the request context.
func Workspaces(store sessions.Store, mgr *workspace.Manager, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// An undecodable cookie still yields a fresh session.
			session, err := store.Get(r, SessionName)
			if err != nil {
				logger.Debug("discarding invalid session", "error", err)
			}

			id, _ := session.Values[sessionKey].(string)
			if id == "" {
				id = uuid.NewString()
				session.Values[sessionKey] = id
				if err := session.Save(r, w); err != nil {
					http.Error(w, "failed to save session: "+err.Error(), http.StatusInternalServerError)
					return
				}
				logger.Debug("new workspace", "id", id)
			}

			ws := mgr.Get(id)
			next.ServeHTTP(w, r.WithContext(WithWorkspace(r.Context(), ws)))
		})
	}
}
