// Package router sets up HTTP routes for the UI server.
package router

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/sqlview/internal/ui/features/common"
	databasesFeature "github.com/leapstack-labs/sqlview/internal/ui/features/databases"
	homeFeature "github.com/leapstack-labs/sqlview/internal/ui/features/home"
	queryFeature "github.com/leapstack-labs/sqlview/internal/ui/features/query"
	tablesFeature "github.com/leapstack-labs/sqlview/internal/ui/features/tables"
	uploadFeature "github.com/leapstack-labs/sqlview/internal/ui/features/upload"
	"github.com/leapstack-labs/sqlview/internal/ui/middleware"
	"github.com/leapstack-labs/sqlview/internal/ui/resources"
	"github.com/leapstack-labs/sqlview/internal/workspace"
)

// SetupRoutes configures all routes for the UI server. Every route except
// static assets and hot reload runs inside a session workspace.
func SetupRoutes(
	router chi.Router,
	deps common.Deps,
	sessionStore sessions.Store,
	workspaces *workspace.Manager,
) error {
	// Hot reload endpoint for dev mode
	if deps.Dev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	var setupErr error
	router.Group(func(r chi.Router) {
		r.Use(middleware.Workspaces(sessionStore, workspaces, deps.Logger))

		for _, setup := range []func(chi.Router, common.Deps) error{
			homeFeature.SetupRoutes,
			uploadFeature.SetupRoutes,
			databasesFeature.SetupRoutes,
			tablesFeature.SetupRoutes,
			queryFeature.SetupRoutes,
		} {
			if err := setup(r, deps); err != nil {
				setupErr = err
				return
			}
		}
	})

	return setupErr
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
