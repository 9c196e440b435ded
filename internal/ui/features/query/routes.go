// Package query serves SQL query tabs: creation, execution and export.
package query

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqlview/internal/ui/features/common"
)

// SetupRoutes configures routes for the query feature.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	handlers := NewHandlers(deps)

	router.Post("/api/query/tabs", handlers.NewTabSSE)
	router.Route("/api/query/tabs/{name}", func(r chi.Router) {
		r.Post("/execute", handlers.ExecuteSSE)
		r.Post("/focus", handlers.FocusSSE)
		r.Post("/close", handlers.CloseSSE)
		r.Get("/export", handlers.Export)
	})

	return nil
}
