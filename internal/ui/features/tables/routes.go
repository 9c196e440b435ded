// Package tables serves table tabs, table previews and column filters.
package tables

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqlview/internal/ui/features/common"
)

// SetupRoutes configures routes for the tables feature.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	handlers := NewHandlers(deps)

	router.Route("/api/tables/{name}", func(r chi.Router) {
		r.Post("/open", handlers.OpenSSE)
		r.Post("/close", handlers.CloseSSE)
		r.Get("/view", handlers.ViewSSE)
		r.Post("/filters", handlers.FiltersSSE)
		r.Post("/filters/clear", handlers.ClearFiltersSSE)
	})

	return nil
}
