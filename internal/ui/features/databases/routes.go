// Package databases handles choosing and removing uploaded databases.
package databases

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqlview/internal/ui/features/common"
)

// SetupRoutes configures routes for the databases feature.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	handlers := NewHandlers(deps)

	router.Route("/api/databases/{name}", func(r chi.Router) {
		r.Post("/select", handlers.SelectSSE)
		r.Post("/remove", handlers.RemoveSSE)
	})

	return nil
}
