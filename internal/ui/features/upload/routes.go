// Package upload accepts database files from the browser.
package upload

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqlview/internal/ui/features/common"
)

// SetupRoutes configures routes for the upload feature.
func SetupRoutes(router chi.Router, deps common.Deps) error {
	handlers := NewHandlers(deps)

	router.Post("/upload", handlers.Upload)

	return nil
}
