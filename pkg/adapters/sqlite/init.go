// Package sqlite provides the SQLite engine for sqlview.
//
// This file registers the engine with the adapter registry.
// Import this package with a blank identifier to register it:
//
//	import _ "github.com/leapstack-labs/sqlview/pkg/adapters/sqlite"
package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/sqlview/pkg/adapter"
)

// Priority is the detection priority of the SQLite engine. It is tried first.
const Priority = 10

func init() {
	adapter.Register(EngineName, Priority, func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
