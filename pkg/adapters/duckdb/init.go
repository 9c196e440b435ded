// Package duckdb provides the DuckDB engine for sqlview.
//
// This file registers the engine with the adapter registry.
// Import this package with a blank identifier to register it:
//
//	import _ "github.com/leapstack-labs/sqlview/pkg/adapters/duckdb"
package duckdb

import (
	"log/slog"

	"github.com/leapstack-labs/sqlview/pkg/adapter"
)

// Priority is the detection priority of the DuckDB engine. SQLite is tried first.
const Priority = 20

func init() {
	adapter.Register(EngineName, Priority, func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
