// Package adapter provides the database engine registry and the shared
// database/sql plumbing used by sqlview's engines.
//
// Concrete engines live in pkg/adapters/ subdirectories and register
// themselves from init(). Import them with a blank identifier:
//
//	import _ "github.com/leapstack-labs/sqlview/pkg/adapters/sqlite"
package adapter

import (
	"github.com/leapstack-labs/sqlview/pkg/core"
)

// Type aliases so engine implementations can stay within this package's vocabulary.
type (
	// Adapter is an alias for core.Adapter.
	Adapter = core.Adapter

	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Column is an alias for core.Column.
	Column = core.Column
)
