package core

import (
	"context"
)

// Adapter defines the interface that all database engines must implement.
type Adapter interface {
	// Engine returns the registered engine name (e.g. "sqlite").
	Engine() string

	// Open connects to the database file at path.
	Open(ctx context.Context, cfg AdapterConfig) error

	// Close closes the database connection.
	Close() error

	// ListTables returns the names of all user tables.
	ListTables(ctx context.Context) ([]string, error)

	// TableColumns returns column metadata for a table.
	TableColumns(ctx context.Context, table string) ([]Column, error)

	// Preview runs a bounded SELECT * against a table.
	Preview(ctx context.Context, table string, limit int) (*ResultSet, error)

	// Query executes free-text SQL and collects at most maxRows rows.
	// A maxRows <= 0 collects every row.
	Query(ctx context.Context, sql string, maxRows int) (*ResultSet, error)
}

// AdapterConfig holds configuration for opening a database file.
type AdapterConfig struct {
	Path     string
	ReadOnly bool
	Params   map[string]any
}

// Column represents a column in a database table.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
	Default    string
	Position   int
}
