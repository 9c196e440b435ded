// Package core defines the shared language of sqlview.
//
// This package contains:
//   - The engine interface (Adapter) implemented by pkg/adapters/*
//   - Tabular snapshots (ResultSet) and per-column filters
//   - Sentinel errors shared by the catalog, workspace and UI layers
//
// The Golden Rule: pkg/core imports ONLY stdlib and golang.org/x/text.
// All other packages depend on core, not the reverse.
package core
