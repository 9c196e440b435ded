package core

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across packages.
var (
	ErrNotDatabase      = errors.New("not a valid database")
	ErrQueryFailed      = errors.New("query execution failed")
	ErrInvalidName      = errors.New("invalid name")
	ErrDatabaseNotFound = errors.New("database not found")
	ErrNoActiveDatabase = errors.New("no active database")
	ErrTableNotFound    = errors.New("table not found")
	ErrTabNotFound      = errors.New("query tab not found")
	ErrTabExists        = errors.New("query tab already exists")
	ErrEmptyQuery       = errors.New("query cannot be empty")
	ErrNotConnected     = errors.New("database connection not established")
)

// NotDatabaseError is returned when an uploaded file cannot be opened by any
// registered engine.
type NotDatabaseError struct {
	Name string
	Err  error
}

func (e *NotDatabaseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%q is not a valid database", e.Name)
	}
	return fmt.Sprintf("%q is not a valid database: %v", e.Name, e.Err)
}

// Unwrap returns the underlying open error.
func (e *NotDatabaseError) Unwrap() error {
	return e.Err
}

// Is reports ErrNotDatabase so callers can use errors.Is.
func (e *NotDatabaseError) Is(target error) bool {
	return target == ErrNotDatabase
}
