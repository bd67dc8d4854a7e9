// file: internal/database/errors.go
// version: 1.1.0
// guid: 4f2a8c1d-9b3e-4a7f-8c2d-1e5b9a0f3c6d

package database

import (
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// MigrationFailure reports a schema revision whose statement batch could not
// be applied. The stored schema version is left at its pre-revision value.
type MigrationFailure struct {
	Revision int
	Err      error
}

func (e *MigrationFailure) Error() string {
	return fmt.Sprintf("schema revision %d failed: %v", e.Revision, e.Err)
}

func (e *MigrationFailure) Unwrap() error {
	return e.Err
}

// StoreUnavailable reports that the underlying SQLite database could not be
// opened or reached.
type StoreUnavailable struct {
	Path string
	Err  error
}

func (e *StoreUnavailable) Error() string {
	return fmt.Sprintf("store unavailable at %s: %v", e.Path, e.Err)
}

func (e *StoreUnavailable) Unwrap() error {
	return e.Err
}

// IsConstraintViolation reports whether err is a uniqueness or foreign-key
// violation surfaced by SQLite. Constraint errors are propagated verbatim;
// this helper only classifies them.
func IsConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
