//go:build cgo_sqlite

// CGO SQLite driver using mattn/go-sqlite3.
// This is used when the cgo_sqlite build tag is set.
//
// Build with: go build -tags cgo_sqlite
// Requires: CGO_ENABLED=1
//
// The driver registration lives in contrib/sqlite-external to clearly
// separate optional external dependencies from core functionality.
package sqlite

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"

	_ "github.com/structlite/structlite/contrib/sqlite-external" // CGO SQLite driver
)

const (
	driverName    = "sqlite3"
	driverType    = "cgo"
	driverPackage = "github.com/mattn/go-sqlite3 (via contrib/sqlite-external)"
)

// IsConstraintViolation reports whether err is the driver's signal for a
// uniqueness or primary-key constraint failure.
func IsConstraintViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == sqlite3.ErrConstraint
}
