//go:build !cgo_sqlite

// Pure Go SQLite driver using modernc.org/sqlite.
// This is the default; no build tag and no CGO required.
package sqlite

import (
	"errors"

	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const (
	driverName    = "sqlite"
	driverType    = "purego"
	driverPackage = "modernc.org/sqlite"
)

// IsConstraintViolation reports whether err is the driver's signal for a
// uniqueness or primary-key constraint failure.
func IsConstraintViolation(err error) bool {
	var se *sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3lib.SQLITE_CONSTRAINT
}
