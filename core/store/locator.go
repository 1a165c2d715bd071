package store

import (
	"database/sql"

	"github.com/structlite/structlite/core/sqlite"
)

// Locator names a store: either a database file path or an already-open
// handle shared with the caller.
type Locator interface {
	open() (db *sql.DB, owned bool, err error)
}

type pathLocator string

func (p pathLocator) open() (*sql.DB, bool, error) {
	db, err := sqlite.Open(string(p))
	if err != nil {
		return nil, false, err
	}
	return db, true, nil
}

type handleLocator struct {
	db *sql.DB
}

func (h handleLocator) open() (*sql.DB, bool, error) {
	return h.db, false, nil
}

// Path locates a store by database file path. Handles opened through a
// Path are owned by the binding and released by Close.
func Path(p string) Locator {
	return pathLocator(p)
}

// Handle locates a store by an existing connection. The caller keeps
// ownership; Close on the binding is a no-op.
func Handle(db *sql.DB) Locator {
	return handleLocator{db: db}
}

// Open resolves a locator to a connection. The owned result reports
// whether the caller must close the handle when done.
func Open(loc Locator) (db *sql.DB, owned bool, err error) {
	return loc.open()
}
