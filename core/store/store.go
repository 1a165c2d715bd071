// Package store binds record types to SQLite tables and provides the
// per-instance persistence operations: create, update, delete, fetch,
// batch insert and cross-store copy.
//
// A binding is explicit composition: Bind returns a Store[T] holding the
// resolved schema and the connection, and the record struct stays plain
// data. Every operation re-derives keys and column lists from the schema's
// static field metadata; no query fragment is cached across calls.
package store

import (
	"database/sql"
	"errors"
	"log/slog"
	"reflect"

	liteerr "github.com/structlite/structlite/core/errors"
	"github.com/structlite/structlite/core/schema"
	"github.com/structlite/structlite/core/sqlgen"
	"github.com/structlite/structlite/core/sqlite"
	"github.com/structlite/structlite/internal/logging"
)

// Store is a record type's binding to one table in one SQLite database.
type Store[T any] struct {
	db     *sql.DB
	owned  bool
	schema *schema.Schema
	log    *slog.Logger
}

// Bind resolves T's schema, opens (or adopts) the located database and
// creates the table if it is absent. Binding the same type to the same
// store twice is idempotent: an existing table is never altered.
func Bind[T any](loc Locator, opts ...Option) (*Store[T], error) {
	o := gather(opts)

	sch, err := SchemaFor[T](opts...)
	if err != nil {
		return nil, err
	}

	db, owned, err := loc.open()
	if err != nil {
		return nil, err
	}

	stmt, err := sqlgen.CreateTable(sch)
	if err == nil {
		_, err = db.Exec(stmt)
	}
	if err != nil {
		if owned {
			db.Close()
		}
		return nil, liteerr.Wrapf(err, "binding table %s", sch.Table)
	}

	log := o.logger
	if log == nil {
		log = logging.GetLogger()
	}
	log.Debug("bound record type", "table", sch.Table, "fingerprint", sch.Fingerprint())

	return &Store[T]{db: db, owned: owned, schema: sch, log: log}, nil
}

// Close releases the connection if the binding owns it. Bindings over a
// caller-supplied handle leave the handle open.
func (s *Store[T]) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

// Schema returns the binding's resolved schema.
func (s *Store[T]) Schema() *schema.Schema {
	return s.schema
}

// DB exposes the underlying connection.
func (s *Store[T]) DB() *sql.DB {
	return s.db
}

func (s *Store[T]) exec(stmt string, args []any) (sql.Result, error) {
	s.log.Debug("exec", "table", s.schema.Table, "stmt", stmt)
	res, err := s.db.Exec(stmt, args...)
	if err != nil {
		if sqlite.IsConstraintViolation(err) {
			return nil, &liteerr.ConstraintViolationError{Table: s.schema.Table, Err: err}
		}
		return nil, err
	}
	return res, nil
}

// Create inserts the record as a new row. When the synthetic key is in
// play, the store-assigned row id is written back into the record's rowid
// field. A uniqueness or primary-key conflict surfaces as
// ConstraintViolationError; all other store errors propagate unmodified.
func (s *Store[T]) Create(rec *T) error {
	stmt, args, err := sqlgen.Insert(s.schema, *rec)
	if err != nil {
		return err
	}
	res, err := s.exec(stmt, args)
	if err != nil {
		return err
	}
	if s.schema.Synthetic() && s.schema.RowID >= 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		reflect.ValueOf(rec).Elem().Field(s.schema.RowID).SetInt(id)
	}
	return nil
}

// Update synchronizes the row addressed by the record's key with the
// record's current field values. Updating a key that was never created
// affects zero rows and is not an error.
func (s *Store[T]) Update(rec *T) error {
	stmt, args, err := sqlgen.Update(s.schema, *rec)
	if err != nil {
		return err
	}
	_, err = s.exec(stmt, args)
	return err
}

// Delete removes the row addressed by the record's key.
func (s *Store[T]) Delete(rec *T) error {
	key, err := s.schema.KeyOf(*rec)
	if err != nil {
		return err
	}
	return s.DeleteKey(key...)
}

// DeleteKey removes the row addressed by an explicit key value, without
// materializing a record.
func (s *Store[T]) DeleteKey(key ...any) error {
	if err := s.schema.ValidateKey(key); err != nil {
		return err
	}
	stmt, args := sqlgen.Delete(s.schema, key)
	_, err := s.exec(stmt, args)
	return err
}

func (s *Store[T]) scanInto(scan func(dest ...any) error) (*T, error) {
	rec := new(T)
	rv := reflect.ValueOf(rec).Elem()

	dests := make([]any, 0, len(s.schema.Fields)+1)
	for _, f := range s.schema.Fields {
		dests = append(dests, rv.Field(f.Index).Addr().Interface())
	}
	if s.schema.Synthetic() {
		if s.schema.RowID >= 0 {
			dests = append(dests, rv.Field(s.schema.RowID).Addr().Interface())
		} else {
			var discard int64
			dests = append(dests, &discard)
		}
	}

	if err := scan(dests...); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get fetches the one record addressed by key. A missing row surfaces as
// ErrNotFound.
func (s *Store[T]) Get(key ...any) (*T, error) {
	if err := s.schema.ValidateKey(key); err != nil {
		return nil, err
	}
	stmt, args := sqlgen.SelectByKey(s.schema, key)
	s.log.Debug("query", "table", s.schema.Table, "stmt", stmt)

	rec, err := s.scanInto(s.db.QueryRow(stmt, args...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, liteerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// All fetches every record in the table.
func (s *Store[T]) All() ([]T, error) {
	stmt := sqlgen.SelectAll(s.schema)
	s.log.Debug("query", "table", s.schema.Table, "stmt", stmt)

	rows, err := s.db.Query(stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []T
	for rows.Next() {
		rec, err := s.scanInto(rows.Scan)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// CreateMany inserts every record in one multi-row statement. The batch is
// atomic: a constraint conflict fails the whole insert and no row is
// applied. The collection must be non-empty.
func (s *Store[T]) CreateMany(recs []T) error {
	stmt, args, err := sqlgen.InsertMany(s.schema, box(recs))
	if err != nil {
		return err
	}
	_, err = s.exec(stmt, args)
	return err
}

// CopyMany batch-inserts the records into another store, creating the
// table there first if absent. Source rows are not touched.
func (s *Store[T]) CopyMany(recs []T, dst Locator) error {
	stmt, args, err := sqlgen.InsertMany(s.schema, box(recs))
	if err != nil {
		return err
	}

	db, owned, err := dst.open()
	if err != nil {
		return err
	}
	if owned {
		defer db.Close()
	}

	create, err := sqlgen.CreateTable(s.schema)
	if err != nil {
		return err
	}
	if _, err := db.Exec(create); err != nil {
		return liteerr.Wrapf(err, "creating table %s in target store", s.schema.Table)
	}

	if _, err := db.Exec(stmt, args...); err != nil {
		if sqlite.IsConstraintViolation(err) {
			return &liteerr.ConstraintViolationError{Table: s.schema.Table, Err: err}
		}
		return err
	}
	return nil
}

// Drop removes the binding's table. Nothing drops a table implicitly;
// this is the explicit operation.
func (s *Store[T]) Drop() error {
	_, err := s.exec(sqlgen.DropTable(s.schema.Table), nil)
	return err
}

func box[T any](recs []T) []any {
	boxed := make([]any, len(recs))
	for i, r := range recs {
		boxed[i] = r
	}
	return boxed
}
