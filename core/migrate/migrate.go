// Package migrate re-creates a record type's table under a new schema and
// copies existing rows across a column-rename mapping.
package migrate

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"

	liteerr "github.com/structlite/structlite/core/errors"
	"github.com/structlite/structlite/core/schema"
	"github.com/structlite/structlite/core/sqlgen"
	"github.com/structlite/structlite/core/sqlite"
	"github.com/structlite/structlite/core/store"
	"github.com/structlite/structlite/internal/logging"
)

type mapping struct {
	field schema.Field
	src   string // column in the old table
}

// Migrate rebuilds oldTable's data under T's schema. renames maps old
// column names to new ones; a renamed column's values carry over under the
// new name, and every field of T absent from the mapping takes its declared
// default (or the zero value). Rename targets must be declared fields of T.
//
// When T's derived table name differs from oldTable, the new table is
// created alongside and the old table is left in place; DropTable is the
// explicit cleanup. When the names are equal, rows are staged into a
// uniquely named table which then replaces the old one.
func Migrate[T any](loc store.Locator, renames map[string]string, oldTable string, opts ...store.Option) error {
	sch, err := store.SchemaFor[T](opts...)
	if err != nil {
		return err
	}

	srcOf := make(map[string]string, len(renames))
	for oldCol, newCol := range renames {
		if _, ok := sch.FieldByName(newCol); !ok {
			return &liteerr.UnknownColumnError{Column: newCol, Table: sch.Table}
		}
		srcOf[newCol] = oldCol
	}

	db, owned, err := store.Open(loc)
	if err != nil {
		return err
	}
	if owned {
		defer db.Close()
	}

	oldCols, err := sqlite.TableColumns(db, oldTable)
	if err != nil {
		return err
	}
	if len(oldCols) == 0 {
		return fmt.Errorf("table %s does not exist", oldTable)
	}
	present := make(map[string]bool, len(oldCols))
	for _, c := range oldCols {
		if c != schema.RowIDColumn {
			present[c] = true
		}
	}
	for _, oldCol := range srcOf {
		if !present[oldCol] {
			return &liteerr.UnknownColumnError{Column: oldCol, Table: oldTable}
		}
	}

	var mapped []mapping
	for _, f := range sch.Fields {
		if src, ok := srcOf[f.Name]; ok {
			mapped = append(mapped, mapping{field: f, src: src})
		}
	}

	recs, err := readRows(db, sch, oldTable, mapped)
	if err != nil {
		return err
	}

	target := sch.Table
	staged := target == oldTable
	if staged {
		target = sch.Table + "_mig_" + uuid.NewString()[:8]
	}

	create, err := sqlgen.CreateTableNamed(sch, target)
	if err != nil {
		return err
	}
	if _, err := db.Exec(create); err != nil {
		return liteerr.Wrapf(err, "creating table %s", target)
	}

	if len(recs) > 0 {
		stmt, args, err := sqlgen.InsertManyNamed(sch, target, recs)
		if err != nil {
			return err
		}
		if _, err := db.Exec(stmt, args...); err != nil {
			if sqlite.IsConstraintViolation(err) {
				return &liteerr.ConstraintViolationError{Table: target, Err: err}
			}
			return err
		}
	}

	if staged {
		if _, err := db.Exec(sqlgen.DropTable(oldTable)); err != nil {
			return liteerr.Wrapf(err, "dropping old table "+oldTable)
		}
		if _, err := db.Exec("ALTER TABLE " + target + " RENAME TO " + oldTable + ";"); err != nil {
			return liteerr.Wrapf(err, "renaming staging table "+target)
		}
	}

	logging.Debug("migrated table",
		"table", sch.Table, "from", oldTable, "rows", len(recs), "staged", staged)
	return nil
}

// readRows reconstructs one record per old row: mapped columns are scanned
// straight into their target fields, everything else keeps its declared
// default.
func readRows(db *sql.DB, sch *schema.Schema, oldTable string, mapped []mapping) ([]any, error) {
	if len(mapped) == 0 {
		var n int
		if err := db.QueryRow("SELECT count(*) FROM " + oldTable + ";").Scan(&n); err != nil {
			return nil, err
		}
		recs := make([]any, n)
		for i := range recs {
			recs[i] = newRecord(sch).Interface()
		}
		return recs, nil
	}

	cols := make([]string, len(mapped))
	for i, m := range mapped {
		cols[i] = m.src
	}
	rows, err := db.Query("SELECT " + strings.Join(cols, ", ") + " FROM " + oldTable + ";")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []any
	for rows.Next() {
		rv := newRecord(sch)
		dests := make([]any, len(mapped))
		for i, m := range mapped {
			dests[i] = rv.Field(m.field.Index).Addr().Interface()
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, err
		}
		recs = append(recs, rv.Interface())
	}
	return recs, rows.Err()
}

func newRecord(sch *schema.Schema) reflect.Value {
	rv := reflect.New(sch.GoType).Elem()
	for _, f := range sch.Fields {
		if f.HasDefault && f.Default != nil {
			rv.Field(f.Index).Set(reflect.ValueOf(f.Default).Convert(f.Type))
		}
	}
	return rv
}

// DropTable removes a table by name. Migration never drops the old table
// on its own; this is the explicit operation.
func DropTable(loc store.Locator, table string) error {
	db, owned, err := store.Open(loc)
	if err != nil {
		return err
	}
	if owned {
		defer db.Close()
	}
	_, err = db.Exec(sqlgen.DropTable(table))
	return err
}
