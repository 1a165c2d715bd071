package sqlgen

import (
	"reflect"
	"strings"

	"github.com/structlite/structlite/core/schema"
)

// CreateTable emits the create-if-absent statement for a schema. Explicit
// primary key fields produce a trailing PRIMARY KEY clause; the synthetic
// key instead appends an auto-incrementing integer key column and no
// trailing clause. Re-executing the statement never alters an existing
// table.
func CreateTable(s *schema.Schema) (string, error) {
	return CreateTableNamed(s, s.Table)
}

// CreateTableNamed is CreateTable with the table name overridden; migration
// uses it to build staging tables under a temporary name.
func CreateTableNamed(s *schema.Schema, table string) (string, error) {
	defs := make([]string, 0, len(s.Fields)+1)
	for _, f := range s.Fields {
		def := f.Name + " " + string(f.Column.Storage)
		if f.Column.Attrs != "" {
			def += " " + f.Column.Attrs
		}
		clause, err := defaultClause(s, f)
		if err != nil {
			return "", err
		}
		def += clause
		defs = append(defs, def)
	}

	if s.Synthetic() {
		defs = append(defs, schema.RowIDColumn+" INTEGER PRIMARY KEY AUTOINCREMENT")
	} else {
		var names []string
		for _, k := range s.PrimaryKey() {
			names = append(names, k.Name)
		}
		defs = append(defs, "PRIMARY KEY ("+strings.Join(names, ", ")+")")
	}

	return "CREATE TABLE IF NOT EXISTS " + table + " (" + strings.Join(defs, ", ") + ");", nil
}

// defaultClause renders " DEFAULT <lit>" for a declared default. The clause
// is emitted only when the default's runtime type itself resolves in the
// schema's type table; other defaults stay declaration-only (migration
// still applies them when reconstructing rows).
func defaultClause(s *schema.Schema, f schema.Field) (string, error) {
	if !f.HasDefault {
		return "", nil
	}
	if f.Default != nil {
		if _, ok := s.Types[reflect.TypeOf(f.Default)]; !ok {
			return "", nil
		}
	}
	lit, err := EncodeLiteral(f.Default)
	if err != nil {
		return "", err
	}
	return " DEFAULT " + lit, nil
}

// DropTable emits the explicit drop statement. Nothing in the core drops a
// table implicitly.
func DropTable(table string) string {
	return "DROP TABLE IF EXISTS " + table + ";"
}
