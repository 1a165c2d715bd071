package sqlgen

import (
	"fmt"
	"reflect"
	"strings"

	liteerr "github.com/structlite/structlite/core/errors"
	"github.com/structlite/structlite/core/schema"
)

// FieldList returns all persisted column names in the table's deterministic
// order: the declared columns sorted by name, then the synthetic key column
// when one is in play. SELECT statements name these columns explicitly so
// scan order never depends on the table's physical layout.
func FieldList(s *schema.Schema) []string {
	cols := make([]string, 0, len(s.Fields)+1)
	for _, f := range s.Fields {
		cols = append(cols, f.Name)
	}
	if s.Synthetic() {
		cols = append(cols, schema.RowIDColumn)
	}
	return cols
}

// insertColumns are the columns a row insert provides values for: declared
// fields only. The synthetic key is always store-assigned.
func insertColumns(s *schema.Schema) []string {
	cols := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		cols = append(cols, f.Name)
	}
	return cols
}

func recordValue(s *schema.Schema, rec any) (reflect.Value, error) {
	rv := reflect.ValueOf(rec)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Type() != s.GoType {
		return reflect.Value{}, fmt.Errorf("record is %T, schema describes %s", rec, s.GoType)
	}
	return rv, nil
}

func fieldArgs(s *schema.Schema, rv reflect.Value) []any {
	args := make([]any, 0, len(s.Fields))
	for _, f := range s.Fields {
		args = append(args, BindValue(rv.Field(f.Index).Interface()))
	}
	return args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// KeyCondition builds the WHERE predicate addressing one row: the resolved
// primary key fields zipped positionally with the key tuple, joined with
// AND. The key must have passed ValidateKey.
func KeyCondition(s *schema.Schema, key []any) (string, []any) {
	pk := s.PrimaryKey()
	terms := make([]string, len(pk))
	args := make([]any, len(pk))
	for i, f := range pk {
		terms[i] = f.Name + " = ?"
		args[i] = BindValue(key[i])
	}
	return strings.Join(terms, " AND "), args
}

// Insert builds the single-row INSERT for a record instance.
func Insert(s *schema.Schema, rec any) (string, []any, error) {
	rv, err := recordValue(s, rec)
	if err != nil {
		return "", nil, err
	}
	cols := insertColumns(s)
	stmt := "INSERT INTO " + s.Table + "(" + strings.Join(cols, ", ") + ") VALUES (" + placeholders(len(cols)) + ");"
	return stmt, fieldArgs(s, rv), nil
}

// InsertMany builds one multi-row INSERT covering every record. The
// collection must be non-empty and homogeneous: every element's runtime
// type must equal the schema's record type exactly.
func InsertMany(s *schema.Schema, recs []any) (string, []any, error) {
	return InsertManyNamed(s, s.Table, recs)
}

// InsertManyNamed is InsertMany with the table name overridden; migration
// uses it to fill staging tables.
func InsertManyNamed(s *schema.Schema, table string, recs []any) (string, []any, error) {
	if len(recs) == 0 {
		return "", nil, liteerr.ErrEmptyCollection
	}

	cols := insertColumns(s)
	rowValues := make([]string, len(recs))
	args := make([]any, 0, len(recs)*len(cols))
	for i, rec := range recs {
		rv := reflect.ValueOf(rec)
		for rv.Kind() == reflect.Pointer {
			rv = rv.Elem()
		}
		if !rv.IsValid() || rv.Type() != s.GoType {
			return "", nil, &liteerr.HeterogeneousCollectionError{
				Position: i,
				Want:     s.GoType,
				Got:      reflect.TypeOf(rec),
			}
		}
		rowValues[i] = "(" + placeholders(len(cols)) + ")"
		args = append(args, fieldArgs(s, rv)...)
	}

	stmt := "INSERT INTO " + table + "(" + strings.Join(cols, ", ") + ") VALUES " + strings.Join(rowValues, ", ") + ";"
	return stmt, args, nil
}

// Update builds the UPDATE that synchronizes a row with a record instance:
// every declared field is set, and the row is addressed by the key read off
// the instance before the statement runs.
func Update(s *schema.Schema, rec any) (string, []any, error) {
	rv, err := recordValue(s, rec)
	if err != nil {
		return "", nil, err
	}
	key, err := s.KeyOf(rec)
	if err != nil {
		return "", nil, err
	}

	sets := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		sets[i] = f.Name + " = ?"
	}
	cond, condArgs := KeyCondition(s, key)

	stmt := "UPDATE " + s.Table + " SET " + strings.Join(sets, ", ") + " WHERE " + cond + ";"
	args := append(fieldArgs(s, rv), condArgs...)
	return stmt, args, nil
}

// Delete builds the DELETE addressing one row by key.
func Delete(s *schema.Schema, key []any) (string, []any) {
	cond, args := KeyCondition(s, key)
	return "DELETE FROM " + s.Table + " WHERE " + cond + ";", args
}

// SelectByKey builds the SELECT returning the one row addressed by key,
// with columns in FieldList order.
func SelectByKey(s *schema.Schema, key []any) (string, []any) {
	cond, args := KeyCondition(s, key)
	stmt := "SELECT " + strings.Join(FieldList(s), ", ") + " FROM " + s.Table + " WHERE " + cond + ";"
	return stmt, args
}

// SelectAll builds the full-table SELECT with columns in FieldList order.
func SelectAll(s *schema.Schema) string {
	return "SELECT " + strings.Join(FieldList(s), ", ") + " FROM " + s.Table + ";"
}
