// Package schema derives relational schemas from Go struct types: storage
// type resolution, per-field constraint descriptors, primary key resolution
// and key validation.
package schema

import (
	"reflect"

	liteerr "github.com/structlite/structlite/core/errors"
)

// StorageType is the SQLite storage class a declared field maps to.
type StorageType string

const (
	Null    StorageType = "NULL"
	Integer StorageType = "INTEGER"
	Real    StorageType = "REAL"
	Text    StorageType = "TEXT"
	Blob    StorageType = "BLOB"
)

// Column is the resolved storage type and attribute string of one column.
type Column struct {
	Storage StorageType
	Attrs   string
}

// TypeTable maps declared Go types to column definitions. Tables are plain
// values: callers merge overrides on top of DefaultTypeTable at bind time
// and the merged table is threaded through every schema call. There is no
// shared global table.
type TypeTable map[reflect.Type]Column

// DefaultTypeTable returns a fresh table seeded with the primitive
// mappings. Integer kinds and bool store as INTEGER, floats as REAL,
// string as TEXT and []byte as BLOB. Anything else is unmapped until the
// caller supplies an override.
func DefaultTypeTable() TypeTable {
	tt := make(TypeTable)
	for _, v := range []any{
		int(0), int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0),
		false,
	} {
		tt[reflect.TypeOf(v)] = Column{Storage: Integer}
	}
	tt[reflect.TypeOf(float32(0))] = Column{Storage: Real}
	tt[reflect.TypeOf(float64(0))] = Column{Storage: Real}
	tt[reflect.TypeOf("")] = Column{Storage: Text}
	tt[reflect.TypeOf([]byte(nil))] = Column{Storage: Blob}
	return tt
}

// Merge returns a new table with over laid on top of t. Neither input is
// modified.
func (t TypeTable) Merge(over TypeTable) TypeTable {
	merged := make(TypeTable, len(t)+len(over))
	for k, v := range t {
		merged[k] = v
	}
	for k, v := range over {
		merged[k] = v
	}
	return merged
}

// Resolve looks up the column definition for a declared type. The lookup is
// exact, except that one level of pointer is unwrapped: a *T field resolves
// like T and its column is simply nullable. A miss is an UnmappedTypeError;
// there is no coercion or kind-based fallback.
func (t TypeTable) Resolve(rt reflect.Type) (Column, error) {
	if c, ok := t[rt]; ok {
		return c, nil
	}
	if rt.Kind() == reflect.Pointer {
		if c, ok := t[rt.Elem()]; ok {
			return c, nil
		}
	}
	return Column{}, &liteerr.UnmappedTypeError{Type: rt}
}

// PrimitiveStorage classifies a concrete runtime value into one of the five
// storage classes. Values outside these classes are never valid as literal
// key components.
func PrimitiveStorage(v any) (StorageType, bool) {
	if v == nil {
		return Null, true
	}
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, bool:
		return Integer, true
	case float32, float64:
		return Real, true
	case string:
		return Text, true
	case []byte:
		return Blob, true
	}
	return "", false
}
