package schema

import (
	"fmt"
	"reflect"

	liteerr "github.com/structlite/structlite/core/errors"
)

func syntheticKey() Field {
	return Field{
		Name:   RowIDColumn,
		Index:  -1,
		Type:   reflect.TypeOf(int64(0)),
		Column: Column{Storage: Integer},
	}
}

// Synthetic reports whether the record type's key is the synthetic rowid
// column rather than explicitly marked fields.
func (s *Schema) Synthetic() bool {
	for _, f := range s.Fields {
		if f.Primary {
			return false
		}
	}
	return true
}

// PrimaryKey returns the ordered primary key fields: the fields marked
// primary in declaration order, or the single synthetic key field when none
// are marked. The result is derived from the field metadata on every call,
// never cached.
func (s *Schema) PrimaryKey() []Field {
	var keys []Field
	for _, f := range s.Fields {
		if f.Primary {
			keys = append(keys, f)
		}
	}
	if len(keys) == 0 {
		return []Field{syntheticKey()}
	}
	// Declaration order, not column order.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1].Index > keys[j].Index; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// ValidateKey checks a key tuple against the resolved primary key: the
// arity must match and every component must be a concrete primitive value.
func (s *Schema) ValidateKey(key []any) error {
	pk := s.PrimaryKey()
	if len(key) != len(pk) {
		return &liteerr.InvalidKeyShapeError{Table: s.Table, Want: len(pk), Got: len(key)}
	}
	for i, v := range key {
		if _, ok := PrimitiveStorage(v); !ok {
			return &liteerr.InvalidKeyTypeError{Position: i, Type: reflect.TypeOf(v)}
		}
	}
	return nil
}

// KeyOf reads the key tuple off a live record instance. For synthetic-key
// types the value comes from the rowid carrier field, which is only
// populated after a successful create; a type without one cannot address
// its own rows and KeyOf returns ErrMissingRowID.
func (s *Schema) KeyOf(rec any) ([]any, error) {
	rv := reflect.ValueOf(rec)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Type() != s.GoType {
		return nil, fmt.Errorf("record is %s, schema describes %s", rv.Type(), s.GoType)
	}

	if s.Synthetic() {
		if s.RowID < 0 {
			return nil, liteerr.ErrMissingRowID
		}
		return []any{rv.Field(s.RowID).Int()}, nil
	}

	pk := s.PrimaryKey()
	key := make([]any, len(pk))
	for i, f := range pk {
		key[i] = rv.Field(f.Index).Interface()
	}
	return key, nil
}
