// Package sqlgen generates SQLite statements from resolved schemas. All DML
// values travel as bound parameters; literal text is produced only for
// DEFAULT clauses in DDL, where SQLite cannot bind.
package sqlgen

import (
	"encoding/hex"
	"reflect"
	"strconv"
	"strings"

	liteerr "github.com/structlite/structlite/core/errors"
)

// EncodeLiteral renders a value as a quoted SQL literal for DDL use. Strings
// are single-quoted with embedded quotes doubled, byte slices become X''
// hex blobs, nil becomes the NULL keyword and numbers use their canonical
// text form.
func EncodeLiteral(v any) (string, error) {
	if v == nil {
		return "NULL", nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return "'" + strings.ReplaceAll(rv.String(), "'", "''") + "'", nil
	case reflect.Bool:
		if rv.Bool() {
			return "1", nil
		}
		return "0", nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return "X'" + hex.EncodeToString(rv.Bytes()) + "'", nil
		}
	}
	return "", &liteerr.UnmappedTypeError{Type: reflect.TypeOf(v)}
}

// BindValue normalizes a field value for driver binding: pointers are
// dereferenced (nil pointers bind as NULL) and named primitive types are
// reduced to the driver's base types.
func BindValue(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes()
		}
	}
	return rv.Interface()
}
