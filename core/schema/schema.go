package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// RowIDColumn is the reserved name of the synthetic key column added when a
// record type declares no primary field.
const RowIDColumn = "__id__"

// Constraint is the per-field constraint descriptor. It replaces type-level
// annotation: constraints are declared in the `lite` struct tag or passed
// explicitly at bind time.
type Constraint struct {
	Primary bool
	Unique  bool
}

// Field describes one persisted column derived from a struct field.
type Field struct {
	Name       string       // column name
	Index      int          // struct field index, also the declaration order
	Type       reflect.Type // declared Go type
	Column     Column       // resolved storage type and attributes
	Primary    bool
	Unique     bool
	HasDefault bool
	Default    any // declared default, runtime type as given
}

// Schema is the resolved shape of one record type: its table name, column
// set in deterministic order, and the merged type table it was built with.
// A Schema is immutable after Build.
type Schema struct {
	Table  string
	GoType reflect.Type
	Fields []Field // declared fields, sorted by column name
	RowID  int     // struct index of the rowid carrier field, -1 if none
	Types  TypeTable
}

type tagInfo struct {
	skip       bool
	rowid      bool
	primary    bool
	unique     bool
	name       string
	def        string
	hasDefault bool
}

func parseTag(tag string) tagInfo {
	var info tagInfo
	if tag == "" {
		return info
	}
	if tag == "-" {
		info.skip = true
		return info
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "primary":
			info.primary = true
		case part == "unique":
			info.unique = true
		case part == "rowid":
			info.rowid = true
		case strings.HasPrefix(part, "default="):
			info.def = strings.TrimPrefix(part, "default=")
			info.hasDefault = true
		case strings.HasPrefix(part, "name="):
			info.name = strings.TrimPrefix(part, "name=")
		}
	}
	return info
}

// parseDefault converts a tag default literal to the field's Go type, so
// the declared default carries the field's own runtime type.
func parseDefault(text string, t reflect.Type) (any, error) {
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(text).Convert(t).Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a valid %s: %w", text, t, err)
		}
		return reflect.ValueOf(n).Convert(t).Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a valid %s: %w", text, t, err)
		}
		return reflect.ValueOf(n).Convert(t).Interface(), nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a valid %s: %w", text, t, err)
		}
		return reflect.ValueOf(f).Convert(t).Interface(), nil
	case reflect.Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a valid bool: %w", text, err)
		}
		return b, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return reflect.ValueOf([]byte(text)).Convert(t).Interface(), nil
		}
	}
	return nil, fmt.Errorf("cannot declare a tag default for type %s", t)
}

// Build derives the schema for a record type. constraints and defaults are
// keyed by the Go field name and take precedence over the `lite` tag; both
// may be nil. The table name is the lower-cased type name. Every declared
// field must resolve through types or Build fails with UnmappedTypeError.
func Build(rt reflect.Type, types TypeTable, constraints map[string]Constraint, defaults map[string]any) (*Schema, error) {
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record type must be a struct, got %s", rt.Kind())
	}
	if rt.Name() == "" {
		return nil, fmt.Errorf("record type must be a named struct")
	}

	s := &Schema{
		Table:  strings.ToLower(rt.Name()),
		GoType: rt,
		RowID:  -1,
		Types:  types,
	}

	hasPrimary := false
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := parseTag(sf.Tag.Get("lite"))
		if tag.skip {
			continue
		}
		if tag.rowid {
			if sf.Type.Kind() != reflect.Int64 {
				return nil, fmt.Errorf("rowid field %s.%s must be int64, got %s", rt.Name(), sf.Name, sf.Type)
			}
			if s.RowID >= 0 {
				return nil, fmt.Errorf("record type %s declares more than one rowid field", rt.Name())
			}
			s.RowID = i
			continue
		}

		f := Field{
			Name:    strings.ToLower(sf.Name),
			Index:   i,
			Type:    sf.Type,
			Primary: tag.primary,
			Unique:  tag.unique,
		}
		if tag.name != "" {
			f.Name = tag.name
		}
		if c, ok := constraints[sf.Name]; ok {
			f.Primary = c.Primary
			f.Unique = c.Unique
		}

		col, err := types.Resolve(sf.Type)
		if err != nil {
			return nil, err
		}
		if f.Unique {
			if col.Attrs != "" {
				col.Attrs += " "
			}
			col.Attrs += "NOT NULL UNIQUE"
		}
		f.Column = col

		if v, ok := defaults[sf.Name]; ok {
			if v != nil && !reflect.TypeOf(v).ConvertibleTo(sf.Type) {
				return nil, fmt.Errorf("default for field %s.%s is %T, not convertible to %s", rt.Name(), sf.Name, v, sf.Type)
			}
			f.Default = v
			f.HasDefault = true
		} else if tag.hasDefault {
			v, err := parseDefault(tag.def, sf.Type)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", rt.Name(), sf.Name, err)
			}
			f.Default = v
			f.HasDefault = true
		}

		if f.Primary {
			hasPrimary = true
		}
		s.Fields = append(s.Fields, f)
	}

	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("record type %s has no persisted fields", rt.Name())
	}
	if s.RowID >= 0 && hasPrimary {
		return nil, fmt.Errorf("record type %s combines a rowid field with primary key fields", rt.Name())
	}

	sort.Slice(s.Fields, func(i, j int) bool { return s.Fields[i].Name < s.Fields[j].Name })
	return s, nil
}

// FieldByName returns the declared field with the given column name.
func (s *Schema) FieldByName(column string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == column {
			return f, true
		}
	}
	return Field{}, false
}
