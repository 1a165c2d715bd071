package store

import (
	"log/slog"
	"reflect"

	"github.com/structlite/structlite/core/schema"
)

type options struct {
	types       schema.TypeTable
	constraints map[string]schema.Constraint
	defaults    map[string]any
	logger      *slog.Logger
}

// Option configures a binding.
type Option func(*options)

// WithTypes merges type-table overrides on top of the default table for
// this binding. Unmentioned types keep their default mapping.
func WithTypes(overrides schema.TypeTable) Option {
	return func(o *options) {
		o.types = o.types.Merge(overrides)
	}
}

// WithConstraint attaches a constraint descriptor to a field, keyed by the
// Go field name. It takes precedence over the field's `lite` tag.
func WithConstraint(field string, c schema.Constraint) Option {
	return func(o *options) {
		if o.constraints == nil {
			o.constraints = make(map[string]schema.Constraint)
		}
		o.constraints[field] = c
	}
}

// WithDefault declares a field default, keyed by the Go field name. It
// takes precedence over a tag default.
func WithDefault(field string, v any) Option {
	return func(o *options) {
		if o.defaults == nil {
			o.defaults = make(map[string]any)
		}
		o.defaults[field] = v
	}
}

// WithLogger routes the binding's statement logging to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func gather(opts []Option) *options {
	o := &options{types: make(schema.TypeTable)}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SchemaFor resolves the schema a binding of T would use, without touching
// any database. Migration uses it to describe the target shape.
func SchemaFor[T any](opts ...Option) (*schema.Schema, error) {
	o := gather(opts)
	rt := reflect.TypeOf((*T)(nil)).Elem()
	types := schema.DefaultTypeTable().Merge(o.types)
	return schema.Build(rt, types, o.constraints, o.defaults)
}
