// Package errors provides standardized error types and helpers for the structlite codebase.
package errors

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for common cases
var (
	// ErrUnmappedType indicates a declared type with no storage mapping
	ErrUnmappedType = errors.New("unmapped type")
	// ErrInvalidKey indicates a malformed key tuple
	ErrInvalidKey = errors.New("invalid key")
	// ErrConstraint indicates the store rejected a write due to a
	// uniqueness or primary-key conflict
	ErrConstraint = errors.New("constraint violation")
	// ErrBadCollection indicates a batch precondition failure
	ErrBadCollection = errors.New("bad collection")
	// ErrEmptyCollection indicates a batch operation received no records
	ErrEmptyCollection = errors.New("collection is empty")
	// ErrUnknownColumn indicates a column name that does not exist on the
	// table or record type it was addressed to
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNotFound indicates no row exists for the given key
	ErrNotFound = errors.New("record not found")
	// ErrMissingRowID indicates a synthetic-key record type with no rowid
	// field to carry the generated identifier
	ErrMissingRowID = errors.New("record type has no rowid field")
)

// UnmappedTypeError reports a declared type absent from the active type table
type UnmappedTypeError struct {
	Type reflect.Type // Declared field or value type that failed resolution
}

func (e *UnmappedTypeError) Error() string {
	return fmt.Sprintf("type %s has no storage mapping in the active type table", e.Type)
}

func (e *UnmappedTypeError) Unwrap() error {
	return ErrUnmappedType
}

// InvalidKeyShapeError reports a key tuple whose arity does not match the
// record type's primary key
type InvalidKeyShapeError struct {
	Table string // Table the key addresses
	Want  int    // Arity of the resolved primary key
	Got   int    // Arity of the supplied key tuple
}

func (e *InvalidKeyShapeError) Error() string {
	return fmt.Sprintf("table %s has a key %d fields long, a key of %d fields was given", e.Table, e.Want, e.Got)
}

func (e *InvalidKeyShapeError) Unwrap() error {
	return ErrInvalidKey
}

// InvalidKeyTypeError reports a key component whose runtime type is not one
// of the primitive storage types
type InvalidKeyTypeError struct {
	Position int
	Type     reflect.Type
}

func (e *InvalidKeyTypeError) Error() string {
	return fmt.Sprintf("key must contain only primitive values, found %s at position %d", e.Type, e.Position)
}

func (e *InvalidKeyTypeError) Unwrap() error {
	return ErrInvalidKey
}

// ConstraintViolationError wraps the driver error raised when a write
// violates a uniqueness or primary-key constraint
type ConstraintViolationError struct {
	Table string
	Err   error // Underlying driver error
}

func (e *ConstraintViolationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("constraint failed on table %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("constraint failed on table %s", e.Table)
}

func (e *ConstraintViolationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConstraint, e.Err}
	}
	return []error{ErrConstraint}
}

// HeterogeneousCollectionError reports a batch element whose runtime type
// differs from the batch's record type
type HeterogeneousCollectionError struct {
	Position int
	Want     reflect.Type
	Got      reflect.Type
}

func (e *HeterogeneousCollectionError) Error() string {
	return fmt.Sprintf("collection is not homogeneous: element %d is %s, want %s", e.Position, e.Got, e.Want)
}

func (e *HeterogeneousCollectionError) Unwrap() error {
	return ErrBadCollection
}

// UnknownColumnError reports a column absent from a record type or table
type UnknownColumnError struct {
	Column string
	Table  string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("column %s does not exist on table %s", e.Column, e.Table)
}

func (e *UnknownColumnError) Unwrap() error {
	return ErrUnknownColumn
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
