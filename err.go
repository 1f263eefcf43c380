package fernanden

import (
	"fmt"

	"github.com/fernanden/fernanden.go/pkg/connection"
	"github.com/fernanden/fernanden.go/pkg/constants"
)

// SchemaError reports a column or table that does not exist on this
// deployment.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error on %s: %v", e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// NotFoundError reports a single-row lookup that matched nothing.
type NotFoundError struct {
	Table  string
	Column string
	Value  any
}

func (e *NotFoundError) Error() string {
	if e.Column == "" {
		return e.Table + ": no matching row"
	}
	return fmt.Sprintf("%s: no row with %s = %v", e.Table, e.Column, e.Value)
}

func (e *NotFoundError) Is(target error) bool {
	return target == constants.ErrNoRow
}

// QueryFailure is returned when no ordering strategy succeeded. Unwrap
// yields the error of the first, most preferred attempt.
type QueryFailure struct {
	Table    string
	Attempts int
	First    error
	// Last is the error that ended the sequence; it equals First when only
	// one attempt ran.
	Last error
}

func (e *QueryFailure) Error() string {
	if e.Attempts == 1 {
		return fmt.Sprintf("query on %s failed: %v", e.Table, e.First)
	}
	return fmt.Sprintf("query on %s failed after %d attempts: %v", e.Table, e.Attempts, e.First)
}

func (e *QueryFailure) Unwrap() error { return e.First }

// ValidationError reports input rejected before any network call.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ConflictError is returned by a compare-and-swap toggle that kept losing
// to concurrent writers.
type ConflictError struct {
	Table    string
	Field    string
	ID       any
	Attempts int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s.%s on %v changed concurrently %d times", e.Table, e.Field, e.ID, e.Attempts)
}

// classify maps an adapter error into the package's error types. Errors
// that carry no schema or not-found meaning are returned as they are.
func classify(table string, err error) error {
	if err == nil {
		return nil
	}
	switch connection.KindOf(err) {
	case connection.KindSchema:
		return &SchemaError{Table: table, Err: err}
	case connection.KindNotFound:
		return &NotFoundError{Table: table}
	}
	if isInputError(err) {
		return &ValidationError{Reason: err.Error(), Err: err}
	}
	return err
}
