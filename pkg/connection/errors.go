package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/fernanden/fernanden.go/pkg/constants"
)

// Kind classifies store failures.
type Kind int

const (
	KindUnknown Kind = iota
	// KindSchema means the query named a column or table the store does not have.
	KindSchema
	// KindQuery means the store rejected the query as malformed.
	KindQuery
	// KindNotFound means a single-row request matched nothing.
	KindNotFound
	// KindTransport covers network failures, timeouts and unexpected responses.
	KindTransport
	KindAuth
	KindConstraint
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindQuery:
		return "query"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindConstraint:
		return "constraint"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindSchema:
		return constants.ErrSchema
	case KindQuery:
		return constants.ErrQuery
	case KindNotFound:
		return constants.ErrNoRow
	case KindTransport:
		return constants.ErrTransport
	case KindAuth:
		return constants.ErrAuth
	case KindConstraint:
		return constants.ErrConstraint
	}
	return nil
}

// StoreError is a classified failure reported by an adapter.
type StoreError struct {
	Kind Kind
	// Code is the store's own error code (SQLSTATE, PGRST code, ...).
	Code    string
	Message string
	Hint    string
	Cause   error
}

func (e *StoreError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s error (%s): %s", e.Kind, e.Code, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, msg)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel error for the error's kind, so
// errors.Is(err, constants.ErrSchema) works across layers.
func (e *StoreError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// NewError builds a StoreError.
func NewError(kind Kind, code, message string, cause error) *StoreError {
	return &StoreError{Kind: kind, Code: code, Message: message, Cause: cause}
}

// KindOf returns the kind of the first StoreError in err's chain.
// Context cancellation and deadline errors are reported as KindTransport.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindTransport
	}
	return KindUnknown
}

// IsKind reports whether err carries a StoreError of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
