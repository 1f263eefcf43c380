package constants

import "errors"

// Errors
var (
	ErrSchema     = errors.New("column or table does not exist")
	ErrQuery      = errors.New("error occurred processing the query")
	ErrNoRow      = errors.New("error no row")
	ErrTransport  = errors.New("store unreachable")
	ErrAuth       = errors.New("store rejected credentials")
	ErrConstraint = errors.New("constraint violation")
)

var (
	ErrTimeout            = errors.New("timeout")
	ErrNoBaseURL          = errors.New("base url not set")
	ErrNoAPIKey           = errors.New("api key not set")
	ErrNoDSN              = errors.New("dsn not set")
	ErrReadOnly           = errors.New("operation denied: read-only mode")
	ErrMethodNotAvailable = errors.New("method not available on this connection")
)
