package constants

import "time"

const (
	// MaxSearchLength bounds the text used in substring search predicates.
	MaxSearchLength = 100

	DefaultHTTPTimeout = 10 * time.Second
	DefaultToggleRetry = 3
)

var (
	HTTPScheme       = "http"
	HTTPSecureScheme = "https"
)

// Backend names accepted by the back-office configuration.
const (
	BackendPostgREST = "postgrest"
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
)
