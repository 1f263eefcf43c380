package connection

import (
	"context"
	"time"

	"github.com/fernanden/fernanden.go/pkg/constants"
	"github.com/fernanden/fernanden.go/pkg/logger"
	"github.com/fernanden/fernanden.go/pkg/models"
	"github.com/fernanden/fernanden.go/pkg/query"
)

// Connection is the query adapter every store implementation provides.
//
// Implementations must report failures as *StoreError values (or wrap
// them) so callers can tell a missing column apart from a transport
// failure. A read that matches nothing is a success with zero rows, never
// an error.
type Connection interface {
	// Select executes q and returns the matching rows in store order
	// unless q is ordered.
	Select(ctx context.Context, q query.Query) ([]models.Row, error)
	// Insert stores row in table and returns the row as stored, including
	// defaults filled in by the store.
	Insert(ctx context.Context, table string, row models.Row) (models.Row, error)
	// Update applies set to every row matching q's filters and returns the
	// updated rows. Zero rows is not an error.
	Update(ctx context.Context, q query.Query, set models.Row) ([]models.Row, error)
	// Delete removes every row matching q's filters and reports how many
	// rows were removed, when the store can tell.
	Delete(ctx context.Context, q query.Query) (int, error)
	Close() error
}

// Config carries the settings shared by the adapters. Each adapter reads
// the fields that apply to it.
type Config struct {
	// BaseURL is the REST endpoint root, e.g. https://xyz.supabase.co.
	BaseURL string
	APIKey  string
	// Schema selects a non-default Postgres schema.
	Schema string
	// DSN is a database/sql data source name.
	DSN     string
	Timeout time.Duration
	Logger  logger.Logger
}

// NewConfig returns a Config with the default timeout and a no-op logger.
func NewConfig() *Config {
	return &Config{
		Timeout: constants.DefaultHTTPTimeout,
		Logger:  logger.Nop{},
	}
}
