package fernanden

import (
	"context"
	"errors"
	"fmt"

	"github.com/fernanden/fernanden.go/pkg/connection"
	"github.com/fernanden/fernanden.go/pkg/connection/postgrest"
	"github.com/fernanden/fernanden.go/pkg/connection/sqlstore"
	"github.com/fernanden/fernanden.go/pkg/constants"
	"github.com/fernanden/fernanden.go/pkg/logger"
	"github.com/fernanden/fernanden.go/pkg/query"
)

// DB is the entry point of the data layer. It holds no mutable state and
// is safe for concurrent use when its connection is.
type DB struct {
	conn        connection.Connection
	logger      logger.Logger
	canFallback func(error) bool
}

type Option func(*DB)

func WithLogger(l logger.Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.logger = l
		}
	}
}

// WithFallbackClassifier replaces the rule deciding which read errors move
// ReadWithFallback on to the next ordering strategy.
func WithFallbackClassifier(fn func(error) bool) Option {
	return func(db *DB) {
		if fn != nil {
			db.canFallback = fn
		}
	}
}

// New wraps an existing connection.
func New(conn connection.Connection, opts ...Option) *DB {
	db := &DB{
		conn:        conn,
		logger:      logger.Nop{},
		canFallback: DefaultFallbackClassifier,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Open connects to the named backend and wraps the connection. cfg.Logger
// is used for both the adapter and the DB.
func Open(ctx context.Context, backend string, cfg *connection.Config, opts ...Option) (*DB, error) {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop{}
	}
	var conn connection.Connection
	switch backend {
	case constants.BackendPostgREST:
		if cfg.BaseURL == "" {
			return nil, constants.ErrNoBaseURL
		}
		if cfg.APIKey == "" {
			return nil, constants.ErrNoAPIKey
		}
		conn = postgrest.New(cfg)
	case constants.BackendPostgres:
		c, err := sqlstore.OpenPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		conn = c
	case constants.BackendSQLite:
		c, err := sqlstore.OpenSQLite(ctx, cfg)
		if err != nil {
			return nil, err
		}
		conn = c
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
	return New(conn, append([]Option{WithLogger(cfg.Logger)}, opts...)...), nil
}

func (db *DB) Connection() connection.Connection {
	return db.conn
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// DefaultFallbackClassifier allows fallback for missing columns or tables
// and for queries the store rejected as malformed. Transport, auth,
// constraint and cancellation errors end the read immediately.
func DefaultFallbackClassifier(err error) bool {
	switch connection.KindOf(err) {
	case connection.KindSchema, connection.KindQuery:
		return true
	}
	return false
}

func isInputError(err error) bool {
	return errors.Is(err, query.ErrInvalidIdentifier) ||
		errors.Is(err, query.ErrUnsupportedOperator) ||
		errors.Is(err, query.ErrUnfiltered) ||
		errors.Is(err, query.ErrEmptyChange)
}
