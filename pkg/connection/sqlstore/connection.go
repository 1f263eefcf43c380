package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/fernanden/fernanden.go/pkg/connection"
	"github.com/fernanden/fernanden.go/pkg/constants"
	"github.com/fernanden/fernanden.go/pkg/logger"
	"github.com/fernanden/fernanden.go/pkg/models"
	"github.com/fernanden/fernanden.go/pkg/query"
)

// Connection runs queries through database/sql against Postgres (pgx) or
// SQLite (modernc.org/sqlite).
type Connection struct {
	db      *sql.DB
	dialect query.Dialect
	logger  logger.Logger
}

var _ connection.Connection = (*Connection)(nil)

// New wraps an already opened database.
func New(db *sql.DB, dialect query.Dialect, log logger.Logger) *Connection {
	if log == nil {
		log = logger.Nop{}
	}
	return &Connection{db: db, dialect: dialect, logger: log}
}

// OpenPostgres connects with the pgx driver. cfg.Schema, when set, becomes
// the search_path.
func OpenPostgres(ctx context.Context, cfg *connection.Config) (*Connection, error) {
	if cfg.DSN == "" {
		return nil, constants.ErrNoDSN
	}
	pgCfg, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dsn: %w", err)
	}
	if cfg.Schema != "" {
		if !query.ValidIdentifier(cfg.Schema) {
			return nil, fmt.Errorf("%w: schema %q", query.ErrInvalidIdentifier, cfg.Schema)
		}
		pgCfg.RuntimeParams["search_path"] = cfg.Schema
	}
	if cfg.Timeout > 0 {
		pgCfg.ConnectTimeout = cfg.Timeout
	}
	db := stdlib.OpenDB(*pgCfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", classify(err))
	}
	return New(db, query.Postgres, cfg.Logger), nil
}

// OpenSQLite opens the database file at cfg.DSN, creating it if needed.
func OpenSQLite(ctx context.Context, cfg *connection.Config) (*Connection, error) {
	if cfg.DSN == "" {
		return nil, constants.ErrNoDSN
	}
	dsn := cfg.DSN
	pragmas := "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if !strings.Contains(dsn, "?") {
		dsn = dsn + "?" + pragmas
	} else {
		dsn = dsn + "&" + pragmas
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", classify(err))
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	return New(db, query.SQLite, cfg.Logger), nil
}

func (c *Connection) DB() *sql.DB { return c.db }

func (c *Connection) Dialect() query.Dialect { return c.dialect }

func (c *Connection) Close() error {
	return c.db.Close()
}

func (c *Connection) Select(ctx context.Context, q query.Query) ([]models.Row, error) {
	stmt, args, err := query.ToSQL(q, c.dialect)
	if err != nil {
		return nil, err
	}
	return c.queryRows(ctx, stmt, args)
}

func (c *Connection) Insert(ctx context.Context, table string, row models.Row) (models.Row, error) {
	stmt, args, err := query.InsertSQL(table, row, c.dialect)
	if err != nil {
		return nil, err
	}
	rows, err := c.queryRows(ctx, stmt, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, connection.NewError(connection.KindUnknown, "", "insert returned no row", nil)
	}
	return rows[0], nil
}

func (c *Connection) Update(ctx context.Context, q query.Query, set models.Row) ([]models.Row, error) {
	stmt, args, err := query.UpdateSQL(q, set, c.dialect)
	if err != nil {
		return nil, err
	}
	return c.queryRows(ctx, stmt, args)
}

func (c *Connection) Delete(ctx context.Context, q query.Query) (int, error) {
	stmt, args, err := query.DeleteSQL(q, c.dialect)
	if err != nil {
		return 0, err
	}
	res, err := c.db.ExecContext(ctx, stmt, c.normalizeArgs(args)...)
	if err != nil {
		c.logger.Debug("sql exec failed", "sql", stmt, "error", err)
		return 0, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify(err)
	}
	return int(n), nil
}

func (c *Connection) queryRows(ctx context.Context, stmt string, args []any) ([]models.Row, error) {
	c.logger.Debug("sql query", "sql", stmt, "args", len(args))
	rows, err := c.db.QueryContext(ctx, stmt, c.normalizeArgs(args)...)
	if err != nil {
		c.logger.Debug("sql query failed", "sql", stmt, "error", err)
		return nil, classify(err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// normalizeArgs stores structured values as JSON text on SQLite, which has
// no native array or object types.
func (c *Connection) normalizeArgs(args []any) []any {
	if c.dialect != query.SQLite {
		return args
	}
	out := make([]any, len(args))
	for i, a := range args {
		switch a.(type) {
		case map[string]any, []any, []string, models.JSONMap:
			raw, err := json.Marshal(a)
			if err != nil {
				out[i] = a
				continue
			}
			out[i] = string(raw)
		default:
			out[i] = a
		}
	}
	return out
}

func scanRows(rows *sql.Rows) ([]models.Row, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	out := []models.Row{}
	for rows.Next() {
		values := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(models.Row, len(types))
		for i, ct := range types {
			row[ct.Name()] = convert(ct.DatabaseTypeName(), values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// convert turns driver values into the plain types Row documents.
func convert(dbType string, v any) any {
	dbType = strings.ToUpper(dbType)
	switch x := v.(type) {
	case []byte:
		if dbType == "JSON" || dbType == "JSONB" {
			var decoded any
			if err := json.Unmarshal(x, &decoded); err == nil {
				return decoded
			}
		}
		return string(x)
	case string:
		if dbType == "JSON" || dbType == "JSONB" {
			var decoded any
			if err := json.Unmarshal([]byte(x), &decoded); err == nil {
				return decoded
			}
		}
		return x
	case int64:
		if dbType == "BOOLEAN" || dbType == "BOOL" {
			return x != 0
		}
		return x
	case time.Time:
		return x.UTC()
	}
	return v
}
