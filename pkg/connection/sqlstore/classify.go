package sqlstore

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/fernanden/fernanden.go/pkg/connection"
	"github.com/fernanden/fernanden.go/pkg/query"
)

// classify wraps a driver error into a *connection.StoreError. Errors the
// caller produced (invalid identifiers, context cancellation) are returned
// unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, query.ErrInvalidIdentifier) || errors.Is(err, query.ErrUnsupportedOperator) ||
		errors.Is(err, query.ErrUnfiltered) || errors.Is(err, query.ErrEmptyChange) {
		return err
	}
	var se *connection.StoreError
	if errors.As(err, &se) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		se := connection.NewError(pgKind(pgErr.Code), pgErr.Code, pgErr.Message, err)
		se.Hint = pgErr.Hint
		return se
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return connection.NewError(sqliteKind(liteErr), "", liteErr.Error(), err)
	}

	if errors.Is(err, driver.ErrBadConn) || pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return connection.NewError(connection.KindTransport, "", "", err)
	}
	return connection.NewError(connection.KindUnknown, "", "", err)
}

// pgKind maps a SQLSTATE code to a connection.Kind.
func pgKind(code string) connection.Kind {
	switch code {
	case "42703", "42P01", "42883", "3F000":
		return connection.KindSchema
	case "42501":
		return connection.KindAuth
	case "57014":
		return connection.KindTransport
	}
	switch {
	case strings.HasPrefix(code, "23"):
		return connection.KindConstraint
	case strings.HasPrefix(code, "28"):
		return connection.KindAuth
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "53"), strings.HasPrefix(code, "57"):
		return connection.KindTransport
	case strings.HasPrefix(code, "42"), strings.HasPrefix(code, "22"):
		return connection.KindQuery
	}
	return connection.KindUnknown
}

// sqliteKind maps a SQLite result code. SQLite reports missing columns and
// tables as a generic SQLITE_ERROR, so those two cases are recognised by
// their fixed message prefix.
func sqliteKind(e *sqlite.Error) connection.Kind {
	code := e.Code() & 0xff
	switch code {
	case sqlite3.SQLITE_ERROR:
		msg := e.Error()
		if strings.Contains(msg, "no such column:") || strings.Contains(msg, "no such table:") {
			return connection.KindSchema
		}
		return connection.KindQuery
	case sqlite3.SQLITE_CONSTRAINT:
		return connection.KindConstraint
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_IOERR, sqlite3.SQLITE_CANTOPEN:
		return connection.KindTransport
	case sqlite3.SQLITE_AUTH, sqlite3.SQLITE_PERM, sqlite3.SQLITE_READONLY:
		return connection.KindAuth
	case sqlite3.SQLITE_MISMATCH, sqlite3.SQLITE_RANGE:
		return connection.KindQuery
	}
	return connection.KindUnknown
}
