package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernanden/fernanden.go/pkg/query"
)

var errNoRowCount = errors.New("row count unavailable")

// countlessDriver accepts every statement but cannot report affected rows.
type countlessDriver struct{}

func (countlessDriver) Open(string) (driver.Conn, error) { return countlessConn{}, nil }

type countlessConnector struct{}

func (countlessConnector) Connect(context.Context) (driver.Conn, error) { return countlessConn{}, nil }
func (countlessConnector) Driver() driver.Driver                        { return countlessDriver{} }

type countlessConn struct{}

func (countlessConn) Prepare(string) (driver.Stmt, error) { return countlessStmt{}, nil }
func (countlessConn) Close() error                        { return nil }
func (countlessConn) Begin() (driver.Tx, error)           { return nil, errors.New("no transactions") }

type countlessStmt struct{}

func (countlessStmt) Close() error                               { return nil }
func (countlessStmt) NumInput() int                              { return -1 }
func (countlessStmt) Exec([]driver.Value) (driver.Result, error) { return countlessResult{}, nil }
func (countlessStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errors.New("no rows")
}

type countlessResult struct{}

func (countlessResult) LastInsertId() (int64, error) { return 0, errNoRowCount }
func (countlessResult) RowsAffected() (int64, error) { return 0, errNoRowCount }

func TestDeleteReportsRowCountFailure(t *testing.T) {
	db := sql.OpenDB(countlessConnector{})
	t.Cleanup(func() { _ = db.Close() })
	conn := New(db, query.SQLite, nil)

	n, err := conn.Delete(context.Background(), query.From("products").Where(query.Eq("id", "p1")))
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoRowCount)
	assert.Zero(t, n)
}
