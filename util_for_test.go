package fernanden

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fernanden/fernanden.go/internal/fakestore"
	"github.com/fernanden/fernanden.go/pkg/connection"
	"github.com/fernanden/fernanden.go/pkg/logger"
	"github.com/fernanden/fernanden.go/pkg/models"
	"github.com/fernanden/fernanden.go/pkg/query"
)

// DBForTest bundles a DB with the fake store behind it and the log output.
type DBForTest struct {
	*DB
	Store *fakestore.Store
	Logs  *bytes.Buffer
}

func newTestDB(t *testing.T, opts ...Option) *DBForTest {
	t.Helper()

	logs := &bytes.Buffer{}
	l, err := logger.New().FromBuffer(logs).WithLevel("debug").Make()
	require.NoError(t, err)

	store := fakestore.New()
	db := New(store, append([]Option{WithLogger(l)}, opts...)...)
	return &DBForTest{DB: db, Store: store, Logs: logs}
}

// Entity builds the catalog entity name and fails the test on error.
func (db *DBForTest) Entity(t *testing.T, name string) *Entity {
	t.Helper()
	e, err := db.DB.Entity(DefaultCatalog().MustGet(name))
	require.NoError(t, err)
	return e
}

// FailOrderingBy makes every select on table that orders by column fail
// as if the column did not exist.
func (db *DBForTest) FailOrderingBy(table, column string) {
	db.Store.Fail(fakestore.Failure{
		Method: "select",
		Table:  table,
		Match: func(c fakestore.Call) bool {
			for _, o := range c.Query.Ordering() {
				if o.Column == column {
					return true
				}
			}
			return false
		},
		Err: connection.NewError(connection.KindSchema, "42703", "column "+table+"."+column+" does not exist", nil),
	})
}

// orderings returns the ordering of every recorded select.
func (db *DBForTest) orderings() []string {
	var out []string
	for _, c := range db.Store.CallsTo("select") {
		out = append(out, c.Query.Ordering().String())
	}
	return out
}

func ids(rows []models.Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["id"]
	}
	return out
}

func orderings(specs ...string) []query.Ordering {
	out := make([]query.Ordering, len(specs))
	for i, s := range specs {
		o, err := query.ParseOrdering(s)
		if err != nil {
			panic(err)
		}
		out[i] = o
	}
	return out
}
