package fernanden

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernanden/fernanden.go/pkg/connection"
	"github.com/fernanden/fernanden.go/pkg/connection/sqlstore"
	"github.com/fernanden/fernanden.go/pkg/constants"
	"github.com/fernanden/fernanden.go/pkg/logger"
	"github.com/fernanden/fernanden.go/pkg/models"
)

// A products table from before order_index and featured were added.
const legacyProductsDDL = `CREATE TABLE products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT,
	created_at TEXT
)`

func newSQLiteDB(t *testing.T) (*DB, *sqlstore.Connection, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	logs := &bytes.Buffer{}
	l, err := logger.New().FromBuffer(logs).WithLevel("debug").Make()
	require.NoError(t, err)

	cfg := connection.NewConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "fernanden.db")
	cfg.Logger = l
	db, err := Open(ctx, constants.BackendSQLite, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	conn := db.Connection().(*sqlstore.Connection)
	_, err = conn.DB().ExecContext(ctx, legacyProductsDDL)
	require.NoError(t, err)
	for _, row := range []models.Row{
		{"id": "p1", "name": "Espresso Cup", "status": "published", "created_at": "2024-01-01"},
		{"id": "p2", "name": "Tote Bag", "status": "published", "created_at": "2024-01-03"},
		{"id": "p3", "name": "Draft Mug", "status": "draft", "created_at": "2024-01-02"},
	} {
		_, err := conn.Insert(ctx, "products", row)
		require.NoError(t, err)
	}
	return db, conn, logs
}

func TestSQLiteFallsBackOnMissingOrderColumn(t *testing.T) {
	db, _, logs := newSQLiteDB(t)
	products, err := db.Entity(DefaultCatalog().MustGet("products"))
	require.NoError(t, err)

	rows, err := products.GetPublished(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []any{"p2", "p1"}, ids(rows))
	assert.Contains(t, logs.String(), "read succeeded on fallback ordering")
	assert.Contains(t, logs.String(), "order_index")
}

func TestSQLiteMissingFilterColumn(t *testing.T) {
	db, _, _ := newSQLiteDB(t)
	products, err := db.Entity(DefaultCatalog().MustGet("products"))
	require.NoError(t, err)

	_, err = products.GetFeatured(context.Background())
	var failure *QueryFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 3, failure.Attempts)
	var schema *SchemaError
	require.ErrorAs(t, err, &schema)
	assert.ErrorIs(t, err, constants.ErrSchema)
}

func TestSQLiteToggleMissingColumn(t *testing.T) {
	db, conn, _ := newSQLiteDB(t)
	ctx := context.Background()

	_, err := db.ToggleField(ctx, "products", "p1", "featured")
	var schema *SchemaError
	require.ErrorAs(t, err, &schema)
	assert.Equal(t, "products", schema.Table)

	_, err = conn.DB().ExecContext(ctx, `ALTER TABLE products ADD COLUMN featured BOOLEAN NOT NULL DEFAULT 0`)
	require.NoError(t, err)

	row, err := db.ToggleField(ctx, "products", "p1", "featured", WithCompareAndSwap(1))
	require.NoError(t, err)
	featured, ok := models.AsBool(row["featured"])
	require.True(t, ok)
	assert.True(t, featured)
}
