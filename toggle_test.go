package fernanden

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernanden/fernanden.go/internal/fakestore"
	"github.com/fernanden/fernanden.go/pkg/constants"
	"github.com/fernanden/fernanden.go/pkg/models"
	"github.com/fernanden/fernanden.go/pkg/query"
)

func TestToggleFieldTwiceRestoresValue(t *testing.T) {
	ctx := context.Background()
	for _, initial := range []any{true, false} {
		db := newTestDB(t)
		db.Store.Seed("products", models.Row{"id": "p1", "featured": initial})

		row, err := db.ToggleField(ctx, "products", "p1", "featured")
		require.NoError(t, err)
		assert.Equal(t, !initial.(bool), row["featured"])

		row, err = db.ToggleField(ctx, "products", "p1", "featured")
		require.NoError(t, err)
		assert.Equal(t, initial, row["featured"])
		assert.Equal(t, initial, db.Store.Rows("products")[0]["featured"])
	}
}

func TestToggleFieldNullIsFalse(t *testing.T) {
	db := newTestDB(t)
	db.Store.Seed("testimonials", models.Row{"id": 7, "featured": nil})

	row, err := db.ToggleField(context.Background(), "testimonials", 7, "featured")
	require.NoError(t, err)
	assert.Equal(t, true, row["featured"])
}

func TestToggleFieldIntegerBooleans(t *testing.T) {
	db := newTestDB(t)
	db.Store.Seed("services", models.Row{"id": 1, "featured": int64(1)})

	row, err := db.ToggleField(context.Background(), "services", 1, "featured")
	require.NoError(t, err)
	assert.Equal(t, false, row["featured"])
}

func TestToggleFieldNotFound(t *testing.T) {
	db := newTestDB(t)
	db.Store.Seed("products", models.Row{"id": "p1", "featured": true})

	_, err := db.ToggleField(context.Background(), "products", "missing", "featured")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.Value)
	assert.ErrorIs(t, err, constants.ErrNoRow)
	assert.Empty(t, db.Store.CallsTo("update"))
}

func TestToggleFieldMissingColumn(t *testing.T) {
	db := newTestDB(t)
	db.Store.Seed("products", models.Row{"id": "p1"})
	db.Store.DropColumn("products", "featured")

	_, err := db.ToggleField(context.Background(), "products", "p1", "featured")
	var schema *SchemaError
	require.ErrorAs(t, err, &schema)
	assert.ErrorIs(t, err, constants.ErrSchema)
	assert.Len(t, db.Store.Calls(), 1)
}

func TestToggleFieldRejectsNonBoolean(t *testing.T) {
	db := newTestDB(t)
	db.Store.Seed("products", models.Row{"id": "p1", "name": "Cup"})

	_, err := db.ToggleField(context.Background(), "products", "p1", "name")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = db.ToggleField(context.Background(), "products", "p1", "name; --")
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, query.ErrInvalidIdentifier)
}

func TestToggleFieldRejectsEmptyID(t *testing.T) {
	db := newTestDB(t)
	for _, id := range []any{nil, ""} {
		_, err := db.ToggleField(context.Background(), "products", id, "featured")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "id", verr.Field)
	}
	assert.Empty(t, db.Store.Calls())
}

func TestToggleFieldCustomIDColumn(t *testing.T) {
	db := newTestDB(t)
	db.Store.Seed("site_settings", models.Row{"key": "maintenance", "enabled": false})

	row, err := db.ToggleField(context.Background(), "site_settings", "maintenance", "enabled", WithIDColumn("key"))
	require.NoError(t, err)
	assert.Equal(t, true, row["enabled"])
}

// flipOnUpdate simulates another writer flipping the field right before
// each of the first n toggle updates reaches the store.
func flipOnUpdate(db *DBForTest, table, field string, n int) {
	busy := false
	db.Store.Hook = func(c fakestore.Call) {
		if busy || n == 0 || c.Method != "update" {
			return
		}
		busy = true
		defer func() { busy = false }()
		n--
		current, _ := models.AsBool(db.Store.Rows(table)[0][field])
		_, _ = db.Store.Update(context.Background(),
			query.From(table).Where(query.Eq("id", db.Store.Rows(table)[0]["id"])),
			models.Row{field: !current})
	}
}

func TestToggleFieldLastWriteWins(t *testing.T) {
	db := newTestDB(t)
	db.Store.Seed("products", models.Row{"id": "p1", "featured": false})
	flipOnUpdate(db, "products", "featured", 1)

	row, err := db.ToggleField(context.Background(), "products", "p1", "featured")
	require.NoError(t, err)
	// Both writers set true; one toggle is lost.
	assert.Equal(t, true, row["featured"])
}

func TestToggleFieldCompareAndSwapRetries(t *testing.T) {
	db := newTestDB(t)
	db.Store.Seed("products", models.Row{"id": "p1", "featured": false})
	flipOnUpdate(db, "products", "featured", 1)

	row, err := db.ToggleField(context.Background(), "products", "p1", "featured", WithCompareAndSwap(2))
	require.NoError(t, err)
	assert.Equal(t, false, row["featured"])
	assert.Len(t, db.Store.CallsTo("select"), 2)
	assert.Contains(t, db.Logs.String(), "toggle lost a race")
}

func TestToggleFieldCompareAndSwapConflict(t *testing.T) {
	db := newTestDB(t)
	db.Store.Seed("products", models.Row{"id": "p1", "featured": nil})
	flipOnUpdate(db, "products", "featured", 10)

	_, err := db.ToggleField(context.Background(), "products", "p1", "featured", WithCompareAndSwap(2))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 3, conflict.Attempts)
	assert.Equal(t, "featured", conflict.Field)
}
