package fakestore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernanden/fernanden.go/pkg/connection"
	"github.com/fernanden/fernanden.go/pkg/constants"
	"github.com/fernanden/fernanden.go/pkg/models"
	"github.com/fernanden/fernanden.go/pkg/query"
)

func seeded() *Store {
	s := New()
	s.Seed("products",
		models.Row{"id": 1, "name": "Cup", "order_index": nil, "tags": []any{"mug", "gift"}},
		models.Row{"id": 2, "name": "Bag", "order_index": 5, "tags": []any{"bag"}},
		models.Row{"id": 3, "name": "Mug", "order_index": 1, "featured": true},
	)
	return s
}

func TestSelectOrderingAndNulls(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	rows, err := s.Select(ctx, query.From("products").OrderBy(query.Asc("order_index")))
	require.NoError(t, err)
	assert.Equal(t, []any{3, 2, 1}, column(rows, "id"))

	rows, err = s.Select(ctx, query.From("products").OrderBy(query.Desc("order_index")))
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, column(rows, "id"))

	rows, err = s.Select(ctx, query.From("products").Select("name").Limit(2))
	require.NoError(t, err)
	assert.Equal(t, []models.Row{{"name": "Cup"}, {"name": "Bag"}}, rows)
}

func TestSelectFilters(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	tests := []struct {
		name   string
		filter query.Filter
		want   []any
	}{
		{name: "eq", filter: query.Eq("name", "Bag"), want: []any{2}},
		{name: "eq null", filter: query.Eq("order_index", nil), want: []any{1}},
		{name: "neq skips null", filter: query.Neq("order_index", 5), want: []any{3}},
		{name: "gt", filter: query.Gt("order_index", 1), want: []any{2}},
		{name: "is true", filter: query.Is("featured", true), want: []any{3}},
		{name: "is not true", filter: query.IsNot("featured", true), want: []any{1, 2}},
		{name: "in", filter: query.In("id", 1, int64(3)), want: []any{1, 3}},
		{name: "icontains", filter: query.IContains("name", "UG"), want: []any{3}},
		{name: "contains", filter: query.Contains("tags", []string{"gift"}), want: []any{1}},
		{name: "or", filter: query.Or(query.Eq("id", 1), query.IContains("name", "bag")), want: []any{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := s.Select(ctx, query.From("products").Where(tt.filter))
			require.NoError(t, err)
			assert.Equal(t, tt.want, column(rows, "id"))
		})
	}
}

func TestMissingColumnAndTable(t *testing.T) {
	s := seeded()
	s.DropColumn("products", "order_index")
	ctx := context.Background()

	_, err := s.Select(ctx, query.From("products").OrderBy(query.Asc("order_index")))
	require.ErrorIs(t, err, constants.ErrSchema)

	rows, err := s.Select(ctx, query.From("products"))
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.NotContains(t, rows[1], "order_index")

	_, err = s.Select(ctx, query.From("podcasts"))
	assert.Equal(t, connection.KindSchema, connection.KindOf(err))
}

func TestFailureInjection(t *testing.T) {
	s := seeded()
	boom := errors.New("boom")
	s.Fail(Failure{Method: "select", Table: "products", Err: boom, Times: 1})

	_, err := s.Select(context.Background(), query.From("products"))
	require.ErrorIs(t, err, boom)

	_, err = s.Select(context.Background(), query.From("products"))
	require.NoError(t, err)
	assert.Len(t, s.CallsTo("select"), 2)

	s.ResetCalls()
	assert.Empty(t, s.Calls())
}

func TestWrites(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	_, err := s.Insert(ctx, "products", models.Row{"id": 4, "name": "Lid"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "products", models.Row{"id": 4, "name": "Dup"})
	require.ErrorIs(t, err, constants.ErrConstraint)

	updated, err := s.Update(ctx, query.From("products").Where(query.Eq("id", 4)), models.Row{"featured": true})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, true, updated[0]["featured"])

	n, err := s.Delete(ctx, query.From("products").Where(query.In("id", 1, 4)))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, s.Rows("products"), 2)

	_, err = s.Delete(ctx, query.From("products"))
	assert.ErrorIs(t, err, query.ErrUnfiltered)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := seeded().Select(ctx, query.From("products"))
	assert.ErrorIs(t, err, context.Canceled)
}

func column(rows []models.Row, name string) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r[name]
	}
	return out
}
