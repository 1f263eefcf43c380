package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryIsImmutable(t *testing.T) {
	base := From("products").Where(Eq("status", "published")).Limit(10)

	ordered := base.WithOrdering(Ordering{Asc("order_index"), Desc("created_at")})
	filtered := base.Where(Eq("category", "mugs"))
	_ = base.Select("id", "name")

	assert.Empty(t, base.Ordering())
	assert.Empty(t, base.Columns())
	assert.Len(t, base.Filters(), 1)
	assert.Len(t, filtered.Filters(), 2)
	assert.Equal(t, Ordering{Asc("order_index"), Desc("created_at")}, ordered.Ordering())

	limit, ok := ordered.LimitValue()
	assert.True(t, ok)
	assert.Equal(t, 10, limit)
	assert.True(t, Equal(base.Filters(), ordered.Filters()))
}

func TestWhereDoesNotShareBackingArray(t *testing.T) {
	base := From("t").Where(Eq("a", 1), Eq("b", 2))
	left := base.Where(Eq("c", 3))
	right := base.Where(Eq("d", 4))

	assert.Equal(t, "c", left.Filters()[2].Column)
	assert.Equal(t, "d", right.Filters()[2].Column)
}

func TestWithOrderingEmpty(t *testing.T) {
	q := From("t").OrderBy(Desc("created_at")).WithOrdering(nil)
	assert.Nil(t, q.Ordering())
	q = q.OrderBy(Asc("a")).WithOrdering(Ordering{})
	assert.Nil(t, q.Ordering())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		wantErr string
	}{
		{name: "valid", query: From("blog_posts").Select("id").Where(Eq("status", "published")).OrderBy(Desc("created_at"))},
		{name: "bad table", query: From("blog posts"), wantErr: `table "blog posts"`},
		{name: "bad column", query: From("t").Select("id;drop"), wantErr: `column "id;drop"`},
		{name: "bad filter column", query: From("t").Where(Eq("a-b", 1)), wantErr: `filter column "a-b"`},
		{name: "bad order column", query: From("t").OrderBy(Asc("1st")), wantErr: `order column "1st"`},
		{name: "is takes bool", query: From("t").Where(Is("featured", "yes")), wantErr: "takes null or a boolean"},
		{name: "empty or", query: From("t").Where(Or()), wantErr: "at least one predicate"},
		{name: "nested or", query: From("t").Where(Or(Or(Eq("a", 1)))), wantErr: "nested or"},
		{name: "negative limit", query: From("t").Limit(-1), wantErr: "limit must not be negative"},
		{name: "unknown op", query: From("t").Where(Filter{Column: "a", Op: "like"}), wantErr: "unknown operator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestString(t *testing.T) {
	q := From("products").
		Select("id", "name").
		Where(Eq("status", "published"), Or(IContains("name", "mug"), IContains("description", "mug"))).
		OrderBy(Asc("order_index")).
		Limit(5)

	assert.Equal(t,
		"products select=id,name status=eq.published or=(name=icontains.mug,description=icontains.mug) order=order_index.asc limit=5",
		q.String())
	assert.Equal(t, "unordered", Ordering(nil).String())
	assert.Equal(t, "tags=in.(a,null)", In("tags", "a", nil).String())
}

func TestParseOrdering(t *testing.T) {
	tests := []struct {
		in      string
		want    Ordering
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "unordered", want: nil},
		{in: "created_at", want: Ordering{Asc("created_at")}},
		{in: "order_index.asc, created_at.DESC", want: Ordering{Asc("order_index"), Desc("created_at")}},
		{in: "created_at.sideways", wantErr: true},
		{in: "1col.asc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOrdering(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	round, err := ParseOrdering(Ordering{Asc("a"), Desc("b")}.String())
	require.NoError(t, err)
	assert.Equal(t, Ordering{Asc("a"), Desc("b")}, round)
}
