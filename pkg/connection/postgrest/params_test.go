package postgrest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernanden/fernanden.go/pkg/query"
)

func TestSelectParams(t *testing.T) {
	tests := []struct {
		name  string
		query query.Query
		want  string
	}{
		{
			name:  "select all",
			query: query.From("products"),
			want:  "select=*",
		},
		{
			name: "filters ordering and limit",
			query: query.From("products").
				Select("id", "name").
				Where(query.Eq("status", "published"), query.Is("featured", true)).
				OrderBy(query.Asc("order_index"), query.Desc("created_at")).
				Limit(10),
			want: "featured=is.true&limit=10&order=order_index.asc,created_at.desc&select=id,name&status=eq.published",
		},
		{
			name:  "null and not null",
			query: query.From("t").Where(query.Eq("deleted_at", nil), query.Neq("published_at", nil), query.IsNot("featured", false)),
			want:  "deleted_at=is.null&featured=not.is.false&published_at=not.is.null&select=*",
		},
		{
			name:  "in with quoting",
			query: query.From("t").Where(query.In("brand", "she", "a,b")),
			want:  `brand=in.(she,%22a,b%22)&select=*`,
		},
		{
			name:  "search across columns",
			query: query.From("blog_posts").Where(query.Or(query.IContains("title", "red mug"), query.IContains("excerpt", "50%"))),
			want:  `or=(title.ilike.%22*red%20mug*%22,excerpt.ilike.*50%5C%25*)&select=*`,
		},
		{
			name:  "top level value is not quoted",
			query: query.From("t").Where(query.Eq("name", "a,b")),
			want:  "name=eq.a,b&select=*",
		},
		{
			name:  "array containment",
			query: query.From("blog_posts").Where(query.Contains("tags", []string{"coffee", "latte art"})),
			want:  `select=*&tags=cs.%7Bcoffee,%22latte%20art%22%7D`,
		},
		{
			name:  "json containment",
			query: query.From("site_settings").Where(query.Contains("value", map[string]any{"k": "v"})),
			want:  `select=*&value=cs.%7B%22k%22:%22v%22%7D`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := selectParams(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, encode(values))
		})
	}
}

func TestWriteParams(t *testing.T) {
	values, err := writeParams(query.From("products").Where(query.Eq("id", "p1")).OrderBy(query.Asc("x")).Limit(1))
	require.NoError(t, err)
	assert.Equal(t, "id=eq.p1", encode(values))

	_, err = writeParams(query.From("products"))
	require.ErrorIs(t, err, query.ErrUnfiltered)

	_, err = writeParams(query.From("bad table").Where(query.Eq("id", 1)))
	require.ErrorIs(t, err, query.ErrInvalidIdentifier)
}

func TestSubstringOperand(t *testing.T) {
	got, err := operand(query.IContains("name", "50% off"), false)
	require.NoError(t, err)
	assert.Equal(t, `ilike.*50\% off*`, got)

	got, err = operand(query.IContains("name", "a*b"), false)
	require.NoError(t, err)
	assert.Equal(t, `imatch.a\*b`, got)

	got, err = operand(query.IContains("name", "2*3 (x)"), true)
	require.NoError(t, err)
	assert.Equal(t, `imatch."2\\*3 \\(x\\)"`, got)
}

func TestQuoteValue(t *testing.T) {
	assert.Equal(t, "plain", quoteValue("plain"))
	assert.Equal(t, `""`, quoteValue(""))
	assert.Equal(t, `"a \"quoted\" \\ value"`, quoteValue(`a "quoted" \ value`))
}
