package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrInvalidIdentifier   = errors.New("invalid identifier")
	ErrUnsupportedOperator = errors.New("operator not supported by dialect")
	ErrUnfiltered          = errors.New("update and delete require at least one filter")
	ErrEmptyChange         = errors.New("no columns to write")
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name can be used as a table or column name.
func ValidIdentifier(name string) bool {
	return identRe.MatchString(name)
}

func checkIdent(kind, name string) error {
	if !ValidIdentifier(name) {
		return fmt.Errorf("%w: %s %q", ErrInvalidIdentifier, kind, name)
	}
	return nil
}

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

func (o Order) String() string {
	if o.Desc {
		return o.Column + ".desc"
	}
	return o.Column + ".asc"
}

// Ordering is one fallback strategy: a list of ORDER BY terms applied in
// sequence. A nil or empty Ordering means unordered.
type Ordering []Order

func (o Ordering) String() string {
	if len(o) == 0 {
		return "unordered"
	}
	parts := make([]string, len(o))
	for i, ord := range o {
		parts[i] = ord.String()
	}
	return strings.Join(parts, ",")
}

// Query is an immutable read description.
type Query struct {
	table    string
	columns  []string
	filters  []Filter
	ordering Ordering
	limit    int
	hasLimit bool
}

// From starts a query on table selecting every column.
func From(table string) Query {
	return Query{table: table}
}

func (q Query) Table() string { return q.table }

// Columns returns the selected columns; empty means all.
func (q Query) Columns() []string { return append([]string(nil), q.columns...) }

func (q Query) Filters() []Filter { return append([]Filter(nil), q.filters...) }

func (q Query) Ordering() Ordering { return append(Ordering(nil), q.ordering...) }

// LimitValue returns the row limit and whether one was set.
func (q Query) LimitValue() (int, bool) { return q.limit, q.hasLimit }

// Select replaces the selected columns.
func (q Query) Select(columns ...string) Query {
	q.columns = append([]string(nil), columns...)
	return q
}

// Where adds filter predicates. All predicates are AND-ed.
func (q Query) Where(filters ...Filter) Query {
	next := make([]Filter, 0, len(q.filters)+len(filters))
	next = append(next, q.filters...)
	q.filters = append(next, filters...)
	return q
}

// OrderBy appends terms to the current ordering.
func (q Query) OrderBy(orders ...Order) Query {
	next := make(Ordering, 0, len(q.ordering)+len(orders))
	next = append(next, q.ordering...)
	q.ordering = append(next, orders...)
	return q
}

// WithOrdering replaces the ordering clause and keeps everything else.
func (q Query) WithOrdering(ordering Ordering) Query {
	if len(ordering) == 0 {
		q.ordering = nil
		return q
	}
	q.ordering = append(Ordering(nil), ordering...)
	return q
}

func (q Query) Limit(n int) Query {
	q.limit = n
	q.hasLimit = true
	return q
}

func (q Query) WithoutLimit() Query {
	q.limit = 0
	q.hasLimit = false
	return q
}

// Validate checks identifiers and operator arguments.
func (q Query) Validate() error {
	if err := checkIdent("table", q.table); err != nil {
		return err
	}
	for _, c := range q.columns {
		if err := checkIdent("column", c); err != nil {
			return err
		}
	}
	for _, f := range q.filters {
		if err := f.validate(); err != nil {
			return err
		}
	}
	for _, o := range q.ordering {
		if err := checkIdent("order column", o.Column); err != nil {
			return err
		}
	}
	if q.hasLimit && q.limit < 0 {
		return fmt.Errorf("limit must not be negative: %d", q.limit)
	}
	return nil
}

// String renders the query in a compact, log friendly form.
func (q Query) String() string {
	var b strings.Builder
	b.WriteString(q.table)
	if len(q.columns) > 0 {
		b.WriteString(" select=" + strings.Join(q.columns, ","))
	}
	for _, f := range q.filters {
		b.WriteString(" " + f.String())
	}
	if len(q.ordering) > 0 {
		b.WriteString(" order=" + q.ordering.String())
	}
	if q.hasLimit {
		fmt.Fprintf(&b, " limit=%d", q.limit)
	}
	return b.String()
}

// ParseOrdering parses the form produced by Ordering.String, for example
// "order_index.asc,created_at.desc". An empty string or "unordered"
// yields a nil Ordering. A bare column name sorts ascending.
func ParseOrdering(s string) (Ordering, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "unordered" {
		return nil, nil
	}
	var out Ordering
	for _, term := range strings.Split(s, ",") {
		term = strings.TrimSpace(term)
		col, dir, found := strings.Cut(term, ".")
		o := Order{Column: col}
		if found {
			switch strings.ToLower(dir) {
			case "asc":
			case "desc":
				o.Desc = true
			default:
				return nil, fmt.Errorf("invalid direction %q in ordering %q", dir, s)
			}
		}
		if err := checkIdent("order column", col); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
