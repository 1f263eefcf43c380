package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fernanden/fernanden.go/pkg/models"
)

// Dialect selects placeholder style and operator spelling.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "dialect(" + strconv.Itoa(int(d)) + ")"
	}
}

type sqlBuilder struct {
	dialect Dialect
	args    []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	if b.dialect == Postgres {
		return "$" + strconv.Itoa(len(b.args))
	}
	return "?"
}

// quote renders an identifier. SQLite reads a double-quoted name that
// matches no column as a string literal, so it gets brackets instead.
func (d Dialect) quote(name string) string {
	if d == SQLite {
		return "[" + name + "]"
	}
	return `"` + name + `"`
}

// escapeLike escapes LIKE wildcards so text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (b *sqlBuilder) predicate(f Filter) (string, error) {
	if f.Op == OpOr {
		parts := make([]string, 0, len(f.Any))
		for _, sub := range f.Any {
			p, err := b.predicate(sub)
			if err != nil {
				return "", err
			}
			parts = append(parts, p)
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil
	}

	col := b.dialect.quote(f.Column)
	switch f.Op {
	case OpEq:
		if f.Value == nil {
			return col + " IS NULL", nil
		}
		return col + " = " + b.arg(f.Value), nil
	case OpNeq:
		if f.Value == nil {
			return col + " IS NOT NULL", nil
		}
		return col + " <> " + b.arg(f.Value), nil
	case OpGt:
		return col + " > " + b.arg(f.Value), nil
	case OpGte:
		return col + " >= " + b.arg(f.Value), nil
	case OpLt:
		return col + " < " + b.arg(f.Value), nil
	case OpLte:
		return col + " <= " + b.arg(f.Value), nil
	case OpIs, OpIsNot:
		kw := " IS "
		if f.Op == OpIsNot {
			kw = " IS NOT "
		}
		switch v := f.Value.(type) {
		case nil:
			return col + kw + "NULL", nil
		case bool:
			if v {
				return col + kw + "TRUE", nil
			}
			return col + kw + "FALSE", nil
		}
	case OpIn:
		values, _ := f.Value.([]any)
		if len(values) == 0 {
			return "1 = 0", nil
		}
		ph := make([]string, len(values))
		for i, v := range values {
			ph[i] = b.arg(v)
		}
		return col + " IN (" + strings.Join(ph, ", ") + ")", nil
	case OpIContains:
		text, _ := f.Value.(string)
		pattern := "%" + escapeLike(text) + "%"
		if b.dialect == Postgres {
			return col + " ILIKE " + b.arg(pattern) + ` ESCAPE '\'`, nil
		}
		return "LOWER(" + col + ") LIKE LOWER(" + b.arg(pattern) + `) ESCAPE '\'`, nil
	case OpContains:
		if b.dialect != Postgres {
			return "", fmt.Errorf("%w: %s on %s", ErrUnsupportedOperator, f.Op, b.dialect)
		}
		return col + " @> " + b.arg(f.Value), nil
	}
	return "", fmt.Errorf("%w: %s on %s", ErrUnsupportedOperator, f.Op, b.dialect)
}

func (b *sqlBuilder) where(filters []Filter) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		p, err := b.predicate(f)
		if err != nil {
			return "", err
		}
		parts = append(parts, p)
	}
	return " WHERE " + strings.Join(parts, " AND "), nil
}

// ToSQL renders q as a SELECT statement.
func ToSQL(q Query, d Dialect) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	b := &sqlBuilder{dialect: d}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(q.columns) == 0 {
		sb.WriteString("*")
	} else {
		cols := make([]string, len(q.columns))
		for i, c := range q.columns {
			cols[i] = d.quote(c)
		}
		sb.WriteString(strings.Join(cols, ", "))
	}
	sb.WriteString(" FROM " + d.quote(q.table))

	where, err := b.where(q.filters)
	if err != nil {
		return "", nil, err
	}
	sb.WriteString(where)

	if len(q.ordering) > 0 {
		terms := make([]string, len(q.ordering))
		for i, o := range q.ordering {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			terms[i] = d.quote(o.Column) + " " + dir
		}
		sb.WriteString(" ORDER BY " + strings.Join(terms, ", "))
	}
	if q.hasLimit {
		sb.WriteString(" LIMIT " + strconv.Itoa(q.limit))
	}
	return sb.String(), b.args, nil
}

// InsertSQL renders an INSERT of row into table returning the stored row.
func InsertSQL(table string, row models.Row, d Dialect) (string, []any, error) {
	if err := checkIdent("table", table); err != nil {
		return "", nil, err
	}
	if len(row) == 0 {
		return "INSERT INTO " + d.quote(table) + " DEFAULT VALUES RETURNING *", nil, nil
	}
	cols := row.Columns()
	b := &sqlBuilder{dialect: d}
	quoted := make([]string, len(cols))
	ph := make([]string, len(cols))
	for i, c := range cols {
		if err := checkIdent("column", c); err != nil {
			return "", nil, err
		}
		quoted[i] = d.quote(c)
		ph[i] = b.arg(row[c])
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		d.quote(table), strings.Join(quoted, ", "), strings.Join(ph, ", "))
	return sql, b.args, nil
}

// UpdateSQL renders an UPDATE of the rows matching q's filters. Ordering,
// limit and selected columns are ignored.
func UpdateSQL(q Query, set models.Row, d Dialect) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	if len(q.filters) == 0 {
		return "", nil, ErrUnfiltered
	}
	if len(set) == 0 {
		return "", nil, ErrEmptyChange
	}
	cols := make([]string, 0, len(set))
	for c := range set {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	b := &sqlBuilder{dialect: d}
	assignments := make([]string, len(cols))
	for i, c := range cols {
		if err := checkIdent("column", c); err != nil {
			return "", nil, err
		}
		assignments[i] = d.quote(c) + " = " + b.arg(set[c])
	}
	where, err := b.where(q.filters)
	if err != nil {
		return "", nil, err
	}
	sql := "UPDATE " + d.quote(q.table) + " SET " + strings.Join(assignments, ", ") + where + " RETURNING *"
	return sql, b.args, nil
}

// DeleteSQL renders a DELETE of the rows matching q's filters.
func DeleteSQL(q Query, d Dialect) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	if len(q.filters) == 0 {
		return "", nil, ErrUnfiltered
	}
	b := &sqlBuilder{dialect: d}
	where, err := b.where(q.filters)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + d.quote(q.table) + where, b.args, nil
}
