package models

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// Row is one record returned by a store: column name to value.
// Values are strings, numbers, booleans, nil, time.Time or nested JSON
// (map[string]any / []any), depending on the adapter.
type Row map[string]any

// Get returns the value stored under column and whether it was present.
func (r Row) Get(column string) (any, bool) {
	v, ok := r[column]
	return v, ok
}

// String returns the column formatted as a string, or "" when absent or null.
func (r Row) String(column string) string {
	v, ok := r[column]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}

// Bool returns the column as a boolean. Null and absent columns are false;
// ok is false when the value is neither a boolean nor null.
func (r Row) Bool(column string) (value bool, ok bool) {
	return AsBool(r[column])
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Columns returns the row's column names in sorted order.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// AsBool interprets a stored value as a boolean flag. SQLite stores
// booleans as integers, so 0 and 1 are accepted as well.
func AsBool(v any) (value bool, ok bool) {
	switch b := v.(type) {
	case nil:
		return false, true
	case bool:
		return b, true
	case int64:
		if b == 0 || b == 1 {
			return b == 1, true
		}
	case int:
		if b == 0 || b == 1 {
			return b == 1, true
		}
	case float64:
		if b == 0 || b == 1 {
			return b == 1, true
		}
	}
	return false, false
}

// Decode converts rows into typed values through their JSON representation.
func Decode[T any](rows []Row) ([]T, error) {
	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rows: %w", err)
	}
	out := make([]T, 0, len(rows))
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	return out, nil
}

// DecodeOne converts a single row into a typed value.
func DecodeOne[T any](row Row) (*T, error) {
	out, err := Decode[T]([]Row{row})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Encode converts a typed value into a Row, dropping nothing: zero values
// are kept unless the struct tags say omitempty.
func Encode(v any) (Row, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	row := Row{}
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("failed to decode value as row: %w", err)
	}
	return row, nil
}
