package fernanden

import (
	"context"

	"github.com/fernanden/fernanden.go/pkg/models"
	"github.com/fernanden/fernanden.go/pkg/query"
)

type toggleOptions struct {
	idColumn string
	cas      bool
	retries  int
}

type ToggleOption func(*toggleOptions)

// WithIDColumn sets the column identifying the row. The default is "id".
func WithIDColumn(column string) ToggleOption {
	return func(o *toggleOptions) {
		o.idColumn = column
	}
}

// WithCompareAndSwap makes the write conditional on the value read. When a
// concurrent writer changed the field in between, the toggle re-reads and
// tries again, up to retries more times, then fails with *ConflictError.
func WithCompareAndSwap(retries int) ToggleOption {
	return func(o *toggleOptions) {
		o.cas = true
		if retries < 0 {
			retries = 0
		}
		o.retries = retries
	}
}

// ToggleField flips the boolean field on the row whose id column equals id
// and returns the updated row. A null value counts as false.
//
// Without WithCompareAndSwap the read and the write are independent
// requests; concurrent toggles on one row race and the last write wins.
func (db *DB) ToggleField(ctx context.Context, table string, id any, field string, opts ...ToggleOption) (models.Row, error) {
	o := toggleOptions{idColumn: "id"}
	for _, opt := range opts {
		opt(&o)
	}
	for name, ident := range map[string]string{"table": table, "field": field, "id column": o.idColumn} {
		if !query.ValidIdentifier(ident) {
			return nil, &ValidationError{Field: name, Reason: "invalid identifier " + ident, Err: query.ErrInvalidIdentifier}
		}
	}
	if isEmptyID(id) {
		return nil, &ValidationError{Field: "id", Reason: "must not be empty"}
	}

	byID := query.From(table).Where(query.Eq(o.idColumn, id))
	attempts := 1
	if o.cas {
		attempts += o.retries
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		rows, err := db.conn.Select(ctx, byID.Select(field).Limit(1))
		if err != nil {
			return nil, classify(table, err)
		}
		if len(rows) == 0 {
			return nil, &NotFoundError{Table: table, Column: o.idColumn, Value: id}
		}
		raw := rows[0][field]
		current, ok := models.AsBool(raw)
		if !ok {
			return nil, &ValidationError{Field: field, Reason: "is not a boolean"}
		}

		target := byID
		if o.cas {
			if raw == nil {
				target = target.Where(query.Is(field, nil))
			} else {
				target = target.Where(query.Eq(field, raw))
			}
		}
		updated, err := db.conn.Update(ctx, target, models.Row{field: !current})
		if err != nil {
			return nil, classify(table, err)
		}
		if len(updated) > 0 {
			return updated[0], nil
		}
		if !o.cas {
			return nil, &NotFoundError{Table: table, Column: o.idColumn, Value: id}
		}
		db.logger.Debug("toggle lost a race, retrying", "table", table, "field", field, "attempt", attempt)
	}
	return nil, &ConflictError{Table: table, Field: field, ID: id, Attempts: attempts}
}
