package fernanden

import (
	"context"

	"github.com/fernanden/fernanden.go/pkg/models"
	"github.com/fernanden/fernanden.go/pkg/query"
)

// ReadWithFallback executes base once per ordering strategy, in order,
// until one attempt succeeds, and returns that attempt's rows. An empty
// result is a success and stops the sequence.
//
// Every attempt is derived from base, so filters, selected columns and
// limit are identical across attempts; only the ordering differs. base's
// own ordering is ignored. With no strategies, exactly one unordered
// attempt runs.
//
// Only errors accepted by the DB's fallback classifier (missing columns
// and malformed queries by default) move on to the next strategy. If every
// strategy fails, or a non-recoverable error ends the sequence early, the
// result is a *QueryFailure whose Unwrap is the first attempt's error.
func (db *DB) ReadWithFallback(ctx context.Context, base query.Query, attempts ...query.Ordering) ([]models.Row, error) {
	if err := base.WithOrdering(nil).Validate(); err != nil {
		return nil, &ValidationError{Field: "query", Reason: err.Error(), Err: err}
	}
	if len(attempts) == 0 {
		attempts = []query.Ordering{nil}
	}
	for _, ordering := range attempts {
		if err := base.WithOrdering(ordering).Validate(); err != nil {
			return nil, &ValidationError{Field: "ordering", Reason: err.Error(), Err: err}
		}
	}

	table := base.Table()
	var first, last error
	for i, ordering := range attempts {
		q := base.WithOrdering(ordering)
		rows, err := db.conn.Select(ctx, q)
		if err == nil {
			if i > 0 {
				db.logger.Info("read succeeded on fallback ordering",
					"table", table, "attempt", i+1, "ordering", ordering.String())
			}
			if rows == nil {
				rows = []models.Row{}
			}
			return rows, nil
		}
		if isInputError(err) {
			return nil, &ValidationError{Field: "query", Reason: err.Error(), Err: err}
		}

		err = classify(table, err)
		last = err
		if first == nil {
			first = err
		}
		if !db.canFallback(err) {
			db.logger.Warn("read aborted", "table", table, "attempt", i+1, "error", err)
			return nil, &QueryFailure{Table: table, Attempts: i + 1, First: first, Last: err}
		}
		db.logger.Debug("read attempt failed, trying next ordering",
			"table", table, "attempt", i+1, "ordering", ordering.String(), "error", err)
	}

	db.logger.Warn("read failed on every ordering", "table", table, "attempts", len(attempts), "error", first)
	return nil, &QueryFailure{Table: table, Attempts: len(attempts), First: first, Last: last}
}
