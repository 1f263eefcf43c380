// Package query describes reads and writes against a remote tabular store.
//
// A Query is an immutable value: table, selected columns, filter predicates,
// ordering and an optional row limit. Builder methods return new values and
// never modify the receiver, so a base query can be shared between several
// executions that differ only in ordering:
//
//	base := query.From("products").Where(query.Eq("status", "published")).Limit(20)
//	byIndex := base.WithOrdering(query.Ordering{query.Asc("order_index")})
//	byDate := base.WithOrdering(query.Ordering{query.Desc("created_at")})
//
// Adapters turn a Query into their own wire format. ToSQL, InsertSQL,
// UpdateSQL and DeleteSQL render parameterised SQL for the Postgres and
// SQLite dialects.
package query
