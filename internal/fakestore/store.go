// Package fakestore provides an in-memory connection.Connection for tests.
//
// Rows are kept in insertion order, which is the "storage order" returned
// by unordered selects. Columns can be declared missing per table to
// simulate deployments that lack an optional column, and failures can be
// injected per method and table.
package fakestore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fernanden/fernanden.go/pkg/connection"
	"github.com/fernanden/fernanden.go/pkg/models"
	"github.com/fernanden/fernanden.go/pkg/query"
)

// Call records one invocation of the store.
type Call struct {
	Method string
	Table  string
	Query  query.Query
	Row    models.Row
}

// Failure makes matching calls return Err instead of executing.
type Failure struct {
	// Method is "select", "insert", "update" or "delete"; empty matches all.
	Method string
	Table  string
	// Match further narrows the calls the failure applies to.
	Match func(Call) bool
	Err   error
	// Times limits how often the failure fires; 0 means always.
	Times int

	fired int
}

type Store struct {
	mu       sync.Mutex
	tables   map[string][]models.Row
	missing  map[string]map[string]bool
	failures []*Failure
	calls    []Call

	// Hook runs before every call, outside the store's lock, so it may
	// modify the store to simulate a concurrent writer.
	Hook func(Call)
}

var _ connection.Connection = (*Store)(nil)

func New() *Store {
	return &Store{
		tables:  map[string][]models.Row{},
		missing: map[string]map[string]bool{},
	}
}

// CreateTable registers an empty table.
func (s *Store) CreateTable(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[table]; !ok {
		s.tables[table] = []models.Row{}
	}
}

// Seed appends rows to table, creating it if needed.
func (s *Store) Seed(table string, rows ...models.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.tables[table] = append(s.tables[table], r.Clone())
	}
	if s.tables[table] == nil {
		s.tables[table] = []models.Row{}
	}
}

// DropColumn makes every query that references column on table fail with
// an undefined-column error.
func (s *Store) DropColumn(table, column string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missing[table] == nil {
		s.missing[table] = map[string]bool{}
	}
	s.missing[table][column] = true
	for _, r := range s.tables[table] {
		delete(r, column)
	}
}

func (s *Store) Fail(f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, &f)
}

// Calls returns the recorded calls in order.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the recorded calls for one method.
func (s *Store) CallsTo(method string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// Rows returns a copy of the stored rows of table.
func (s *Store) Rows(table string) []models.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Row, len(s.tables[table]))
	for i, r := range s.tables[table] {
		out[i] = r.Clone()
	}
	return out
}

func (s *Store) Close() error { return nil }

func (s *Store) begin(ctx context.Context, call Call) error {
	if s.Hook != nil {
		s.Hook(call)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	for _, f := range s.failures {
		if f.Method != "" && f.Method != call.Method {
			continue
		}
		if f.Table != "" && f.Table != call.Table {
			continue
		}
		if f.Match != nil && !f.Match(call) {
			continue
		}
		if f.Times > 0 && f.fired >= f.Times {
			continue
		}
		f.fired++
		return f.Err
	}
	return nil
}

// check verifies the table exists and no referenced column is missing.
// Callers hold s.mu.
func (s *Store) check(table string, columns []string) error {
	if _, ok := s.tables[table]; !ok {
		return connection.NewError(connection.KindSchema, "42P01",
			fmt.Sprintf(`relation "%s" does not exist`, table), nil)
	}
	for _, c := range columns {
		if s.missing[table][c] {
			return connection.NewError(connection.KindSchema, "42703",
				fmt.Sprintf("column %s.%s does not exist", table, c), nil)
		}
	}
	return nil
}

func referenced(q query.Query) []string {
	cols := q.Columns()
	var walk func(fs []query.Filter)
	walk = func(fs []query.Filter) {
		for _, f := range fs {
			if f.Op == query.OpOr {
				walk(f.Any)
				continue
			}
			cols = append(cols, f.Column)
		}
	}
	walk(q.Filters())
	for _, o := range q.Ordering() {
		cols = append(cols, o.Column)
	}
	return cols
}

func (s *Store) Select(ctx context.Context, q query.Query) ([]models.Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := s.begin(ctx, Call{Method: "select", Table: q.Table(), Query: q}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(q.Table(), referenced(q)); err != nil {
		return nil, err
	}

	matched := []models.Row{}
	for _, r := range s.tables[q.Table()] {
		ok, err := matchAll(r, q.Filters())
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, r)
		}
	}

	if ordering := q.Ordering(); len(ordering) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			return less(matched[i], matched[j], ordering)
		})
	}
	if n, ok := q.LimitValue(); ok && n < len(matched) {
		matched = matched[:n]
	}

	out := make([]models.Row, len(matched))
	cols := q.Columns()
	for i, r := range matched {
		if len(cols) == 0 {
			out[i] = r.Clone()
			continue
		}
		projected := models.Row{}
		for _, c := range cols {
			projected[c] = r[c]
		}
		out[i] = projected
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, table string, row models.Row) (models.Row, error) {
	if !query.ValidIdentifier(table) {
		return nil, fmt.Errorf("%w: table %q", query.ErrInvalidIdentifier, table)
	}
	if err := s.begin(ctx, Call{Method: "insert", Table: table, Row: row.Clone()}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(table, row.Columns()); err != nil {
		return nil, err
	}
	if id, ok := row["id"]; ok {
		for _, existing := range s.tables[table] {
			if existing["id"] == id {
				return nil, connection.NewError(connection.KindConstraint, "23505",
					fmt.Sprintf("duplicate key value violates unique constraint \"%s_pkey\"", table), nil)
			}
		}
	}
	stored := row.Clone()
	s.tables[table] = append(s.tables[table], stored)
	return stored.Clone(), nil
}

func (s *Store) Update(ctx context.Context, q query.Query, set models.Row) ([]models.Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if len(q.Filters()) == 0 {
		return nil, query.ErrUnfiltered
	}
	if len(set) == 0 {
		return nil, query.ErrEmptyChange
	}
	if err := s.begin(ctx, Call{Method: "update", Table: q.Table(), Query: q, Row: set.Clone()}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(q.Table(), append(referenced(q), set.Columns()...)); err != nil {
		return nil, err
	}

	out := []models.Row{}
	for _, r := range s.tables[q.Table()] {
		ok, err := matchAll(r, q.Filters())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for k, v := range set {
			r[k] = v
		}
		out = append(out, r.Clone())
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, q query.Query) (int, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	if len(q.Filters()) == 0 {
		return 0, query.ErrUnfiltered
	}
	if err := s.begin(ctx, Call{Method: "delete", Table: q.Table(), Query: q}); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(q.Table(), referenced(q)); err != nil {
		return 0, err
	}

	kept := make([]models.Row, 0, len(s.tables[q.Table()]))
	removed := 0
	for _, r := range s.tables[q.Table()] {
		ok, err := matchAll(r, q.Filters())
		if err != nil {
			return 0, err
		}
		if ok {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.tables[q.Table()] = kept
	return removed, nil
}
