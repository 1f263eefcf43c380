package fernanden

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fernanden/fernanden.go/pkg/models"
	"github.com/fernanden/fernanden.go/pkg/query"
)

// Descriptor declares how one entity is stored and which optional
// capabilities it has. Empty column names disable the matching operations.
type Descriptor struct {
	Name     string `yaml:"name" json:"name"`
	Table    string `yaml:"table" json:"table"`
	IDColumn string `yaml:"id_column" json:"id_column"`
	// GenerateID assigns a random UUID on Create when the caller gave none.
	GenerateID bool `yaml:"generate_id" json:"generate_id"`

	StatusColumn   string `yaml:"status_column" json:"status_column,omitempty"`
	PublishedValue string `yaml:"published_value" json:"published_value,omitempty"`
	CategoryColumn string `yaml:"category_column" json:"category_column,omitempty"`
	FeaturedColumn string `yaml:"featured_column" json:"featured_column,omitempty"`
	SlugColumn     string `yaml:"slug_column" json:"slug_column,omitempty"`

	// FilterColumns may be used with GetBy.
	FilterColumns []string `yaml:"filter_columns" json:"filter_columns,omitempty"`
	SearchColumns []string `yaml:"search_columns" json:"search_columns,omitempty"`
	// Orderings are the fallback strategies for list reads, most preferred
	// first, in ParseOrdering form. An empty entry means unordered.
	Orderings []string `yaml:"orderings" json:"orderings,omitempty"`
	// DefaultLimit caps list reads; 0 means no limit.
	DefaultLimit int `yaml:"default_limit" json:"default_limit,omitempty"`
	// ToggleRetries enables compare-and-swap toggles with that many retries.
	ToggleRetries int `yaml:"toggle_retries" json:"toggle_retries,omitempty"`
}

func (d *Descriptor) applyDefaults() {
	if d.IDColumn == "" {
		d.IDColumn = "id"
	}
	if d.StatusColumn != "" && d.PublishedValue == "" {
		d.PublishedValue = models.StatusPublished
	}
}

// Validate checks identifiers and orderings.
func (d Descriptor) Validate() error {
	d.applyDefaults()
	if d.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	idents := map[string]string{
		"table":           d.Table,
		"id_column":       d.IDColumn,
		"status_column":   d.StatusColumn,
		"category_column": d.CategoryColumn,
		"featured_column": d.FeaturedColumn,
		"slug_column":     d.SlugColumn,
	}
	for field, ident := range idents {
		if ident == "" && field != "table" {
			continue
		}
		if !query.ValidIdentifier(ident) {
			return &ValidationError{Field: d.Name + "." + field, Reason: fmt.Sprintf("invalid identifier %q", ident), Err: query.ErrInvalidIdentifier}
		}
	}
	for _, list := range [][]string{d.FilterColumns, d.SearchColumns} {
		for _, c := range list {
			if !query.ValidIdentifier(c) {
				return &ValidationError{Field: d.Name + ".columns", Reason: fmt.Sprintf("invalid identifier %q", c), Err: query.ErrInvalidIdentifier}
			}
		}
	}
	if _, err := d.orderings(); err != nil {
		return &ValidationError{Field: d.Name + ".orderings", Reason: err.Error(), Err: err}
	}
	if d.DefaultLimit < 0 {
		return &ValidationError{Field: d.Name + ".default_limit", Reason: "must not be negative"}
	}
	return nil
}

func (d Descriptor) orderings() ([]query.Ordering, error) {
	out := make([]query.Ordering, 0, len(d.Orderings))
	for _, s := range d.Orderings {
		o, err := query.ParseOrdering(s)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// Entity is the generic service for one content type.
type Entity struct {
	db        *DB
	desc      Descriptor
	orderings []query.Ordering
}

// Entity builds the service described by d.
func (db *DB) Entity(d Descriptor) (*Entity, error) {
	d.applyDefaults()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	orderings, _ := d.orderings()
	return &Entity{db: db, desc: d, orderings: orderings}, nil
}

func (e *Entity) Descriptor() Descriptor { return e.desc }

func (e *Entity) Name() string { return e.desc.Name }

func (e *Entity) base() query.Query {
	q := query.From(e.desc.Table)
	if e.desc.DefaultLimit > 0 {
		q = q.Limit(e.desc.DefaultLimit)
	}
	return q
}

func (e *Entity) list(ctx context.Context, filters ...query.Filter) ([]models.Row, error) {
	return e.db.ReadWithFallback(ctx, e.base().Where(filters...), e.orderings...)
}

func (e *Entity) unsupported(op string) error {
	return &ValidationError{Field: e.desc.Name, Reason: op + " is not supported by this entity"}
}

func (e *Entity) published() query.Filter {
	return query.Eq(e.desc.StatusColumn, e.desc.PublishedValue)
}

// GetAll lists every row.
func (e *Entity) GetAll(ctx context.Context) ([]models.Row, error) {
	return e.list(ctx)
}

// GetPublished lists rows whose status column holds the published value.
func (e *Entity) GetPublished(ctx context.Context) ([]models.Row, error) {
	if e.desc.StatusColumn == "" {
		return nil, e.unsupported("status filtering")
	}
	return e.list(ctx, e.published())
}

// GetActive is GetPublished for entities whose status reads "active".
func (e *Entity) GetActive(ctx context.Context) ([]models.Row, error) {
	return e.GetPublished(ctx)
}

func (e *Entity) GetByCategory(ctx context.Context, category string) ([]models.Row, error) {
	if e.desc.CategoryColumn == "" {
		return nil, e.unsupported("category filtering")
	}
	return e.list(ctx, query.Eq(e.desc.CategoryColumn, category))
}

// GetFeatured lists featured rows, restricted to published ones when the
// entity has a status.
func (e *Entity) GetFeatured(ctx context.Context) ([]models.Row, error) {
	if e.desc.FeaturedColumn == "" {
		return nil, e.unsupported("featured filtering")
	}
	filters := []query.Filter{query.Eq(e.desc.FeaturedColumn, true)}
	if e.desc.StatusColumn != "" {
		filters = append(filters, e.published())
	}
	return e.list(ctx, filters...)
}

// Filterable reports whether GetBy accepts column.
func (e *Entity) Filterable(column string) bool {
	if column == "" {
		return false
	}
	switch column {
	case e.desc.StatusColumn, e.desc.CategoryColumn, e.desc.SlugColumn:
		return true
	}
	for _, c := range e.desc.FilterColumns {
		if c == column {
			return true
		}
	}
	return false
}

// GetBy lists rows where column equals value. Only declared columns are
// accepted.
func (e *Entity) GetBy(ctx context.Context, column string, value any) ([]models.Row, error) {
	if !e.Filterable(column) {
		return nil, &ValidationError{Field: column, Reason: "is not a filter column of " + e.desc.Name}
	}
	return e.list(ctx, query.Eq(column, value))
}

func (e *Entity) one(ctx context.Context, column string, value any) (models.Row, error) {
	q := query.From(e.desc.Table).Where(query.Eq(column, value)).Limit(1)
	rows, err := e.db.conn.Select(ctx, q)
	if err != nil {
		return nil, classify(e.desc.Table, err)
	}
	if len(rows) == 0 {
		return nil, &NotFoundError{Table: e.desc.Table, Column: column, Value: value}
	}
	return rows[0], nil
}

func (e *Entity) GetByID(ctx context.Context, id any) (models.Row, error) {
	if isEmptyID(id) {
		return nil, &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	return e.one(ctx, e.desc.IDColumn, id)
}

func (e *Entity) GetBySlug(ctx context.Context, slug string) (models.Row, error) {
	if e.desc.SlugColumn == "" {
		return nil, e.unsupported("slug lookup")
	}
	if slug == "" {
		return nil, &ValidationError{Field: "slug", Reason: "must not be empty"}
	}
	return e.one(ctx, e.desc.SlugColumn, slug)
}

// Search lists rows where any search column contains text, ignoring case.
// Blank text returns an empty result without querying the store; longer
// text is cut to its first MaxSearchLength characters.
func (e *Entity) Search(ctx context.Context, text string) ([]models.Row, error) {
	term := NormalizeSearch(text)
	if term == "" {
		return []models.Row{}, nil
	}
	if len(e.desc.SearchColumns) == 0 {
		return nil, e.unsupported("search")
	}
	return e.list(ctx, searchFilter(term, e.desc.SearchColumns))
}

// Create inserts fields as given and returns the stored row.
func (e *Entity) Create(ctx context.Context, fields models.Row) (models.Row, error) {
	row := fields.Clone()
	if row == nil {
		row = models.Row{}
	}
	if e.desc.GenerateID && isEmptyID(row[e.desc.IDColumn]) {
		row[e.desc.IDColumn] = uuid.NewString()
	}
	created, err := e.db.conn.Insert(ctx, e.desc.Table, row)
	if err != nil {
		return nil, classify(e.desc.Table, err)
	}
	e.db.logger.Debug("created row", "entity", e.desc.Name, "id", created[e.desc.IDColumn])
	return created, nil
}

// Update applies fields to the row with the given id and returns it.
func (e *Entity) Update(ctx context.Context, id any, fields models.Row) (models.Row, error) {
	if isEmptyID(id) {
		return nil, &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if len(fields) == 0 {
		return nil, &ValidationError{Field: "fields", Reason: "nothing to update"}
	}
	q := query.From(e.desc.Table).Where(query.Eq(e.desc.IDColumn, id))
	rows, err := e.db.conn.Update(ctx, q, fields.Clone())
	if err != nil {
		return nil, classify(e.desc.Table, err)
	}
	if len(rows) == 0 {
		return nil, &NotFoundError{Table: e.desc.Table, Column: e.desc.IDColumn, Value: id}
	}
	return rows[0], nil
}

// Delete removes the row with the given id.
func (e *Entity) Delete(ctx context.Context, id any) error {
	if isEmptyID(id) {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	q := query.From(e.desc.Table).Where(query.Eq(e.desc.IDColumn, id))
	n, err := e.db.conn.Delete(ctx, q)
	if err != nil {
		return classify(e.desc.Table, err)
	}
	if n == 0 {
		return &NotFoundError{Table: e.desc.Table, Column: e.desc.IDColumn, Value: id}
	}
	return nil
}

// ToggleFeatured flips the featured flag of the row with the given id.
func (e *Entity) ToggleFeatured(ctx context.Context, id any) (models.Row, error) {
	if e.desc.FeaturedColumn == "" {
		return nil, e.unsupported("featured toggle")
	}
	if isEmptyID(id) {
		return nil, &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	opts := []ToggleOption{WithIDColumn(e.desc.IDColumn)}
	if e.desc.ToggleRetries > 0 {
		opts = append(opts, WithCompareAndSwap(e.desc.ToggleRetries))
	}
	return e.db.ToggleField(ctx, e.desc.Table, id, e.desc.FeaturedColumn, opts...)
}

func isEmptyID(id any) bool {
	switch v := id.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}
