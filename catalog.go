package fernanden

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is a set of entity descriptors keyed by name.
type Catalog struct {
	entities map[string]Descriptor
}

type catalogFile struct {
	Entities []Descriptor `yaml:"entities"`
}

// LoadCatalog parses a YAML catalog of the form
//
//	entities:
//	  - name: products
//	    table: products
//	    featured_column: featured
//	    orderings: ["order_index.asc", ""]
//
// and validates every descriptor.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f catalogFile
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	c := &Catalog{entities: make(map[string]Descriptor, len(f.Entities))}
	for _, d := range f.Entities {
		d.applyDefaults()
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.entities[d.Name]; dup {
			return nil, &ValidationError{Field: "name", Reason: fmt.Sprintf("duplicate entity %q", d.Name)}
		}
		c.entities[d.Name] = d
	}
	return c, nil
}

// DefaultCatalog returns the catalog of the content site's entities.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Get(name string) (Descriptor, bool) {
	d, ok := c.entities[name]
	return d, ok
}

// MustGet is like Get but panics for unknown names.
func (c *Catalog) MustGet(name string) Descriptor {
	d, ok := c.Get(name)
	if !ok {
		panic(fmt.Sprintf("fernanden: unknown entity %q", name))
	}
	return d
}

// Names returns the entity names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entities))
	for n := range c.entities {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entities.
func (c *Catalog) Len() int { return len(c.entities) }
