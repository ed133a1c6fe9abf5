// Package catalog holds the static list of recommendable venues.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/hyperengineering/nextbest/internal/types"
	"github.com/hyperengineering/nextbest/internal/validation"
)

var (
	// ErrInvalidCatalog indicates a catalog failed validation.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrItemNotFound indicates an ID is not in the catalog.
	ErrItemNotFound = errors.New("catalog item not found")
)

// Catalog is an immutable, validated list of items.
// It is safe for concurrent reads.
type Catalog struct {
	items []types.Item
	byID  map[string]int
}

// InvalidCatalogError carries the field errors behind ErrInvalidCatalog.
type InvalidCatalogError struct {
	Errors []validation.ValidationError
}

func (e *InvalidCatalogError) Error() string {
	var c validation.Collector
	for i := range e.Errors {
		c.Add(&e.Errors[i])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidCatalog, c.Summary())
}

func (e *InvalidCatalogError) Unwrap() error { return ErrInvalidCatalog }

// New validates items and builds a Catalog from a private copy of them.
func New(items []types.Item) (*Catalog, error) {
	if errs := validation.ValidateCatalog(items); len(errs) > 0 {
		return nil, &InvalidCatalogError{Errors: errs}
	}

	owned := make([]types.Item, len(items))
	byID := make(map[string]int, len(items))
	for i, it := range items {
		it.Tags = slices.Clone(it.Tags)
		owned[i] = it
		byID[it.ID] = i
	}
	return &Catalog{items: owned, byID: byID}, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultItems())
	if err != nil {
		panic("built-in catalog is invalid: " + err.Error())
	}
	return c
}

// file is the on-disk catalog layout.
type file struct {
	Items []types.Item `yaml:"items"`
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	return New(f.Items)
}

// Items returns a copy of the catalog entries in catalog order.
func (c *Catalog) Items() []types.Item {
	out := make([]types.Item, len(c.items))
	for i, it := range c.items {
		it.Tags = slices.Clone(it.Tags)
		out[i] = it
	}
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Get returns the item with the given ID.
func (c *Catalog) Get(id string) (types.Item, error) {
	i, ok := c.byID[id]
	if !ok {
		return types.Item{}, fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	it := c.items[i]
	it.Tags = slices.Clone(it.Tags)
	return it, nil
}
