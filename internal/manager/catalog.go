package manager

import (
	"context"
	"sync"

	"github.com/nebari-dev/rbacadmin/internal/models"
)

// Lister fetches a whole collection.
type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// Catalog is a read-only collection loaded alongside a managed one, e.g. the
// roles offered in the user form.
type Catalog[T models.Record] struct {
	lister Lister[T]

	mu     sync.RWMutex
	items  []T
	loaded bool
}

// NewCatalog returns an empty catalog backed by l.
func NewCatalog[T models.Record](l Lister[T]) *Catalog[T] {
	return &Catalog[T]{lister: l}
}

func (c *Catalog[T]) refresh(ctx context.Context) error {
	items, err := c.lister.List(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.loaded = true
	return nil
}

// Loaded reports whether at least one fetch succeeded.
func (c *Catalog[T]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Items returns a copy of the catalog.
func (c *Catalog[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T{}, c.items...)
}

// Names returns the record names in order.
func (c *Catalog[T]) Names() []string {
	return models.Names(c.Items())
}
