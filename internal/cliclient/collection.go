package cliclient

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nebari-dev/rbacadmin/internal/models"
)

// Collection is one flat resource collection on the store, e.g. /users.
type Collection[T any] struct {
	client *Client
	path   string
}

// NewCollection returns a collection rooted at path.
func NewCollection[T any](c *Client, path string) *Collection[T] {
	return &Collection[T]{client: c, path: path}
}

// Path returns the collection path.
func (col *Collection[T]) Path() string {
	return col.path
}

func (col *Collection[T]) itemPath(id models.ID) string {
	return fmt.Sprintf("%s/%s", col.path, url.PathEscape(id.String()))
}

// List returns every record in the collection.
func (col *Collection[T]) List(ctx context.Context) ([]T, error) {
	items := []T{}
	if _, err := col.client.Get(ctx, col.path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns a single record by ID.
func (col *Collection[T]) Get(ctx context.Context, id models.ID) (T, error) {
	var item T
	if _, err := col.client.Get(ctx, col.itemPath(id), &item); err != nil {
		return item, err
	}
	return item, nil
}

// Create posts a new record and returns the stored representation.
func (col *Collection[T]) Create(ctx context.Context, draft T) (T, error) {
	var created T
	if _, err := col.client.Post(ctx, col.path, draft, &created); err != nil {
		return created, err
	}
	return created, nil
}

// Update replaces the record with the given ID and returns the stored representation.
func (col *Collection[T]) Update(ctx context.Context, id models.ID, record T) (T, error) {
	var updated T
	if _, err := col.client.Put(ctx, col.itemPath(id), record, &updated); err != nil {
		return updated, err
	}
	return updated, nil
}

// Delete removes the record with the given ID.
func (col *Collection[T]) Delete(ctx context.Context, id models.ID) error {
	_, err := col.client.Delete(ctx, col.itemPath(id))
	return err
}

// Users returns the /users collection.
func (c *Client) Users() *Collection[models.User] {
	return NewCollection[models.User](c, "/users")
}

// Roles returns the /roles collection.
func (c *Client) Roles() *Collection[models.Role] {
	return NewCollection[models.Role](c, "/roles")
}

// Permissions returns the /permissions collection.
func (c *Client) Permissions() *Collection[models.Permission] {
	return NewCollection[models.Permission](c, "/permissions")
}
