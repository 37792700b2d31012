// Package store provides the persistence layer of the product endpoint.
package store

import (
	"context"

	"github.com/abgdnv/stocksync/internal/product"
)

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns product.ErrNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*product.Product, error)

	// FindAll returns products ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context, offset, limit int32) ([]product.Product, error)

	// Create adds a new product and assigns its ID.
	Create(ctx context.Context, name string, quantity int32) (*product.Product, error)

	// Update overwrites the name and quantity of an existing product.
	// Returns product.ErrNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, name string, quantity int32) (*product.Product, error)

	// DeleteByID removes a product by its ID.
	// Returns product.ErrNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error
}
