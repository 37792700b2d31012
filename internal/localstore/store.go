// Package localstore provides the on-device product cache the client reads first.
package localstore

import (
	"context"

	"github.com/abgdnv/stocksync/internal/product"
)

// Store is the local persistent store of products.
// Every method blocks on I/O and must be called off the caller's goroutine.
type Store interface {
	// ListAll returns every cached product ordered by ID.
	// Returns an empty slice if the store is empty.
	ListAll(ctx context.Context) ([]product.Product, error)

	// GetByID returns the product with the given ID.
	// Returns product.ErrNotFound if no such row exists.
	GetByID(ctx context.Context, id int64) (product.Product, error)

	// Upsert inserts the product or overwrites the row with the same ID and returns the row ID.
	// A product with ID 0 gets an ID assigned by the store.
	Upsert(ctx context.Context, p product.Product) (int64, error)

	// ReplaceAll atomically replaces the whole content of the store with products.
	ReplaceAll(ctx context.Context, products []product.Product) error

	// Update overwrites an existing row.
	// Returns product.ErrNotFound if no row exists with the product's ID.
	Update(ctx context.Context, p product.Product) error

	// Delete removes the row with the given ID. Deleting an absent row is not an error.
	Delete(ctx context.Context, id int64) error
}
