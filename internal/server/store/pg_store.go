package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/abgdnv/stocksync/internal/product"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	findByIDQuery = `SELECT id, name, quantity FROM products WHERE id = $1`
	findAllQuery  = `SELECT id, name, quantity FROM products ORDER BY id LIMIT $1 OFFSET $2`
	createQuery   = `INSERT INTO products (name, quantity) VALUES ($1, $2) RETURNING id, name, quantity`
	updateQuery   = `UPDATE products SET name = $2, quantity = $3, updated_at = now() WHERE id = $1
RETURNING id, name, quantity`
	deleteQuery = `DELETE FROM products WHERE id = $1`
)

var _ ProductStore = (*PgStore)(nil)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	found, err := p.queryOne(ctx, findByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return found, nil
}

// FindAll retrieves products with pagination support.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]product.Product, error) {
	rows, err := p.db.Query(ctx, findAllQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByPos[product.Product])
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}

// Create adds a new product to the system.
// Returns an error if the product cannot be created.
func (p *PgStore) Create(ctx context.Context, name string, quantity int32) (*product.Product, error) {
	created, err := p.queryOne(ctx, createQuery, name, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

// Update modifies an existing product's details.
// Returns ErrNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, id int64, name string, quantity int32) (*product.Product, error) {
	updated, err := p.queryOne(ctx, updateQuery, id, name, quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id int64) error {
	tag, err := p.db.Exec(ctx, deleteQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func (p *PgStore) queryOne(ctx context.Context, query string, args ...any) (*product.Product, error) {
	var found product.Product
	if err := p.db.QueryRow(ctx, query, args...).Scan(&found.ID, &found.Name, &found.Quantity); err != nil {
		return nil, err
	}
	return &found, nil
}
