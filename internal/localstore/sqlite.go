package localstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/abgdnv/stocksync/internal/product"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store on top of a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path and applies pending migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store %s: %w", path, err)
	}
	// SQLite serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping local store %s: %w", path, err)
	}
	if err := migrateSQLite(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// migrateSQLite applies the embedded migrations. The migrate instance is not closed
// because closing the sqlite3 driver closes db as well.
func migrateSQLite(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read local store migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply local store migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ListAll returns all products ordered by ID.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]product.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, quantity FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []product.Product{}
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a product by its ID.
// Returns product.ErrNotFound if no product exists with the given ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (product.Product, error) {
	var p product.Product
	err := s.db.QueryRowContext(ctx, `SELECT id, name, quantity FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return p, nil
}

// Upsert inserts the product or overwrites the row with the same ID.
func (s *SQLiteStore) Upsert(ctx context.Context, p product.Product) (int64, error) {
	id, err := upsert(ctx, s.db, p)
	if err != nil {
		return 0, fmt.Errorf("failed to save product: %w", err)
	}
	return id, nil
}

// ReplaceAll deletes every row and inserts products inside a single transaction.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, products []product.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}
	for _, p := range products {
		if _, err := upsert(ctx, tx, p); err != nil {
			return fmt.Errorf("failed to save product %d: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Update overwrites an existing product.
// Returns product.ErrNotFound if no product exists with the given ID.
func (s *SQLiteStore) Update(ctx context.Context, p product.Product) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = ?, quantity = ? WHERE id = ?`, p.Name, p.Quantity, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if count == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes a product by its ID.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, p product.Product) (int64, error) {
	if p.ID == 0 {
		res, err := db.ExecContext(ctx, `INSERT INTO products (name, quantity) VALUES (?, ?)`, p.Name, p.Quantity)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO products (id, name, quantity) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, quantity = excluded.quantity`,
		p.ID, p.Name, p.Quantity)
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}
