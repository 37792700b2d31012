package localstore

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/abgdnv/stocksync/internal/product"
)

// MemoryStore implements Store using an in-memory map.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]product.Product
	nextID   int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]product.Product),
		nextID:   1,
	}
}

// ListAll returns all products ordered by ID.
func (s *MemoryStore) ListAll(_ context.Context) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]product.Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b product.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}

// GetByID retrieves a product by its ID.
func (s *MemoryStore) GetByID(_ context.Context, id int64) (product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

// Upsert inserts or overwrites a product.
func (s *MemoryStore) Upsert(_ context.Context, p product.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.upsert(p), nil
}

// ReplaceAll drops every product and stores the given ones.
func (s *MemoryStore) ReplaceAll(_ context.Context, products []product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make(map[int64]product.Product, len(products))
	for _, p := range products {
		s.upsert(p)
	}
	return nil
}

// Update overwrites an existing product.
func (s *MemoryStore) Update(_ context.Context, p product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID]; !exists {
		return product.ErrNotFound
	}
	s.products[p.ID] = p
	return nil
}

// Delete removes a product by its ID.
func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, id)
	return nil
}

// upsert must be called with s.mu held.
func (s *MemoryStore) upsert(p product.Product) int64 {
	if p.ID == 0 {
		p.ID = s.nextID
	}
	if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	s.products[p.ID] = p
	return p.ID
}
