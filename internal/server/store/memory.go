package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/abgdnv/stocksync/internal/product"
)

var _ ProductStore = (*MemoryStore)(nil)

// MemoryStore implements ProductStore using an in-memory map.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]product.Product
	nextID   int64
}

// NewMemoryStore creates a new, empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]product.Product),
		nextID:   1,
	}
}

// FindByID retrieves a product by its ID.
func (s *MemoryStore) FindByID(_ context.Context, id int64) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

// FindAll retrieves a page of products ordered by ID.
func (s *MemoryStore) FindAll(_ context.Context, offset, limit int32) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(s.products))
	start := min(int(offset), len(ids))
	end := min(start+int(limit), len(ids))

	list := make([]product.Product, 0, end-start)
	for _, id := range ids[start:end] {
		list = append(list, s.products[id])
	}
	return list, nil
}

// Create creates a new product and returns it.
func (s *MemoryStore) Create(_ context.Context, name string, quantity int32) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := product.Product{ID: s.nextID, Name: name, Quantity: quantity}
	s.nextID++
	s.products[p.ID] = p
	return &p, nil
}

// Update overwrites an existing product.
func (s *MemoryStore) Update(_ context.Context, id int64, name string, quantity int32) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return nil, product.ErrNotFound
	}
	p := product.Product{ID: id, Name: name, Quantity: quantity}
	s.products[id] = p
	return &p, nil
}

// DeleteByID deletes a product by its ID.
func (s *MemoryStore) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return product.ErrNotFound
	}
	delete(s.products, id)
	return nil
}
