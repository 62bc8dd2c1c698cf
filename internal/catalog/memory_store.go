package catalog

import (
	"context"
	"sync"
)

// MemoryStore implements Lookup with in-memory storage. Stock arithmetic for
// all products happens under one mutex, so concurrent checkouts cannot
// oversell a product.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]*Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]*Product),
	}
}

func (s *MemoryStore) ProductInfo(_ context.Context, productID int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[productID]
	if !exists {
		return nil, ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (s *MemoryStore) DecrementStock(_ context.Context, productID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[productID]
	if !exists {
		return ErrProductNotFound
	}
	if product.Stock < quantity {
		return ErrInsufficientStock
	}

	product.Stock -= quantity
	return nil
}

func (s *MemoryStore) Restock(_ context.Context, productID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[productID]
	if !exists {
		return ErrProductNotFound
	}

	product.Stock += quantity
	return nil
}

// SetProduct sets or replaces a product (used for seeding).
func (s *MemoryStore) SetProduct(product Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = &product
}
