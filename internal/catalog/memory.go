package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory catalog for tests and local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]*Product
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{products: make(map[string]*Product)}
}

// Put seeds or replaces a product. Version starts from whatever the caller
// sets, usually zero.
func (s *MemoryStore) Put(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	cp.Tiers = append([]Tier(nil), p.Tiers...)
	s.products[cp.ID] = &cp
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	cp.Tiers = append([]Tier(nil), p.Tiers...)
	return &cp, nil
}

func (s *MemoryStore) ListProducts(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		cp := *p
		cp.Tiers = append([]Tier(nil), p.Tiers...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetStock(_ context.Context, productID string) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return 0, 0, ErrNotFound
	}
	return p.Stock, p.Version, nil
}

func (s *MemoryStore) CompareAndSwapStock(_ context.Context, productID string, newQty, version int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return false, ErrNotFound
	}
	if p.Version != version {
		return false, nil
	}
	p.Stock = newQty
	p.Version++
	return true, nil
}
