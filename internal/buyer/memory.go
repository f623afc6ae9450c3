package buyer

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu        sync.RWMutex
	lines     map[string]Line // line id -> line
	order     []string        // line ids, insertion order
	addresses map[string]Address
}

var (
	_ CartStore    = (*MemoryStore)(nil)
	_ AddressStore = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lines:     make(map[string]Line),
		addresses: make(map[string]Address),
	}
}

func (s *MemoryStore) AddLine(ln Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lines[ln.ID]; !ok {
		s.order = append(s.order, ln.ID)
	}
	s.lines[ln.ID] = ln
}

func (s *MemoryStore) PutAddress(a Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses[a.ID] = a
}

func (s *MemoryStore) ListLines(_ context.Context, buyerID string) ([]Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Line
	for _, id := range s.order {
		if ln, ok := s.lines[id]; ok && ln.BuyerID == buyerID {
			out = append(out, ln)
		}
	}
	return out, nil
}

func (s *MemoryStore) RemoveLines(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.lines, id)
	}
	return nil
}

func (s *MemoryStore) GetAddress(_ context.Context, id string) (*Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.addresses[id]
	if !ok {
		return nil, ErrAddressNotFound
	}
	return &a, nil
}
