package orders

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the aggregate in maps behind one mutex. It backs the unit
// tests and small local runs; production wiring uses PGStore.
type MemoryStore struct {
	mu       sync.RWMutex
	orders   map[string]*Order
	byCode   map[string]string // code -> order id
	lines    map[string][]OrderLine
	payments map[string]*Payment
	payOrder map[string][]string // order id -> payment ids, insertion order
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:   make(map[string]*Order),
		byCode:   make(map[string]string),
		lines:    make(map[string][]OrderLine),
		payments: make(map[string]*Payment),
		payOrder: make(map[string][]string),
	}
}

func (s *MemoryStore) CreateGroup(_ context.Context, ord *Order, lines []OrderLine, pay *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byCode[ord.Code]; taken {
		return ErrCodeTaken
	}

	now := time.Now().UTC()
	cp := *ord
	cp.CreatedAt, cp.UpdatedAt = now, now
	s.orders[cp.ID] = &cp
	s.byCode[cp.Code] = cp.ID
	s.lines[cp.ID] = append([]OrderLine(nil), lines...)

	pc := *pay
	pc.CreatedAt = now
	s.payments[pc.ID] = &pc
	s.payOrder[cp.ID] = append(s.payOrder[cp.ID], pc.ID)

	ord.CreatedAt, ord.UpdatedAt = now, now
	return nil
}

func (s *MemoryStore) GetOrder(_ context.Context, id string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *MemoryStore) GetOrderByCode(_ context.Context, code string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.orders[id]
	return &cp, nil
}

func (s *MemoryStore) GetDetail(_ context.Context, id string) (*Detail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	d := Detail{Order: *o, Lines: append([]OrderLine(nil), s.lines[id]...)}
	for _, pid := range s.payOrder[id] {
		d.Payments = append(d.Payments, *s.payments[pid])
	}
	return &d, nil
}

func (s *MemoryStore) ListLines(_ context.Context, orderID string) ([]OrderLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.orders[orderID]; !ok {
		return nil, ErrNotFound
	}
	return append([]OrderLine(nil), s.lines[orderID]...), nil
}

func (s *MemoryStore) TransitionStatus(_ context.Context, orderID string, from, to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if o.Status != from {
		return ErrConflict
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) SetPaymentStatus(_ context.Context, orderID string, ps PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.PaymentStatus = ps
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) FindPaymentByTxCode(_ context.Context, gateway, txCode string) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.payments {
		if p.Gateway == gateway && p.TxCode == txCode && txCode != "" {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindPendingPayment(_ context.Context, orderID string) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, pid := range s.payOrder[orderID] {
		if p := s.payments[pid]; p.Status == PaymentPending {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) AddPayment(_ context.Context, p *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[p.OrderID]; !ok {
		return ErrNotFound
	}
	cp := *p
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.payments[cp.ID] = &cp
	s.payOrder[cp.OrderID] = append(s.payOrder[cp.OrderID], cp.ID)
	return nil
}

func (s *MemoryStore) SavePayment(_ context.Context, p *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.payments[p.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status.Terminal() {
		return ErrConflict
	}
	cp := *p
	s.payments[cp.ID] = &cp
	return nil
}
