package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMemoryOrder(t *testing.T, s *MemoryStore) {
	t.Helper()
	ord := Order{ID: "o1", Code: "FM260828-0007", BuyerID: "b1", SellerID: "s1", Status: StatusPending}
	pay := Payment{ID: "pay1", OrderID: "o1", AmountCents: 1000, Status: PaymentPending}
	require.NoError(t, s.CreateGroup(context.Background(), &ord, []OrderLine{{ID: "l1", OrderID: "o1"}}, &pay))
}

func TestMemoryTransitionStatusCAS(t *testing.T) {
	s := NewMemoryStore()
	seedMemoryOrder(t, s)
	ctx := context.Background()

	require.NoError(t, s.TransitionStatus(ctx, "o1", StatusPending, StatusConfirmed))

	// second writer raced on the same expected status and loses
	err := s.TransitionStatus(ctx, "o1", StatusPending, StatusCancelled)
	assert.ErrorIs(t, err, ErrConflict)

	o, err := s.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)

	assert.ErrorIs(t, s.TransitionStatus(ctx, "missing", StatusPending, StatusConfirmed), ErrNotFound)
}

func TestMemoryLookups(t *testing.T) {
	s := NewMemoryStore()
	seedMemoryOrder(t, s)
	ctx := context.Background()

	byCode, err := s.GetOrderByCode(ctx, "FM260828-0007")
	require.NoError(t, err)
	assert.Equal(t, "o1", byCode.ID)

	_, err = s.GetOrderByCode(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	d, err := s.GetDetail(ctx, "o1")
	require.NoError(t, err)
	assert.Len(t, d.Lines, 1)
	assert.Len(t, d.Payments, 1)

	p, err := s.FindPendingPayment(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "pay1", p.ID)

	p.Status = PaymentSuccess
	require.NoError(t, s.SavePayment(ctx, p))
	_, err = s.FindPendingPayment(ctx, "o1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCreateGroupCodeClash(t *testing.T) {
	s := NewMemoryStore()
	seedMemoryOrder(t, s)

	dup := Order{ID: "o2", Code: "FM260828-0007", BuyerID: "b2", SellerID: "s2", Status: StatusPending}
	pay := Payment{ID: "pay2", OrderID: "o2", AmountCents: 500, Status: PaymentPending}
	err := s.CreateGroup(context.Background(), &dup, nil, &pay)
	assert.ErrorIs(t, err, ErrCodeTaken)

	_, err = s.GetOrder(context.Background(), "o2")
	assert.ErrorIs(t, err, ErrNotFound, "a clashed group persists nothing")
}

func TestMemorySavePaymentCAS(t *testing.T) {
	s := NewMemoryStore()
	seedMemoryOrder(t, s)
	ctx := context.Background()

	p, err := s.FindPendingPayment(ctx, "o1")
	require.NoError(t, err)
	p.Status = PaymentSuccess
	require.NoError(t, s.SavePayment(ctx, p))

	// a second settle of the same payment lost the race
	p.Status = PaymentFailed
	assert.ErrorIs(t, s.SavePayment(ctx, p), ErrConflict)

	stored, err := s.GetDetail(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, PaymentSuccess, stored.Payments[0].Status)

	assert.ErrorIs(t, s.SavePayment(ctx, &Payment{ID: "ghost"}), ErrNotFound)
}
