package payment_test

import (
	"context"
	"sync"
	"testing"

	"github.com/ariefcatur/farm-market-core.git/internal/notify"
	"github.com/ariefcatur/farm-market-core.git/internal/orders"
	"github.com/ariefcatur/farm-market-core.git/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	orders *orders.MemoryStore
	rec    *notify.Recorder
	rc     *payment.Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{orders: orders.NewMemoryStore(), rec: &notify.Recorder{}}
	f.rc = &payment.Reconciler{Orders: f.orders, Notifier: f.rec}
	return f
}

func (f *fixture) seedOrder(t *testing.T, status orders.Status, withPending bool) {
	t.Helper()
	ord := orders.Order{
		ID:            "o1",
		Code:          "FM260828-0042",
		BuyerID:       "buyer-1",
		SellerID:      "seller-1",
		Status:        status,
		PaymentMethod: orders.MethodGateway,
		PaymentStatus: orders.PayPending,
		TotalCents:    25_000,
	}
	pay := orders.Payment{ID: "pay1", OrderID: "o1", AmountCents: 25_000, Status: orders.PaymentPending}
	if !withPending {
		pay.Status = orders.PaymentFailed
	}
	require.NoError(t, f.orders.CreateGroup(context.Background(), &ord, nil, &pay))
}

func successCallback() payment.Callback {
	return payment.Callback{
		Gateway:     "midtrans",
		OrderCode:   "FM260828-0042",
		TxCode:      "TX-1001",
		Success:     true,
		AmountCents: 25_000,
	}
}

func TestHandleCallbackSuccess(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, orders.StatusPending, true)
	ctx := context.Background()

	ord, err := f.rc.HandleCallback(ctx, successCallback())
	require.NoError(t, err)
	require.NotNil(t, ord)
	assert.Equal(t, "o1", ord.ID)

	d, err := f.orders.GetDetail(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, orders.PayPaid, d.Order.PaymentStatus)
	assert.Equal(t, orders.StatusConfirmed, d.Order.Status, "paid pending orders auto-confirm")

	require.Len(t, d.Payments, 1)
	p := d.Payments[0]
	assert.Equal(t, orders.PaymentSuccess, p.Status)
	assert.Equal(t, "midtrans", p.Gateway)
	assert.Equal(t, "TX-1001", p.TxCode)
	require.NotNil(t, p.PaidAt)

	assert.Len(t, f.rec.ByType(notify.EventPaymentSucceeded), 1)
	assert.Len(t, f.rec.ByType(notify.EventOrderStatus), 1)
}

func TestHandleCallbackDuplicateIsNoop(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, orders.StatusPending, true)
	ctx := context.Background()

	_, err := f.rc.HandleCallback(ctx, successCallback())
	require.NoError(t, err)
	_, err = f.rc.HandleCallback(ctx, successCallback())
	require.NoError(t, err, "redelivery is acknowledged, not reapplied")

	d, err := f.orders.GetDetail(ctx, "o1")
	require.NoError(t, err)
	assert.Len(t, d.Payments, 1)
	assert.Len(t, f.rec.ByType(notify.EventPaymentSucceeded), 1, "one settlement, one notification")
}

// rendezvousStore holds every FindPendingPayment caller until both racers
// have read the same PENDING payment, reproducing simultaneous delivery of
// one gateway callback.
type rendezvousStore struct {
	orders.Store
	arrive *sync.WaitGroup
}

func (s *rendezvousStore) FindPendingPayment(ctx context.Context, orderID string) (*orders.Payment, error) {
	p, err := s.Store.FindPendingPayment(ctx, orderID)
	s.arrive.Done()
	s.arrive.Wait()
	return p, err
}

func TestHandleCallbackConcurrentDuplicateSettlesOnce(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, orders.StatusPending, true)

	var arrive sync.WaitGroup
	arrive.Add(2)
	f.rc.Orders = &rendezvousStore{Store: f.orders, arrive: &arrive}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.rc.HandleCallback(context.Background(), successCallback())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err, "the losing racer discards quietly")
	}

	d, err := f.orders.GetDetail(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, orders.PayPaid, d.Order.PaymentStatus)
	assert.Equal(t, orders.StatusConfirmed, d.Order.Status)
	require.Len(t, d.Payments, 1)
	assert.Equal(t, orders.PaymentSuccess, d.Payments[0].Status)
	assert.Len(t, f.rec.ByType(notify.EventPaymentSucceeded), 1, "exactly one settlement for two racing deliveries")
	assert.Len(t, f.rec.ByType(notify.EventOrderStatus), 1)
}

func TestHandleCallbackFailureKeepsOrderOpen(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, orders.StatusPending, true)
	ctx := context.Background()

	cb := successCallback()
	cb.Success = false
	cb.Message = "card declined"
	_, err := f.rc.HandleCallback(ctx, cb)
	require.NoError(t, err)

	d, err := f.orders.GetDetail(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, orders.PayFailed, d.Order.PaymentStatus)
	assert.Equal(t, orders.StatusPending, d.Order.Status, "buyer can retry payment")
	assert.Equal(t, orders.PaymentFailed, d.Payments[0].Status)
	assert.Equal(t, "card declined", d.Payments[0].Message)
	assert.Len(t, f.rec.ByType(notify.EventPaymentFailed), 1)
}

func TestHandleCallbackFailureThenSuccessNeedsFreshPayment(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, orders.StatusPending, true)
	ctx := context.Background()

	cb := successCallback()
	cb.Success = false
	_, err := f.rc.HandleCallback(ctx, cb)
	require.NoError(t, err)

	// the retry arrives with a new transaction code; the failed payment is
	// terminal, so a fresh record carries the success
	retry := successCallback()
	retry.TxCode = "TX-1002"
	_, err = f.rc.HandleCallback(ctx, retry)
	require.NoError(t, err)

	d, err := f.orders.GetDetail(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, orders.PayPaid, d.Order.PaymentStatus)
	require.Len(t, d.Payments, 2)
	assert.Equal(t, orders.PaymentFailed, d.Payments[0].Status)
	assert.Equal(t, orders.PaymentSuccess, d.Payments[1].Status)
}

func TestHandleCallbackSynthesizesPaymentWhenNonePending(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, orders.StatusPending, false) // only a FAILED record exists

	_, err := f.rc.HandleCallback(context.Background(), successCallback())
	require.NoError(t, err)

	d, err := f.orders.GetDetail(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, d.Payments, 2)
	assert.Equal(t, orders.PaymentSuccess, d.Payments[1].Status)
	assert.Equal(t, 25_000, d.Payments[1].AmountCents)
}

func TestHandleCallbackConfirmedOrderSkipsTransition(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, orders.StatusConfirmed, true) // seller confirmed before payment landed

	_, err := f.rc.HandleCallback(context.Background(), successCallback())
	require.NoError(t, err)

	d, err := f.orders.GetDetail(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusConfirmed, d.Order.Status)
	assert.Equal(t, orders.PayPaid, d.Order.PaymentStatus)
	assert.Empty(t, f.rec.ByType(notify.EventOrderStatus))
}

func TestHandleCallbackUnknownOrderCode(t *testing.T) {
	f := newFixture(t)
	cb := successCallback()
	cb.OrderCode = "FM000000-9999"
	_, err := f.rc.HandleCallback(context.Background(), cb)
	assert.ErrorIs(t, err, orders.ErrCodeUnknown)
}

func TestHandleCallbackNoCodes(t *testing.T) {
	f := newFixture(t)
	_, err := f.rc.HandleCallback(context.Background(), payment.Callback{Gateway: "midtrans", Success: true})
	assert.ErrorIs(t, err, orders.ErrCodeMissing)
}

func TestHandleCallbackZeroAmountKeepsRecordedAmount(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t, orders.StatusPending, true)

	cb := successCallback()
	cb.AmountCents = 0
	_, err := f.rc.HandleCallback(context.Background(), cb)
	require.NoError(t, err)

	d, err := f.orders.GetDetail(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, 25_000, d.Payments[0].AmountCents)
}
