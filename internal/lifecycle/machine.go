// Package lifecycle drives an order through its legal status transitions and
// runs the side effects a transition owes: stock restoration, cash-on-delivery
// payment coupling, notifications.
package lifecycle

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ariefcatur/farm-market-core.git/internal/notify"
	"github.com/ariefcatur/farm-market-core.git/internal/orders"
	"github.com/ariefcatur/farm-market-core.git/internal/stock"
	"github.com/google/uuid"
)

type Service struct {
	Orders   orders.Store
	Ledger   *stock.Ledger
	Notifier notify.Notifier
}

// Transition applies one status change on behalf of an actor. The write is a
// CAS on the status read here, so two racing updates resolve to exactly one
// winner; the loser sees the transition rejected from the new state.
func (s *Service) Transition(ctx context.Context, actor orders.Actor, orderID string, to orders.Status) (*orders.Order, error) {
	o, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := orders.Authorize(actor, o, to); err != nil {
		return nil, err
	}

	prev := o.Status
	if err := s.Orders.TransitionStatus(ctx, orderID, prev, to); err != nil {
		if errors.Is(err, orders.ErrConflict) {
			if cur, gerr := s.Orders.GetOrder(ctx, orderID); gerr == nil {
				return nil, &orders.InvalidTransitionError{From: cur.Status, To: to}
			}
		}
		return nil, err
	}
	o.Status = to

	switch to {
	case orders.StatusDelivered:
		s.onDelivered(ctx, o)
	case orders.StatusCancelled:
		s.onReversal(ctx, o, true)
	case orders.StatusReturned:
		s.onReversal(ctx, o, false)
	}

	s.Notifier.StatusChanged(o, prev)
	return o, nil
}

// Cancel is the buyer-facing shortcut for Transition(..., CANCELLED).
func (s *Service) Cancel(ctx context.Context, actor orders.Actor, orderID string) (*orders.Order, error) {
	return s.Transition(ctx, actor, orderID, orders.StatusCancelled)
}

// onDelivered couples cash-on-delivery settlement to the delivery event: the
// courier handing over goods is the payment.
func (s *Service) onDelivered(ctx context.Context, o *orders.Order) {
	if o.PaymentMethod != orders.MethodCOD || o.PaymentStatus != orders.PayPending {
		return
	}
	if err := s.Orders.SetPaymentStatus(ctx, o.ID, orders.PayPaid); err != nil {
		log.Printf("lifecycle: set payment status order=%s: %v", o.ID, err)
		return
	}
	o.PaymentStatus = orders.PayPaid

	now := time.Now().UTC()
	cash := orders.Payment{
		ID:          uuid.NewString(),
		OrderID:     o.ID,
		AmountCents: o.TotalCents,
		Gateway:     "cash",
		Status:      orders.PaymentSuccess,
		PaidAt:      &now,
	}
	if err := s.Orders.AddPayment(ctx, &cash); err != nil {
		log.Printf("lifecycle: record cash payment order=%s: %v", o.ID, err)
	}
}

// onReversal restores stock for every line and resolves the order-level
// payment status. A PAID order gets REFUNDED and is flagged for manual
// follow-up through the cancellation notification.
func (s *Service) onReversal(ctx context.Context, o *orders.Order, cancelled bool) {
	lines, err := s.Orders.ListLines(ctx, o.ID)
	if err != nil {
		log.Printf("lifecycle: list lines order=%s: %v", o.ID, err)
	}
	for _, ln := range lines {
		if err := s.Ledger.Restore(ctx, ln.ProductID, ln.Qty); err != nil {
			log.Printf("lifecycle: restore stock order=%s product=%s qty=%d: %v",
				o.ID, ln.ProductID, ln.Qty, err)
		}
	}

	needsRefund := false
	switch o.PaymentStatus {
	case orders.PayPaid:
		needsRefund = true
		o.PaymentStatus = orders.PayRefunded
	case orders.PayPending, orders.PayAwaitingTerm:
		if cancelled {
			o.PaymentStatus = orders.PayFailed
		}
	}
	if err := s.Orders.SetPaymentStatus(ctx, o.ID, o.PaymentStatus); err != nil {
		log.Printf("lifecycle: set payment status order=%s: %v", o.ID, err)
	}

	if cancelled {
		s.Notifier.Cancelled(o, needsRefund)
	}
}
