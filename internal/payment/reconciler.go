// Package payment reconciles asynchronous gateway callbacks against the
// payment records created at checkout, applying each outcome exactly once.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ariefcatur/farm-market-core.git/internal/notify"
	"github.com/ariefcatur/farm-market-core.git/internal/orders"
	"github.com/google/uuid"
)

// Callback is the gateway-agnostic payload. Signature verification happened
// upstream in the per-gateway adapter; only authenticated payloads reach the
// reconciler.
type Callback struct {
	Gateway     string
	OrderCode   string
	TxCode      string
	Success     bool
	AmountCents int
	Message     string
}

type Reconciler struct {
	Orders   orders.Store
	Notifier notify.Notifier
}

// HandleCallback locates the matching payment, by transaction code first
// (duplicate delivery) then by order code, and applies the outcome. Only a
// PENDING payment mutates; a terminal one means this webhook was already
// processed and the redelivery is logged and dropped. The terminal write
// itself is a CAS on PENDING, so two racing deliveries settle exactly once.
// The matched order is returned so the caller can drop any cached view of it.
func (r *Reconciler) HandleCallback(ctx context.Context, cb Callback) (*orders.Order, error) {
	p, ord, err := r.match(ctx, cb)
	if err != nil {
		return nil, err
	}

	if p.Status.Terminal() {
		log.Printf("payment: duplicate callback gateway=%s tx=%s payment=%s status=%s, discarded",
			cb.Gateway, cb.TxCode, p.ID, p.Status)
		return ord, nil
	}

	p.Gateway = cb.Gateway
	p.TxCode = cb.TxCode
	p.Message = cb.Message
	if cb.AmountCents > 0 {
		p.AmountCents = cb.AmountCents
	}

	if cb.Success {
		return ord, r.applySuccess(ctx, p, ord)
	}
	return ord, r.applyFailure(ctx, p, ord)
}

func (r *Reconciler) match(ctx context.Context, cb Callback) (*orders.Payment, *orders.Order, error) {
	if cb.TxCode != "" {
		p, err := r.Orders.FindPaymentByTxCode(ctx, cb.Gateway, cb.TxCode)
		if err == nil {
			ord, err := r.Orders.GetOrder(ctx, p.OrderID)
			if err != nil {
				return nil, nil, err
			}
			return p, ord, nil
		}
		if !errors.Is(err, orders.ErrNotFound) {
			return nil, nil, err
		}
	}

	if cb.OrderCode == "" {
		return nil, nil, orders.ErrCodeMissing
	}
	ord, err := r.Orders.GetOrderByCode(ctx, cb.OrderCode)
	if errors.Is(err, orders.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: %s", orders.ErrCodeUnknown, cb.OrderCode)
	}
	if err != nil {
		return nil, nil, err
	}

	p, err := r.Orders.FindPendingPayment(ctx, ord.ID)
	if errors.Is(err, orders.ErrNotFound) {
		// checkout's payment already settled or never existed; keep the
		// callback anyway on a fresh record
		p = &orders.Payment{
			ID:          uuid.NewString(),
			OrderID:     ord.ID,
			AmountCents: ord.TotalCents,
			Gateway:     cb.Gateway,
			Status:      orders.PaymentPending,
		}
		if err := r.Orders.AddPayment(ctx, p); err != nil {
			return nil, nil, err
		}
		return p, ord, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return p, ord, nil
}

// settle writes the terminal payment state. A lost CAS means a concurrent
// delivery of the same callback settled it first; that racer owns the side
// effects, this one is done.
func (r *Reconciler) settle(ctx context.Context, p *orders.Payment) (won bool, err error) {
	err = r.Orders.SavePayment(ctx, p)
	if errors.Is(err, orders.ErrConflict) {
		log.Printf("payment: concurrent callback already settled payment %s, discarded", p.ID)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Reconciler) applySuccess(ctx context.Context, p *orders.Payment, ord *orders.Order) error {
	now := time.Now().UTC()
	p.Status = orders.PaymentSuccess
	p.PaidAt = &now
	won, err := r.settle(ctx, p)
	if err != nil || !won {
		return err
	}
	if err := r.Orders.SetPaymentStatus(ctx, ord.ID, orders.PayPaid); err != nil {
		return err
	}
	ord.PaymentStatus = orders.PayPaid

	if ord.Status == orders.StatusPending {
		err := r.Orders.TransitionStatus(ctx, ord.ID, orders.StatusPending, orders.StatusConfirmed)
		switch {
		case err == nil:
			prev := ord.Status
			ord.Status = orders.StatusConfirmed
			r.Notifier.StatusChanged(ord, prev)
		case errors.Is(err, orders.ErrConflict):
			// somebody (seller confirm, buyer cancel) moved it first;
			// payment is recorded either way
			log.Printf("payment: order %s moved during reconciliation", ord.ID)
		default:
			return err
		}
	}

	r.Notifier.PaymentSucceeded(ord, p)
	return nil
}

func (r *Reconciler) applyFailure(ctx context.Context, p *orders.Payment, ord *orders.Order) error {
	p.Status = orders.PaymentFailed
	won, err := r.settle(ctx, p)
	if err != nil || !won {
		return err
	}
	// order status stays put so the buyer can retry payment
	if err := r.Orders.SetPaymentStatus(ctx, ord.ID, orders.PayFailed); err != nil {
		return err
	}
	ord.PaymentStatus = orders.PayFailed
	r.Notifier.PaymentFailed(ord, p)
	return nil
}
