// Package notify is the fire-and-forget notification boundary. Implementations
// must never block the calling operation or return failure into it; delivery
// guarantees belong to the downstream dispatcher.
package notify

import "github.com/ariefcatur/farm-market-core.git/internal/orders"

type Notifier interface {
	OrderPlaced(o *orders.Order)
	StatusChanged(o *orders.Order, previous orders.Status)
	Cancelled(o *orders.Order, needsRefund bool)
	PaymentSucceeded(o *orders.Order, p *orders.Payment)
	PaymentFailed(o *orders.Order, p *orders.Payment)
}

// Nop drops everything. Useful default so callers never nil-check.
type Nop struct{}

var _ Notifier = Nop{}

func (Nop) OrderPlaced(*orders.Order)                       {}
func (Nop) StatusChanged(*orders.Order, orders.Status)      {}
func (Nop) Cancelled(*orders.Order, bool)                   {}
func (Nop) PaymentSucceeded(*orders.Order, *orders.Payment) {}
func (Nop) PaymentFailed(*orders.Order, *orders.Payment)    {}
