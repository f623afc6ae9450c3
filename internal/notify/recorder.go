package notify

import (
	"sync"

	"github.com/ariefcatur/farm-market-core.git/internal/orders"
)

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	mu     sync.Mutex
	Events []RecordedEvent
}

type RecordedEvent struct {
	Type        string
	OrderID     string
	Previous    orders.Status
	NeedsRefund bool
	PaymentID   string
}

var _ Notifier = (*Recorder)(nil)

func (r *Recorder) add(ev RecordedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
}

func (r *Recorder) OrderPlaced(o *orders.Order) {
	r.add(RecordedEvent{Type: EventOrderPlaced, OrderID: o.ID})
}

func (r *Recorder) StatusChanged(o *orders.Order, previous orders.Status) {
	r.add(RecordedEvent{Type: EventOrderStatus, OrderID: o.ID, Previous: previous})
}

func (r *Recorder) Cancelled(o *orders.Order, needsRefund bool) {
	r.add(RecordedEvent{Type: EventOrderCancelled, OrderID: o.ID, NeedsRefund: needsRefund})
}

func (r *Recorder) PaymentSucceeded(o *orders.Order, p *orders.Payment) {
	r.add(RecordedEvent{Type: EventPaymentSucceeded, OrderID: o.ID, PaymentID: p.ID})
}

func (r *Recorder) PaymentFailed(o *orders.Order, p *orders.Payment) {
	r.add(RecordedEvent{Type: EventPaymentFailed, OrderID: o.ID, PaymentID: p.ID})
}

// ByType filters recorded events.
func (r *Recorder) ByType(t string) []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []RecordedEvent
	for _, ev := range r.Events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
