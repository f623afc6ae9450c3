package notify

import (
	"time"

	kafkax "github.com/ariefcatur/farm-market-core.git/internal/kafka"
	"github.com/ariefcatur/farm-market-core.git/internal/orders"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes envelope events through async producers; the
// producer inbox absorbs the write so the calling request never waits on the
// broker.
type KafkaNotifier struct {
	Orders   *kafkax.Producer // topic order.events
	Payments *kafkax.Producer // topic payment.events
	Service  string
}

var _ Notifier = (*KafkaNotifier)(nil)

func (n *KafkaNotifier) publish(p *kafkax.Producer, eventType, orderID string, payload any) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      n.Service,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (n *KafkaNotifier) OrderPlaced(o *orders.Order) {
	n.publish(n.Orders, EventOrderPlaced, o.ID, OrderPlacedPayload{
		OrderID: o.ID, Code: o.Code, BuyerID: o.BuyerID, SellerID: o.SellerID, TotalCents: o.TotalCents,
	})
}

func (n *KafkaNotifier) StatusChanged(o *orders.Order, previous orders.Status) {
	n.publish(n.Orders, EventOrderStatus, o.ID, OrderStatusPayload{
		OrderID: o.ID, Code: o.Code, PreviousStatus: string(previous), NewStatus: string(o.Status),
	})
}

func (n *KafkaNotifier) Cancelled(o *orders.Order, needsRefund bool) {
	n.publish(n.Orders, EventOrderCancelled, o.ID, OrderCancelledPayload{
		OrderID: o.ID, Code: o.Code, NeedsRefund: needsRefund,
	})
}

func (n *KafkaNotifier) PaymentSucceeded(o *orders.Order, p *orders.Payment) {
	n.publish(n.Payments, EventPaymentSucceeded, o.ID, PaymentPayload{
		OrderID: o.ID, Code: o.Code, PaymentID: p.ID, Gateway: p.Gateway, AmountCents: p.AmountCents,
	})
}

func (n *KafkaNotifier) PaymentFailed(o *orders.Order, p *orders.Payment) {
	n.publish(n.Payments, EventPaymentFailed, o.ID, PaymentPayload{
		OrderID: o.ID, Code: o.Code, PaymentID: p.ID, Gateway: p.Gateway, AmountCents: p.AmountCents,
		Message: p.Message,
	})
}
