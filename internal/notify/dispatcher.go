package notify

import (
	"context"
	"fmt"
	"log"

	kafkax "github.com/ariefcatur/farm-market-core.git/internal/kafka"
	"github.com/ariefcatur/farm-market-core.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Dispatcher consumes the event topics and forwards each event to the
// delivery channel. Actual delivery (mail, push) is the downstream
// collaborator; this worker's contract is at-most-once handoff per event_id.
type Dispatcher struct {
	Redis       *redis.Client
	ServiceName string
}

// Handle is mounted as the consumer handler for both topics.
func (d *Dispatcher) Handle(ctx context.Context, m kafkago.Message) error {
	var env Envelope
	if err := kafkax.DecodeEnvelope(m.Value, &env); err != nil {
		return err
	}

	// dedup via Redis; redelivered events are dropped quietly
	dkey := fmt.Sprintf(redisx.KeyDedup, d.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, d.Redis, dkey); exists {
		return nil
	}
	_ = d.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("notify buyer=%s seller=%s: order %s placed, total=%d", p.BuyerID, p.SellerID, p.Code, p.TotalCents)
	case EventOrderStatus:
		p, err := kafkax.UnwrapPayload[OrderStatusPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("notify: order %s %s -> %s", p.Code, p.PreviousStatus, p.NewStatus)
	case EventOrderCancelled:
		p, err := kafkax.UnwrapPayload[OrderCancelledPayload](env.Payload)
		if err != nil {
			return err
		}
		if p.NeedsRefund {
			log.Printf("notify: order %s cancelled, REFUND FOLLOW-UP required", p.Code)
		} else {
			log.Printf("notify: order %s cancelled", p.Code)
		}
	case EventPaymentSucceeded, EventPaymentFailed:
		p, err := kafkax.UnwrapPayload[PaymentPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("notify: order %s payment %s via %s amount=%d", p.Code, env.EventType, p.Gateway, p.AmountCents)
	default:
		// unknown event types pass through without poisoning the group
		log.Printf("notify: skip event type %q", env.EventType)
	}
	return nil
}
