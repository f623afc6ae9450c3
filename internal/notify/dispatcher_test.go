package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &Dispatcher{Redis: rdb, ServiceName: "notifier"}
}

func envelope(t *testing.T, id, eventType string, payload any) kafkago.Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	b, err := json.Marshal(Envelope{
		EventID:      id,
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "market-api",
		Payload:      raw,
	})
	require.NoError(t, err)
	return kafkago.Message{Value: b}
}

func TestDispatcherHandlesKnownEvents(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	msgs := []kafkago.Message{
		envelope(t, "e1", EventOrderPlaced, OrderPlacedPayload{OrderID: "o1", Code: "FM260828-0001", TotalCents: 5000}),
		envelope(t, "e2", EventOrderStatus, OrderStatusPayload{OrderID: "o1", PreviousStatus: "PENDING", NewStatus: "CONFIRMED"}),
		envelope(t, "e3", EventOrderCancelled, OrderCancelledPayload{OrderID: "o1", NeedsRefund: true}),
		envelope(t, "e4", EventPaymentSucceeded, PaymentPayload{OrderID: "o1", Gateway: "midtrans", AmountCents: 5000}),
	}
	for _, m := range msgs {
		assert.NoError(t, d.Handle(ctx, m))
	}
}

func TestDispatcherUnknownTypePassesThrough(t *testing.T) {
	d := newDispatcher(t)
	m := envelope(t, "e9", "SomethingNew", map[string]string{"k": "v"})
	assert.NoError(t, d.Handle(context.Background(), m), "unknown events must not poison the consumer group")
}

func TestDispatcherRejectsGarbage(t *testing.T) {
	d := newDispatcher(t)
	err := d.Handle(context.Background(), kafkago.Message{Value: []byte("not json")})
	assert.Error(t, err)
}

func TestDispatcherDedupsByEventID(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()
	m := envelope(t, "e1", EventOrderPlaced, OrderPlacedPayload{OrderID: "o1"})

	require.NoError(t, d.Handle(ctx, m))
	require.NoError(t, d.Handle(ctx, m), "redelivery is dropped quietly")
}
