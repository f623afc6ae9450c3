package notify

import (
	"encoding/json"
	"time"
)

const (
	TopicOrderEvents   = "order.events"
	TopicPaymentEvents = "payment.events"
)

const (
	EventOrderPlaced      = "OrderPlaced"
	EventOrderStatus      = "OrderStatusChanged"
	EventOrderCancelled   = "OrderCancelled"
	EventPaymentSucceeded = "PaymentSucceeded"
	EventPaymentFailed    = "PaymentFailed"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID    string `json:"order_id"`
	Code       string `json:"code"`
	BuyerID    string `json:"buyer_id"`
	SellerID   string `json:"seller_id"`
	TotalCents int    `json:"total_cents"`
}

type OrderStatusPayload struct {
	OrderID        string `json:"order_id"`
	Code           string `json:"code"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
}

type OrderCancelledPayload struct {
	OrderID     string `json:"order_id"`
	Code        string `json:"code"`
	NeedsRefund bool   `json:"needs_refund"` // PAID order cancelled, manual follow-up
}

type PaymentPayload struct {
	OrderID     string `json:"order_id"`
	Code        string `json:"code"`
	PaymentID   string `json:"payment_id"`
	Gateway     string `json:"gateway"`
	AmountCents int    `json:"amount_cents"`
	Message     string `json:"message,omitempty"`
}

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
