package orders

import "context"

// Store persists the order aggregate. CreateGroup commits one seller group
// (order + lines + initial payment) as a unit; a clash on the order code
// returns ErrCodeTaken so the caller can draw a fresh one. TransitionStatus
// is a CAS on the expected from-status, and SavePayment is a CAS on PENDING,
// so concurrent racers lose with ErrConflict instead of silently overwriting
// each other.
type Store interface {
	CreateGroup(ctx context.Context, ord *Order, lines []OrderLine, pay *Payment) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	GetOrderByCode(ctx context.Context, code string) (*Order, error)
	GetDetail(ctx context.Context, id string) (*Detail, error)
	ListLines(ctx context.Context, orderID string) ([]OrderLine, error)
	TransitionStatus(ctx context.Context, orderID string, from, to Status) error
	SetPaymentStatus(ctx context.Context, orderID string, ps PaymentStatus) error
	FindPaymentByTxCode(ctx context.Context, gateway, txCode string) (*Payment, error)
	FindPendingPayment(ctx context.Context, orderID string) (*Payment, error)
	AddPayment(ctx context.Context, p *Payment) error
	SavePayment(ctx context.Context, p *Payment) error
}
