package orders

import "time"

type Class string

const (
	ClassRetail    Class = "RETAIL"
	ClassWholesale Class = "WHOLESALE"
)

type PaymentMethod string

const (
	MethodGateway PaymentMethod = "GATEWAY"
	MethodCOD     PaymentMethod = "COD"
	MethodInvoice PaymentMethod = "INVOICE"
)

type PaymentStatus string

const (
	PayPending      PaymentStatus = "PENDING"
	PayAwaitingTerm PaymentStatus = "AWAITING_TERM"
	PayPaid         PaymentStatus = "PAID"
	PayFailed       PaymentStatus = "FAILED"
	PayRefunded     PaymentStatus = "REFUNDED"
)

// PayState is the state of a single payment record (not the order-level
// payment status above). Terminal states never transition out.
type PayState string

const (
	PaymentPending PayState = "PENDING"
	PaymentSuccess PayState = "SUCCESS"
	PaymentFailed  PayState = "FAILED"
)

func (s PayState) Terminal() bool {
	return s == PaymentSuccess || s == PaymentFailed
}

// ShippingSnapshot is the address frozen onto the order at checkout time.
type ShippingSnapshot struct {
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	City      string `json:"city"`
	Region    string `json:"region"`
}

type Order struct {
	ID               string
	Code             string // buyer-facing, join key for gateway callbacks
	BuyerID          string
	SellerID         string
	Class            Class
	Status           Status // lihat status.go
	PaymentMethod    PaymentMethod
	PaymentStatus    PaymentStatus
	SubtotalCents    int
	ShippingFeeCents int
	DiscountCents    int
	TotalCents       int
	ShipTo           ShippingSnapshot
	Notes            string
	PONumber         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderLine is an immutable priced snapshot; later catalog edits never
// touch it.
type OrderLine struct {
	ID             string
	OrderID        string
	ProductID      string
	ProductName    string
	Unit           string
	UnitPriceCents int
	Qty            int
	LineTotalCents int
}

type Payment struct {
	ID          string
	OrderID     string
	AmountCents int
	Gateway     string
	TxCode      string
	Status      PayState
	PaidAt      *time.Time
	Message     string
	CreatedAt   time.Time
}

// Detail is an order reloaded with everything attached.
type Detail struct {
	Order    Order
	Lines    []OrderLine
	Payments []Payment
}
