// Package buyer holds the buyer-side collaborators checkout consumes: the
// cart snapshot and the shipping address book.
package buyer

import (
	"context"
	"errors"
)

var (
	ErrAddressNotFound = errors.New("address not found")
)

// Line is one cart row. Read-only to the core; checkout removes only the
// lines it actually converted into an order.
type Line struct {
	ID        string
	BuyerID   string
	ProductID string
	Qty       int
}

type Address struct {
	ID        string
	UserID    string
	Recipient string
	Phone     string
	Street    string
	City      string
	Region    string
}

type CartStore interface {
	ListLines(ctx context.Context, buyerID string) ([]Line, error)
	RemoveLines(ctx context.Context, ids []string) error
}

type AddressStore interface {
	// GetAddress resolves an address; ownership is the caller's check.
	GetAddress(ctx context.Context, id string) (*Address, error)
}
