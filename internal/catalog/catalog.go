package catalog

import (
	"context"
	"errors"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "ACTIVE"
	ProductInactive ProductStatus = "INACTIVE"
)

var ErrNotFound = errors.New("product not found")

// Tier is one wholesale price break: orders of at least MinQty units pay
// PriceCents per unit.
type Tier struct {
	MinQty     int
	PriceCents int
}

type Product struct {
	ID                      string
	SellerID                string
	Name                    string
	Unit                    string
	Status                  ProductStatus
	Stock                   int
	Version                 int // optimistic locking
	PriceCents              int
	WholesaleEnabled        bool
	WholesaleBasePriceCents int
	WholesaleUnit           string
	Tiers                   []Tier
	Region                  string
}

func (p *Product) Sellable() bool { return p.Status == ProductActive }

// Store is the catalog collaborator. Reads are free-form; the only writes the
// core ever performs are the version-guarded stock swaps used by the ledger.
type Store interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	GetStock(ctx context.Context, productID string) (qty, version int, err error)
	CompareAndSwapStock(ctx context.Context, productID string, newQty, version int) (bool, error)
}
