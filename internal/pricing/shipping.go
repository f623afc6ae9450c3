package pricing

import (
	"errors"

	"github.com/ariefcatur/farm-market-core.git/internal/orders"
)

// ErrCrossRegionWholesale rejects wholesale orders shipping outside the
// seller's region; bulk freight is same-region only.
var ErrCrossRegionWholesale = errors.New("wholesale orders cannot cross regions")

// Flat fees per leg. Wholesale same-region is priced for bulk freight.
const (
	shipRetailSameRegion    = 1500
	shipRetailCrossRegion   = 3500
	shipWholesaleSameRegion = 5000
)

// ShippingFee computes the fee for one seller group. It is also the
// enforcement point for the wholesale region rule, which must fire before any
// stock is touched.
func ShippingFee(sellerRegion, buyerRegion string, class orders.Class) (int, error) {
	same := sellerRegion == buyerRegion
	if class == orders.ClassWholesale {
		if !same {
			return 0, ErrCrossRegionWholesale
		}
		return shipWholesaleSameRegion, nil
	}
	if same {
		return shipRetailSameRegion, nil
	}
	return shipRetailCrossRegion, nil
}
