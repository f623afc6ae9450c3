// Package pricing holds the three pure calculators: unit price, shipping fee,
// discount. No I/O, no clock, nothing but tables and arithmetic.
package pricing

import (
	"github.com/ariefcatur/farm-market-core.git/internal/catalog"
	"github.com/ariefcatur/farm-market-core.git/internal/orders"
)

// UnitPrice picks the price and display unit for one line.
//
// Wholesale buyers on wholesale-enabled products get the highest min-qty tier
// their quantity reaches, falling back to the wholesale base price below the
// lowest tier. Everyone else pays retail.
func UnitPrice(p *catalog.Product, qty int, class orders.Class) (cents int, unit string) {
	if class != orders.ClassWholesale || !p.WholesaleEnabled {
		return p.PriceCents, p.Unit
	}

	unit = p.Unit
	if p.WholesaleUnit != "" {
		unit = p.WholesaleUnit
	}

	cents = p.WholesaleBasePriceCents
	best := -1
	for _, t := range p.Tiers {
		if qty >= t.MinQty && t.MinQty > best {
			best = t.MinQty
			cents = t.PriceCents
		}
	}
	return cents, unit
}
