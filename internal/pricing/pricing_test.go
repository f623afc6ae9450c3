package pricing

import (
	"testing"

	"github.com/ariefcatur/farm-market-core.git/internal/catalog"
	"github.com/ariefcatur/farm-market-core.git/internal/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wholesaleProduct() *catalog.Product {
	return &catalog.Product{
		ID:                      "p1",
		Unit:                    "kg",
		PriceCents:              1200,
		WholesaleEnabled:        true,
		WholesaleBasePriceCents: 1000,
		WholesaleUnit:           "sack",
		Tiers: []catalog.Tier{
			{MinQty: 10, PriceCents: 900},
			{MinQty: 50, PriceCents: 800},
		},
	}
}

func TestUnitPriceRetail(t *testing.T) {
	p := wholesaleProduct()
	cents, unit := UnitPrice(p, 100, orders.ClassRetail)
	assert.Equal(t, 1200, cents, "retail buyers never see wholesale tiers")
	assert.Equal(t, "kg", unit)
}

func TestUnitPriceWholesaleTiers(t *testing.T) {
	p := wholesaleProduct()

	tests := []struct {
		name  string
		qty   int
		cents int
	}{
		{"below lowest tier falls back to base", 5, 1000},
		{"exactly at tier boundary", 10, 900},
		{"between tiers uses lower tier", 49, 900},
		{"highest reached tier wins", 50, 800},
		{"far above highest tier", 500, 800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cents, unit := UnitPrice(p, tt.qty, orders.ClassWholesale)
			assert.Equal(t, tt.cents, cents)
			assert.Equal(t, "sack", unit)
		})
	}
}

func TestUnitPriceWholesaleDisabled(t *testing.T) {
	p := wholesaleProduct()
	p.WholesaleEnabled = false
	cents, unit := UnitPrice(p, 100, orders.ClassWholesale)
	assert.Equal(t, 1200, cents, "wholesale class on a retail-only product pays retail")
	assert.Equal(t, "kg", unit)
}

func TestUnitPriceWholesaleUnitFallback(t *testing.T) {
	p := wholesaleProduct()
	p.WholesaleUnit = ""
	_, unit := UnitPrice(p, 10, orders.ClassWholesale)
	assert.Equal(t, "kg", unit)
}

func TestShippingFee(t *testing.T) {
	fee, err := ShippingFee("jabar", "jabar", orders.ClassRetail)
	require.NoError(t, err)
	assert.Equal(t, 1500, fee)

	fee, err = ShippingFee("jabar", "jatim", orders.ClassRetail)
	require.NoError(t, err)
	assert.Equal(t, 3500, fee)

	fee, err = ShippingFee("jabar", "jabar", orders.ClassWholesale)
	require.NoError(t, err)
	assert.Equal(t, 5000, fee)
}

func TestShippingFeeWholesaleCrossRegion(t *testing.T) {
	_, err := ShippingFee("jabar", "jatim", orders.ClassWholesale)
	assert.ErrorIs(t, err, ErrCrossRegionWholesale)
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name     string
		class    orders.Class
		subtotal int
		want     int
	}{
		{"retail below all thresholds", orders.ClassRetail, 49_999, 0},
		{"retail first threshold", orders.ClassRetail, 50_000, 2_000},
		{"retail highest threshold", orders.ClassRetail, 100_000, 5_000},
		{"retail far above", orders.ClassRetail, 10_000_000, 5_000},
		{"wholesale below all thresholds", orders.ClassWholesale, 499_999, 0},
		{"wholesale first threshold", orders.ClassWholesale, 500_000, 25_000},
		{"wholesale highest threshold", orders.ClassWholesale, 1_000_000, 60_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Discount(tt.class, tt.subtotal))
		})
	}
}
