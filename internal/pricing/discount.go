package pricing

import "github.com/ariefcatur/farm-market-core.git/internal/orders"

type discountTier struct {
	thresholdCents int
	amountCents    int
}

// Fixed threshold tables only; percentage vouchers are out until the voucher
// service ships.
var discountTiers = map[orders.Class][]discountTier{
	orders.ClassRetail: {
		{thresholdCents: 100_000, amountCents: 5_000},
		{thresholdCents: 50_000, amountCents: 2_000},
	},
	orders.ClassWholesale: {
		{thresholdCents: 1_000_000, amountCents: 60_000},
		{thresholdCents: 500_000, amountCents: 25_000},
	},
}

// Discount returns the amount for the highest threshold the subtotal meets,
// zero when none do. Tables are ordered highest first.
func Discount(class orders.Class, subtotalCents int) int {
	for _, t := range discountTiers[class] {
		if subtotalCents >= t.thresholdCents {
			return t.amountCents
		}
	}
	return 0
}
