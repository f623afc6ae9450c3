// Package checkout converts one buyer's cart into per-seller orders.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ariefcatur/farm-market-core.git/internal/buyer"
	"github.com/ariefcatur/farm-market-core.git/internal/catalog"
	"github.com/ariefcatur/farm-market-core.git/internal/notify"
	"github.com/ariefcatur/farm-market-core.git/internal/orders"
	"github.com/ariefcatur/farm-market-core.git/internal/pricing"
	"github.com/ariefcatur/farm-market-core.git/internal/stock"
	"github.com/google/uuid"
)

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrUnsellable = errors.New("product is not sellable")
)

type Input struct {
	BuyerID            string
	AddressID          string
	Class              orders.Class
	PaymentMethod      orders.PaymentMethod
	Notes              string
	PONumber           string
	ExpectedTotalCents int // client-confirmed total; 0 skips the guard
}

// GroupFailure reports why one seller's group produced no order. Other
// groups are unaffected.
type GroupFailure struct {
	SellerID string
	Err      error
}

type Result struct {
	Orders   []orders.Detail
	Failures []GroupFailure
}

type Service struct {
	Cart       buyer.CartStore
	Addresses  buyer.AddressStore
	Catalog    catalog.Store
	Ledger     *stock.Ledger
	Orders     orders.Store
	Notifier   notify.Notifier
	CodePrefix string
	// MaxGroupRetry bounds re-runs of one group commit when a stock
	// conflict propagates out of the ledger. Defaults to 3.
	MaxGroupRetry int
}

// pricedLine is a cart line joined with its live product and unit price.
type pricedLine struct {
	cartLineID string
	product    *catalog.Product
	qty        int
	unit       string
	unitCents  int
}

type sellerGroup struct {
	sellerID         string
	lines            []pricedLine
	subtotalCents    int
	shippingFeeCents int
	discountCents    int
	totalCents       int
}

// PlaceOrders runs the whole checkout. Each seller group is its own
// all-or-nothing unit: a failing group never rolls back a committed one, so a
// multi-seller cart may succeed partially with per-seller failure reasons.
func (s *Service) PlaceOrders(ctx context.Context, in Input) (*Result, error) {
	addr, err := s.Addresses.GetAddress(ctx, in.AddressID)
	if err != nil {
		return nil, err
	}
	if addr.UserID != in.BuyerID {
		// foreign address looks exactly like a missing one
		return nil, buyer.ErrAddressNotFound
	}

	cartLines, err := s.Cart.ListLines(ctx, in.BuyerID)
	if err != nil {
		return nil, err
	}
	if len(cartLines) == 0 {
		return nil, ErrEmptyCart
	}

	groups, order, failures := s.buildGroups(ctx, cartLines, in, addr)

	// Price-tampering guard: only meaningful when every group priced
	// cleanly, otherwise the client-side total is stale by construction.
	if in.ExpectedTotalCents > 0 && len(failures) == 0 {
		grand := 0
		for _, g := range groups {
			grand += g.totalCents
		}
		if grand != in.ExpectedTotalCents {
			return nil, orders.ErrTotalMismatch
		}
	}

	res := &Result{Failures: failures}
	var consumed []string
	for _, sellerID := range order {
		g := groups[sellerID]
		detail, ids, err := s.commitGroup(ctx, in, addr, g)
		if err != nil {
			res.Failures = append(res.Failures, GroupFailure{
				SellerID: g.sellerID,
				Err:      fmt.Errorf("seller %s: %w", g.sellerID, err),
			})
			continue
		}
		res.Orders = append(res.Orders, *detail)
		consumed = append(consumed, ids...)
		s.Notifier.OrderPlaced(&detail.Order)
	}

	if len(consumed) > 0 {
		if err := s.Cart.RemoveLines(ctx, consumed); err != nil {
			// orders exist; a fat cart is an annoyance, not a failure
			log.Printf("checkout: remove consumed cart lines: %v", err)
		}
	}

	// single failed group and nothing placed: surface the reason directly
	if len(res.Orders) == 0 && len(res.Failures) > 0 {
		return nil, res.Failures[0].Err
	}
	return res, nil
}

// buildGroups re-fetches every product live (the cart's cached copy is never
// trusted), validates it, prices it, and buckets lines by seller. Validation
// failures knock out the whole seller group, not just the line.
func (s *Service) buildGroups(ctx context.Context, cartLines []buyer.Line, in Input, addr *buyer.Address) (map[string]*sellerGroup, []string, []GroupFailure) {
	groups := make(map[string]*sellerGroup)
	var order []string
	failed := make(map[string]error)

	for _, cl := range cartLines {
		p, err := s.Catalog.GetProduct(ctx, cl.ProductID)
		if err != nil {
			failed["?"+cl.ProductID] = fmt.Errorf("product %s: %w", cl.ProductID, err)
			continue
		}
		if _, bad := failed[p.SellerID]; bad {
			continue
		}
		if !p.Sellable() {
			failed[p.SellerID] = fmt.Errorf("product %s: %w", p.ID, ErrUnsellable)
			delete(groups, p.SellerID)
			continue
		}
		if cl.Qty > p.Stock {
			failed[p.SellerID] = &stock.OutOfStockError{ProductID: p.ID, Requested: cl.Qty, Available: p.Stock}
			delete(groups, p.SellerID)
			continue
		}

		unitCents, unit := pricing.UnitPrice(p, cl.Qty, in.Class)
		g, ok := groups[p.SellerID]
		if !ok {
			g = &sellerGroup{sellerID: p.SellerID}
			groups[p.SellerID] = g
			order = append(order, p.SellerID)
		}
		g.lines = append(g.lines, pricedLine{
			cartLineID: cl.ID,
			product:    p,
			qty:        cl.Qty,
			unit:       unit,
			unitCents:  unitCents,
		})
		g.subtotalCents += unitCents * cl.Qty
	}

	// second pass: shipping + discount per surviving group
	var live []string
	for _, sellerID := range order {
		g, ok := groups[sellerID]
		if !ok {
			continue
		}
		fee, err := pricing.ShippingFee(g.lines[0].product.Region, addr.Region, in.Class)
		if err != nil {
			failed[sellerID] = err
			delete(groups, sellerID)
			continue
		}
		g.shippingFeeCents = fee
		g.discountCents = pricing.Discount(in.Class, g.subtotalCents)
		g.totalCents = g.subtotalCents + g.shippingFeeCents - g.discountCents
		live = append(live, sellerID)
	}

	var failures []GroupFailure
	for sellerID, err := range failed {
		id := sellerID
		if len(id) > 0 && id[0] == '?' {
			id = "" // product unresolvable, seller unknown
		}
		failures = append(failures, GroupFailure{SellerID: id, Err: err})
	}
	return groups, live, failures
}

// commitGroup decrements stock for every line through the ledger and then
// persists order + lines + payment as one unit. Any failure after a decrement
// restores what was taken, so a retry starts from a clean slate. Stock
// conflicts and order-code clashes re-run the whole group (with a fresh code)
// up to MaxGroupRetry times.
func (s *Service) commitGroup(ctx context.Context, in Input, addr *buyer.Address, g *sellerGroup) (*orders.Detail, []string, error) {
	attempts := s.MaxGroupRetry
	if attempts <= 0 {
		attempts = 3
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		detail, ids, err := s.tryCommitGroup(ctx, in, addr, g)
		if err == nil {
			return detail, ids, nil
		}
		lastErr = err
		if !errors.Is(err, stock.ErrConflict) && !errors.Is(err, orders.ErrCodeTaken) {
			break
		}
	}
	return nil, nil, lastErr
}

func (s *Service) tryCommitGroup(ctx context.Context, in Input, addr *buyer.Address, g *sellerGroup) (*orders.Detail, []string, error) {
	var taken []pricedLine
	rollback := func() {
		for _, ln := range taken {
			if err := s.Ledger.Restore(ctx, ln.product.ID, ln.qty); err != nil {
				log.Printf("checkout: restore stock product=%s qty=%d: %v", ln.product.ID, ln.qty, err)
			}
		}
	}

	for _, ln := range g.lines {
		if err := s.Ledger.Decrement(ctx, ln.product.ID, ln.qty); err != nil {
			rollback()
			return nil, nil, err
		}
		taken = append(taken, ln)
	}

	now := time.Now().UTC()
	ord := orders.Order{
		ID:               uuid.NewString(),
		Code:             orders.NewCode(s.CodePrefix, now),
		BuyerID:          in.BuyerID,
		SellerID:         g.sellerID,
		Class:            in.Class,
		Status:           orders.StatusPending,
		PaymentMethod:    in.PaymentMethod,
		PaymentStatus:    initialPaymentStatus(in.PaymentMethod),
		SubtotalCents:    g.subtotalCents,
		ShippingFeeCents: g.shippingFeeCents,
		DiscountCents:    g.discountCents,
		TotalCents:       g.totalCents,
		ShipTo: orders.ShippingSnapshot{
			Recipient: addr.Recipient,
			Phone:     addr.Phone,
			Street:    addr.Street,
			City:      addr.City,
			Region:    addr.Region,
		},
		Notes:    in.Notes,
		PONumber: in.PONumber,
	}

	lines := make([]orders.OrderLine, 0, len(g.lines))
	ids := make([]string, 0, len(g.lines))
	for _, ln := range g.lines {
		lines = append(lines, orders.OrderLine{
			ID:             uuid.NewString(),
			OrderID:        ord.ID,
			ProductID:      ln.product.ID,
			ProductName:    ln.product.Name,
			Unit:           ln.unit,
			UnitPriceCents: ln.unitCents,
			Qty:            ln.qty,
			LineTotalCents: ln.unitCents * ln.qty,
		})
		ids = append(ids, ln.cartLineID)
	}

	pay := orders.Payment{
		ID:          uuid.NewString(),
		OrderID:     ord.ID,
		AmountCents: ord.TotalCents,
		Status:      orders.PaymentPending,
	}

	if err := s.Orders.CreateGroup(ctx, &ord, lines, &pay); err != nil {
		rollback()
		return nil, nil, err
	}

	detail, err := s.Orders.GetDetail(ctx, ord.ID)
	if err != nil {
		return nil, nil, err
	}
	return detail, ids, nil
}

// Cash/invoice orders are settled by later domain events, never by gateway
// callbacks; invoice buyers additionally wait on payment terms.
func initialPaymentStatus(m orders.PaymentMethod) orders.PaymentStatus {
	if m == orders.MethodInvoice {
		return orders.PayAwaitingTerm
	}
	return orders.PayPending
}
