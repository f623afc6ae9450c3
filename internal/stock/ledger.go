// Package stock is the only place allowed to mutate product stock. Checkout
// decrements and cancellation/return restores both go through the Ledger, so
// the optimistic-retry policy lives in exactly one spot.
package stock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrConflict surfaces after the bounded retry is exhausted; the operation is
// safe to retry from the caller.
var ErrConflict = errors.New("stock version conflict")

type OutOfStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("out of stock: product %s requested %d available %d",
		e.ProductID, e.Requested, e.Available)
}

// StockStore is the slice of the catalog the ledger needs: a versioned read
// and a compare-and-swap write.
type StockStore interface {
	GetStock(ctx context.Context, productID string) (qty, version int, err error)
	CompareAndSwapStock(ctx context.Context, productID string, newQty, version int) (bool, error)
}

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 20 * time.Millisecond
)

type Ledger struct {
	Store       StockStore
	MaxAttempts int
	Backoff     time.Duration
}

func NewLedger(store StockStore) *Ledger {
	return &Ledger{Store: store, MaxAttempts: defaultMaxAttempts, Backoff: defaultBackoff}
}

// Decrement takes qty units off the product's stock. A concurrent writer
// bumps the version and we retry the read-verify-write; after MaxAttempts the
// race surfaces as ErrConflict rather than a silent oversell.
func (l *Ledger) Decrement(ctx context.Context, productID string, qty int) error {
	return l.apply(ctx, productID, -qty)
}

// Restore puts qty units back (cancellation, return).
func (l *Ledger) Restore(ctx context.Context, productID string, qty int) error {
	return l.apply(ctx, productID, qty)
}

func (l *Ledger) apply(ctx context.Context, productID string, delta int) error {
	attempts := l.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.Backoff):
			}
		}
		cur, version, err := l.Store.GetStock(ctx, productID)
		if err != nil {
			return err
		}
		next := cur + delta
		if next < 0 {
			return &OutOfStockError{ProductID: productID, Requested: -delta, Available: cur}
		}
		ok, err := l.Store.CompareAndSwapStock(ctx, productID, next, version)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrConflict
}
