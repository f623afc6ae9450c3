package stock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/farm-market-core.git/internal/catalog"
	"github.com/ariefcatur/farm-market-core.git/internal/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T, qty int) *catalog.MemoryStore {
	t.Helper()
	cs := catalog.NewMemoryStore()
	cs.Put(catalog.Product{ID: "p1", Status: catalog.ProductActive, Stock: qty})
	return cs
}

func TestDecrementAndRestore(t *testing.T) {
	cs := seeded(t, 10)
	l := stock.NewLedger(cs)
	ctx := context.Background()

	require.NoError(t, l.Decrement(ctx, "p1", 4))
	qty, _, err := cs.GetStock(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 6, qty)

	require.NoError(t, l.Restore(ctx, "p1", 4))
	qty, _, err = cs.GetStock(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, qty)
}

func TestDecrementOutOfStock(t *testing.T) {
	cs := seeded(t, 3)
	l := stock.NewLedger(cs)

	err := l.Decrement(context.Background(), "p1", 5)
	var oos *stock.OutOfStockError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, "p1", oos.ProductID)
	assert.Equal(t, 5, oos.Requested)
	assert.Equal(t, 3, oos.Available)

	qty, _, err := cs.GetStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, qty, "a rejected decrement leaves stock untouched")
}

func TestDecrementUnknownProduct(t *testing.T) {
	l := stock.NewLedger(catalog.NewMemoryStore())
	err := l.Decrement(context.Background(), "nope", 1)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

// Concurrent buyers racing on the same product must never drive stock
// negative; the version check serializes winners and the losers retry.
func TestConcurrentDecrementsNeverOversell(t *testing.T) {
	const start = 50
	cs := seeded(t, start)
	l := stock.NewLedger(cs)
	l.MaxAttempts = 100 // enough retries that the race itself never fails
	l.Backoff = 0

	var wg sync.WaitGroup
	var mu sync.Mutex
	sold := 0
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Decrement(context.Background(), "p1", 1); err == nil {
				mu.Lock()
				sold++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	qty, _, err := cs.GetStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, qty, 0)
	assert.Equal(t, start-sold, qty, "every successful decrement accounts for exactly one unit")
}

// contentiousStore always fails the swap, simulating a writer that wins the
// version race every time.
type contentiousStore struct {
	calls int
}

func (s *contentiousStore) GetStock(context.Context, string) (int, int, error) {
	return 10, s.calls, nil
}

func (s *contentiousStore) CompareAndSwapStock(context.Context, string, int, int) (bool, error) {
	s.calls++
	return false, nil
}

func TestDecrementConflictAfterRetries(t *testing.T) {
	cs := &contentiousStore{}
	l := &stock.Ledger{Store: cs, MaxAttempts: 3, Backoff: 0}

	err := l.Decrement(context.Background(), "p1", 1)
	assert.ErrorIs(t, err, stock.ErrConflict)
	assert.Equal(t, 3, cs.calls)
}

func TestDecrementContextCancelled(t *testing.T) {
	cs := &contentiousStore{}
	l := &stock.Ledger{Store: cs, MaxAttempts: 5, Backoff: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Decrement(ctx, "p1", 1)
	assert.ErrorIs(t, err, context.Canceled)
}
