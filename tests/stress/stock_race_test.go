package stress

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/engine"
	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

// TestStockRace_LastUnits has 10 customers race for the last two units of a
// flavor; each Duo box needs both.
func TestStockRace_LastUnits(t *testing.T) {
	cleanupTables(t)

	const concurrentRequests = 10

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svcs := newServices()
	seedCatalog(t, ctx)
	seedStock(t, ctx, svcs, "pistachio", 2)

	var wg sync.WaitGroup
	results := make(chan string, concurrentRequests)
	for i := 0; i < concurrentRequests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svcs.checkout.Confirm(ctx, packOrder(fmt.Sprintf("box-%d", i), "pistachio"))
			results <- confirmOutcome(err)
		}(i)
	}
	wg.Wait()
	close(results)

	counts := map[string]int{}
	for r := range results {
		counts[r]++
	}
	t.Logf("Results: %v", counts)

	assert.Equal(t, 1, counts["ok"])
	assert.Equal(t, concurrentRequests-1, counts[string(engine.ReasonStockExceeded)])

	av, err := svcs.stock.Availability(ctx, "pistachio", model.SizeMini)
	require.NoError(t, err)
	assert.Equal(t, 0, av.Quantity, "Stock must never go negative")
	assert.Equal(t, 0, av.MaxSelectable)
}

// TestStockRace_PreorderIgnoresStock checks that preorder mode confirms every
// order without touching stock rows.
func TestStockRace_PreorderIgnoresStock(t *testing.T) {
	cleanupTables(t)

	const concurrentRequests = 10

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svcs := newServices()
	seedCatalog(t, ctx)
	seedStock(t, ctx, svcs, "pistachio", 0)
	require.NoError(t, svcs.stock.SetOrderMode(ctx, model.OrderModePreorder))

	var wg sync.WaitGroup
	results := make(chan string, concurrentRequests)
	for i := 0; i < concurrentRequests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svcs.checkout.Confirm(ctx, packOrder(fmt.Sprintf("pre-%d", i), "pistachio"))
			results <- confirmOutcome(err)
		}(i)
	}
	wg.Wait()
	close(results)

	counts := map[string]int{}
	for r := range results {
		counts[r]++
	}
	assert.Equal(t, concurrentRequests, counts["ok"], "Results: %v", counts)

	var quantity int
	require.NoError(t, testPool.QueryRow(ctx,
		"SELECT quantity FROM flavor_stock WHERE flavor_id = 'pistachio' AND size = 'mini'").Scan(&quantity))
	assert.Equal(t, 0, quantity)
}

// TestStockRace_FirstAdjustments runs concurrent additions for a flavor size
// that has no stock row yet. Every addition must land.
func TestStockRace_FirstAdjustments(t *testing.T) {
	cleanupTables(t)

	const (
		concurrentRequests = 10
		amount             = 5
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svcs := newServices()

	var wg sync.WaitGroup
	errs := make(chan error, concurrentRequests)
	for i := 0; i < concurrentRequests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			qty := amount
			_, err := svcs.stock.Adjust(ctx, &model.StockAdjustRequest{
				FlavorID:   "hazelnut",
				Size:       model.SizeMedium,
				ChangeType: model.ChangeAddition,
				Amount:     &qty,
				ChangedBy:  fmt.Sprintf("admin-%d", i),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	av, err := svcs.stock.Availability(ctx, "hazelnut", model.SizeMedium)
	require.NoError(t, err)
	assert.Equal(t, concurrentRequests*amount, av.Quantity, "No addition may be lost")

	rows, err := svcs.stock.History(ctx, "hazelnut", model.ItemTypeFlavor, 100)
	require.NoError(t, err)
	require.Len(t, rows, concurrentRequests)

	seenOld := map[int]bool{}
	for _, h := range rows {
		assert.Equal(t, h.OldQuantity+amount, h.NewQuantity)
		seenOld[h.OldQuantity] = true
	}
	assert.Len(t, seenOld, concurrentRequests, "Each history row must start from a distinct quantity")
}
