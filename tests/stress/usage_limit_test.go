// Package stress contains dockertest-backed concurrency tests for order
// confirmation: promotion usage caps, same-order double submission and
// last-unit stock.
package stress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/engine"
	"github.com/fairyhunter13/bakery-promotion-engine/internal/service"
)

// confirmOutcome buckets the result of one concurrent Confirm call.
func confirmOutcome(err error) string {
	var rule *service.RuleViolationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &rule):
		return string(rule.Reason)
	case errors.Is(err, service.ErrAlreadyRedeemed):
		return "already_redeemed"
	case errors.Is(err, service.ErrUsageConflict):
		return "conflict"
	}
	return "error: " + err.Error()
}

// TestUsageLimit_SingleUse fires 20 confirmations from different customers at
// a promotion with usage_limit=1. Exactly one may redeem it.
func TestUsageLimit_SingleUse(t *testing.T) {
	cleanupTables(t)

	const (
		promoCode          = "ONLYONE"
		concurrentRequests = 20
		timeout            = 30 * time.Second
	)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	svcs := newServices()
	seedCatalog(t, ctx)
	promoID := seedPromotion(t, ctx, svcs, promoCode, 1, nil)

	var wg sync.WaitGroup
	results := make(chan string, concurrentRequests)
	for i := 0; i < concurrentRequests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svcs.checkout.Confirm(ctx, productOrder(
				fmt.Sprintf("order-%d", i), promoCode, fmt.Sprintf("customer-%d", i)))
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

	assert.Equal(t, 1, counts["ok"], "Exactly one confirmation should redeem the promotion")
	assert.Equal(t, concurrentRequests-1, counts[string(engine.ReasonUsageLimitReached)]+counts["conflict"],
		"Every other confirmation should hit the usage limit")

	var usedCount, redemptions int
	err := testPool.QueryRow(ctx, "SELECT used_count FROM promotion_codes WHERE id = $1", promoID).Scan(&usedCount)
	require.NoError(t, err)
	err = testPool.QueryRow(ctx, "SELECT COUNT(*) FROM promotion_redemptions WHERE promo_code_id = $1", promoID).Scan(&redemptions)
	require.NoError(t, err)

	assert.Equal(t, 1, usedCount, "used_count must never pass usage_limit")
	assert.Equal(t, 1, redemptions)
}

// TestUsageLimit_PerCustomer sends 10 different orders from the same customer
// at a promotion allowing two uses per customer.
func TestUsageLimit_PerCustomer(t *testing.T) {
	cleanupTables(t)

	const (
		promoCode          = "TWICE"
		concurrentRequests = 10
		customerID         = "customer-greedy"
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svcs := newServices()
	seedCatalog(t, ctx)
	promoID := seedPromotion(t, ctx, svcs, promoCode, 0, intPtr(2))

	var wg sync.WaitGroup
	results := make(chan string, concurrentRequests)
	for i := 0; i < concurrentRequests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svcs.checkout.Confirm(ctx, productOrder(fmt.Sprintf("greedy-%d", i), promoCode, customerID))
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

	assert.Equal(t, 2, counts["ok"])
	assert.Equal(t, concurrentRequests-2, counts[string(engine.ReasonCustomerLimitReached)]+counts["conflict"])

	var usageCount int
	err := testPool.QueryRow(ctx,
		"SELECT usage_count FROM promotion_usage WHERE promo_code_id = $1 AND customer_key = $2",
		promoID, "customer:"+customerID).Scan(&usageCount)
	require.NoError(t, err)
	assert.Equal(t, 2, usageCount)
}
