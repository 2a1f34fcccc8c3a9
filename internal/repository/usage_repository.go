package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
	"github.com/fairyhunter13/bakery-promotion-engine/internal/service"
	"github.com/fairyhunter13/bakery-promotion-engine/pkg/database"
)

// UsageRepository provides data access for the promotion usage ledger.
type UsageRepository struct {
	pool PoolInterface
}

// NewUsageRepository creates a new UsageRepository with the given pool.
func NewUsageRepository(pool *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{pool: pool}
}

// NewUsageRepositoryWithPool creates a new UsageRepository with a custom pool interface.
// This is primarily used for testing.
func NewUsageRepositoryWithPool(pool PoolInterface) *UsageRepository {
	return &UsageRepository{pool: pool}
}

func getUsage(ctx context.Context, q database.TxQuerier, query string, promoID uuid.UUID, customerKey string) (model.UsageRecord, error) {
	rec := model.UsageRecord{PromoCodeID: promoID, CustomerKey: customerKey}
	err := q.QueryRow(ctx, query, promoID, customerKey).Scan(&rec.UsageCount, &rec.LastUsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, nil
		}
		return rec, fmt.Errorf("get usage for %s/%s: %w", promoID, customerKey, err)
	}
	return rec, nil
}

// GetUsage returns the usage record for a customer key. A customer who never
// used the promotion gets a zero record, not an error.
func (r *UsageRepository) GetUsage(ctx context.Context, promoID uuid.UUID, customerKey string) (model.UsageRecord, error) {
	return getUsage(ctx, r.pool, `SELECT usage_count, last_used_at FROM promotion_usage
		WHERE promo_code_id = $1 AND customer_key = $2`, promoID, customerKey)
}

// GetUsageForUpdate is GetUsage with a row lock held until the transaction ends.
func (r *UsageRepository) GetUsageForUpdate(ctx context.Context, tx database.TxQuerier, promoID uuid.UUID, customerKey string) (model.UsageRecord, error) {
	return getUsage(ctx, tx, `SELECT usage_count, last_used_at FROM promotion_usage
		WHERE promo_code_id = $1 AND customer_key = $2 FOR UPDATE`, promoID, customerKey)
}

// IncrementUsage adds one use for the customer key, creating the record on
// first use. With a per-customer cap the increment only happens while the
// count is below it; otherwise service.ErrUsageConflict is returned.
func (r *UsageRepository) IncrementUsage(ctx context.Context, tx database.TxQuerier, promoID uuid.UUID, customerKey string, perCustomerCap *int, at time.Time) (int, error) {
	query := `INSERT INTO promotion_usage (promo_code_id, customer_key, usage_count, last_used_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (promo_code_id, customer_key) DO UPDATE
		SET usage_count = promotion_usage.usage_count + 1, last_used_at = EXCLUDED.last_used_at
		WHERE $4::int IS NULL OR promotion_usage.usage_count < $4::int
		RETURNING usage_count`

	var count int
	err := tx.QueryRow(ctx, query, promoID, customerKey, at, perCustomerCap).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, service.ErrUsageConflict
		}
		return 0, fmt.Errorf("increment usage for %s/%s: %w", promoID, customerKey, err)
	}
	return count, nil
}

// InsertRedemption records that an order used a promotion.
// Returns service.ErrAlreadyRedeemed if the order already redeemed it.
func (r *UsageRepository) InsertRedemption(ctx context.Context, tx database.TxQuerier, red *model.Redemption) error {
	query := `INSERT INTO promotion_redemptions (id, promo_code_id, customer_key, order_id, discount_amount, redeemed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query, red.ID, red.PromoCodeID, red.CustomerKey, red.OrderID, red.DiscountAmount, red.RedeemedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrAlreadyRedeemed
		}
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}

// ListUsage returns every usage record for a promotion, most recent first.
// Returns an empty slice (not nil) when there is no usage.
func (r *UsageRepository) ListUsage(ctx context.Context, promoID uuid.UUID) ([]model.UsageRecord, error) {
	query := `SELECT customer_key, usage_count, last_used_at FROM promotion_usage
		WHERE promo_code_id = $1 ORDER BY last_used_at DESC`

	rows, err := r.pool.Query(ctx, query, promoID)
	if err != nil {
		return nil, fmt.Errorf("list usage for %s: %w", promoID, err)
	}
	defer rows.Close()

	records := []model.UsageRecord{}
	for rows.Next() {
		rec := model.UsageRecord{PromoCodeID: promoID}
		if err := rows.Scan(&rec.CustomerKey, &rec.UsageCount, &rec.LastUsedAt); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage rows: %w", err)
	}
	return records, nil
}
