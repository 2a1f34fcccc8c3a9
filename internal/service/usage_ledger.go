package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
	"github.com/fairyhunter13/bakery-promotion-engine/pkg/database"
)

// UsageLedger tracks how often promotions are used, globally and per customer.
type UsageLedger struct {
	promoRepo PromotionRepositoryInterface
	usageRepo UsageRepositoryInterface
	now       func() time.Time
}

// NewUsageLedger creates a new UsageLedger with the given repositories.
func NewUsageLedger(promoRepo PromotionRepositoryInterface, usageRepo UsageRepositoryInterface) *UsageLedger {
	return &UsageLedger{promoRepo: promoRepo, usageRepo: usageRepo, now: time.Now}
}

// GetUsage returns the usage of a promotion by one customer key.
// An empty key has no usage.
func (l *UsageLedger) GetUsage(ctx context.Context, promoID uuid.UUID, customerKey string) (model.UsageRecord, error) {
	if customerKey == "" {
		return model.UsageRecord{PromoCodeID: promoID}, nil
	}
	rec, err := l.usageRepo.GetUsage(ctx, promoID, customerKey)
	if err != nil {
		return rec, fmt.Errorf("get usage: %w", err)
	}
	return rec, nil
}

// GetUsageForUpdate is GetUsage holding the ledger row lock inside tx.
func (l *UsageLedger) GetUsageForUpdate(ctx context.Context, tx database.TxQuerier, promoID uuid.UUID, customerKey string) (model.UsageRecord, error) {
	if customerKey == "" {
		return model.UsageRecord{PromoCodeID: promoID}, nil
	}
	rec, err := l.usageRepo.GetUsageForUpdate(ctx, tx, promoID, customerKey)
	if err != nil {
		return rec, fmt.Errorf("get usage for update: %w", err)
	}
	return rec, nil
}

// RecordUsage writes one use of promo by orderID inside tx:
//  1. the redemption row (ErrAlreadyRedeemed on resubmission of the order)
//  2. the global used_count, only while below usage_limit
//  3. the per-customer count, only while below usage_per_customer
//
// A lost race on 2 or 3 returns ErrUsageConflict and the caller rolls back.
func (l *UsageLedger) RecordUsage(ctx context.Context, tx database.TxQuerier, promo *model.PromotionCode, customerKey, orderID string, discount decimal.Decimal) error {
	if promo.UsagePerCustomer != nil && customerKey == "" {
		return ErrCustomerIdentityRequired
	}
	now := l.now().UTC()

	err := l.usageRepo.InsertRedemption(ctx, tx, &model.Redemption{
		ID:             uuid.New(),
		PromoCodeID:    promo.ID,
		CustomerKey:    customerKey,
		OrderID:        orderID,
		DiscountAmount: discount,
		RedeemedAt:     now,
	})
	if err != nil {
		return err
	}

	if err := l.promoRepo.IncrementUsedCount(ctx, tx, promo.ID); err != nil {
		return err
	}

	if customerKey == "" {
		return nil
	}
	if _, err := l.usageRepo.IncrementUsage(ctx, tx, promo.ID, customerKey, promo.UsagePerCustomer, now); err != nil {
		return err
	}
	return nil
}
