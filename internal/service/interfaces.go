package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
	"github.com/fairyhunter13/bakery-promotion-engine/pkg/database"
)

// PromotionRepositoryInterface defines the interface for promotion data access.
type PromotionRepositoryInterface interface {
	Insert(ctx context.Context, promo *model.PromotionCode) error
	Update(ctx context.Context, promo *model.PromotionCode) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.PromotionCode, error)
	GetByCode(ctx context.Context, code string) (*model.PromotionCode, error)
	GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.PromotionCode, error)
	List(ctx context.Context, filter model.PromotionListFilter) ([]model.PromotionCode, int, error)
	IncrementUsedCount(ctx context.Context, tx database.TxQuerier, id uuid.UUID) error
}

// UsageRepositoryInterface defines the interface for the promotion usage ledger.
type UsageRepositoryInterface interface {
	GetUsage(ctx context.Context, promoID uuid.UUID, customerKey string) (model.UsageRecord, error)
	GetUsageForUpdate(ctx context.Context, tx database.TxQuerier, promoID uuid.UUID, customerKey string) (model.UsageRecord, error)
	IncrementUsage(ctx context.Context, tx database.TxQuerier, promoID uuid.UUID, customerKey string, perCustomerCap *int, at time.Time) (int, error)
	InsertRedemption(ctx context.Context, tx database.TxQuerier, r *model.Redemption) error
	ListUsage(ctx context.Context, promoID uuid.UUID) ([]model.UsageRecord, error)
}

// StockRepositoryInterface defines the interface for flavor stock data access.
type StockRepositoryInterface interface {
	Get(ctx context.Context, flavorID string, size model.Size) (*model.FlavorStock, error)
	ListByFlavors(ctx context.Context, flavorIDs []string) ([]model.FlavorStock, error)
	EnsureRow(ctx context.Context, tx database.TxQuerier, flavorID string, size model.Size) error
	GetForUpdate(ctx context.Context, tx database.TxQuerier, flavorID string, size model.Size) (*model.FlavorStock, error)
	Upsert(ctx context.Context, tx database.TxQuerier, stock *model.FlavorStock) error
	DecrementIfAvailable(ctx context.Context, tx database.TxQuerier, flavorID string, size model.Size, amount int) (oldQty, newQty int, err error)
	InsertHistory(ctx context.Context, tx database.TxQuerier, h *model.StockHistory) error
	ListHistory(ctx context.Context, itemID string, itemType model.ItemType, limit int) ([]model.StockHistory, error)
}

// PackRepositoryInterface defines read access to the pack catalog.
type PackRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*model.Pack, error)
}

// DeliveryZoneRepositoryInterface defines read access to delivery zones.
type DeliveryZoneRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*model.DeliveryZone, error)
}

// SettingsRepositoryInterface defines access to store-wide settings.
type SettingsRepositoryInterface interface {
	GetOrderMode(ctx context.Context) (model.OrderMode, error)
	SetOrderMode(ctx context.Context, mode model.OrderMode) error
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
