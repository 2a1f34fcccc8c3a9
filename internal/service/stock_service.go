package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/engine"
	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// StockService provides flavor availability and admin stock adjustments.
type StockService struct {
	pool         TxBeginner
	stockRepo    StockRepositoryInterface
	settingsRepo SettingsRepositoryInterface
	now          func() time.Time
}

// NewStockService creates a new StockService.
func NewStockService(pool TxBeginner, stockRepo StockRepositoryInterface, settingsRepo SettingsRepositoryInterface) *StockService {
	return &StockService{
		pool:         pool,
		stockRepo:    stockRepo,
		settingsRepo: settingsRepo,
		now:          time.Now,
	}
}

// Availability reports how many units of a flavor can be selected under the
// current order mode. A flavor never stocked in size has quantity 0.
func (s *StockService) Availability(ctx context.Context, flavorID string, size model.Size) (*model.StockAvailability, error) {
	if flavorID == "" || !size.Valid() {
		return nil, validationError("flavor id and a valid size are required")
	}

	mode, err := s.settingsRepo.GetOrderMode(ctx)
	if err != nil {
		return nil, fmt.Errorf("get order mode: %w", err)
	}

	stock, err := s.stockRepo.Get(ctx, flavorID, size)
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", err)
	}
	if stock == nil {
		stock = &model.FlavorStock{FlavorID: flavorID, Size: size}
	}

	return &model.StockAvailability{
		FlavorID:      flavorID,
		Size:          size,
		OrderMode:     mode,
		Quantity:      engine.AvailableQuantity(*stock),
		MaxSelectable: engine.MaxSelectable(*stock, mode),
		Unlimited:     engine.IsUnbounded(*stock, mode),
	}, nil
}

// Adjust applies an addition, subtraction or replacement to one flavor size
// under a row lock and appends the matching history row.
// Returns ErrInvalidAdjustment if the result would be negative.
func (s *StockService) Adjust(ctx context.Context, req *model.StockAdjustRequest) (*model.FlavorStock, error) {
	// Callers outside the handlers may skip validation
	if req == nil || req.Amount == nil || *req.Amount < 0 {
		return nil, ErrInvalidRequest
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// The row must exist before it can be locked; otherwise two first-time
	// adjustments would both start from zero.
	if err := s.stockRepo.EnsureRow(ctx, tx, req.FlavorID, req.Size); err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	current, err := s.stockRepo.GetForUpdate(ctx, tx, req.FlavorID, req.Size)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	if current == nil {
		current = &model.FlavorStock{}
	}
	current.FlavorID, current.Size = req.FlavorID, req.Size

	oldQty := current.Quantity
	amount := *req.Amount
	var newQty int
	switch req.ChangeType {
	case model.ChangeAddition:
		newQty = oldQty + amount
	case model.ChangeSubtraction:
		newQty = oldQty - amount
	case model.ChangeReplacement:
		newQty = amount
	default:
		return nil, validationError("unknown change type %q", req.ChangeType)
	}
	if newQty < 0 {
		return nil, fmt.Errorf("%w: %s of %d leaves %d units", ErrInvalidAdjustment, req.ChangeType, amount, newQty)
	}

	current.Quantity = newQty
	if req.AllowOutOfStockOrder != nil {
		current.AllowOutOfStockOrder = *req.AllowOutOfStockOrder
	}
	if err := s.stockRepo.Upsert(ctx, tx, current); err != nil {
		return nil, fmt.Errorf("upsert stock: %w", err)
	}

	err = s.stockRepo.InsertHistory(ctx, tx, &model.StockHistory{
		ID:           uuid.New(),
		ItemID:       req.FlavorID,
		ItemType:     model.ItemTypeFlavor,
		Size:         req.Size,
		OldQuantity:  oldQty,
		NewQuantity:  newQty,
		ChangeAmount: newQty - oldQty,
		ChangeType:   req.ChangeType,
		Notes:        req.Notes,
		ChangedBy:    req.ChangedBy,
		ChangedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert stock history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	log.Info().
		Str("flavor_id", req.FlavorID).
		Str("size", string(req.Size)).
		Str("change_type", string(req.ChangeType)).
		Int("old_quantity", oldQty).
		Int("new_quantity", newQty).
		Str("changed_by", req.ChangedBy).
		Msg("stock adjusted")
	return current, nil
}

// History returns the newest history rows of an item.
func (s *StockService) History(ctx context.Context, itemID string, itemType model.ItemType, limit int) ([]model.StockHistory, error) {
	if itemID == "" {
		return nil, validationError("item_id is required")
	}
	if itemType == "" {
		itemType = model.ItemTypeFlavor
	}
	if itemType != model.ItemTypeFlavor {
		return nil, validationError("unknown item type %q", itemType)
	}
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := s.stockRepo.ListHistory(ctx, itemID, itemType, limit)
	if err != nil {
		return nil, fmt.Errorf("list stock history: %w", err)
	}
	return rows, nil
}

// OrderMode returns the store's current order mode.
func (s *StockService) OrderMode(ctx context.Context) (model.OrderMode, error) {
	mode, err := s.settingsRepo.GetOrderMode(ctx)
	if err != nil {
		return "", fmt.Errorf("get order mode: %w", err)
	}
	return mode, nil
}

// SetOrderMode switches the store between stock_based and preorder.
func (s *StockService) SetOrderMode(ctx context.Context, mode model.OrderMode) error {
	if !mode.Valid() {
		return validationError("order mode must be stock_based or preorder")
	}
	if err := s.settingsRepo.SetOrderMode(ctx, mode); err != nil {
		return fmt.Errorf("set order mode: %w", err)
	}
	log.Info().Str("order_mode", string(mode)).Msg("order mode changed")
	return nil
}
