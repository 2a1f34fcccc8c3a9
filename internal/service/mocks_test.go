package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
	"github.com/fairyhunter13/bakery-promotion-engine/pkg/database"
)

// mockPromotionRepository is a mock implementation of PromotionRepositoryInterface.
type mockPromotionRepository struct {
	insertFn             func(ctx context.Context, promo *model.PromotionCode) error
	updateFn             func(ctx context.Context, promo *model.PromotionCode) error
	deleteFn             func(ctx context.Context, id uuid.UUID) error
	getByIDFn            func(ctx context.Context, id uuid.UUID) (*model.PromotionCode, error)
	getByCodeFn          func(ctx context.Context, code string) (*model.PromotionCode, error)
	getByCodeForUpdateFn func(ctx context.Context, tx database.TxQuerier, code string) (*model.PromotionCode, error)
	listFn               func(ctx context.Context, filter model.PromotionListFilter) ([]model.PromotionCode, int, error)
	incrementUsedCountFn func(ctx context.Context, tx database.TxQuerier, id uuid.UUID) error
}

func (m *mockPromotionRepository) Insert(ctx context.Context, promo *model.PromotionCode) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, promo)
	}
	return nil
}

func (m *mockPromotionRepository) Update(ctx context.Context, promo *model.PromotionCode) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, promo)
	}
	return nil
}

func (m *mockPromotionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPromotionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PromotionCode, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPromotionRepository) GetByCode(ctx context.Context, code string) (*model.PromotionCode, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, nil
}

func (m *mockPromotionRepository) GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, code string) (*model.PromotionCode, error) {
	if m.getByCodeForUpdateFn != nil {
		return m.getByCodeForUpdateFn(ctx, tx, code)
	}
	return nil, ErrPromotionNotFound
}

func (m *mockPromotionRepository) List(ctx context.Context, filter model.PromotionListFilter) ([]model.PromotionCode, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return []model.PromotionCode{}, 0, nil
}

func (m *mockPromotionRepository) IncrementUsedCount(ctx context.Context, tx database.TxQuerier, id uuid.UUID) error {
	if m.incrementUsedCountFn != nil {
		return m.incrementUsedCountFn(ctx, tx, id)
	}
	return nil
}

// mockUsageRepository is a mock implementation of UsageRepositoryInterface.
type mockUsageRepository struct {
	getUsageFn          func(ctx context.Context, promoID uuid.UUID, customerKey string) (model.UsageRecord, error)
	getUsageForUpdateFn func(ctx context.Context, tx database.TxQuerier, promoID uuid.UUID, customerKey string) (model.UsageRecord, error)
	incrementUsageFn    func(ctx context.Context, tx database.TxQuerier, promoID uuid.UUID, customerKey string, perCustomerCap *int, at time.Time) (int, error)
	insertRedemptionFn  func(ctx context.Context, tx database.TxQuerier, r *model.Redemption) error
	listUsageFn         func(ctx context.Context, promoID uuid.UUID) ([]model.UsageRecord, error)
}

func (m *mockUsageRepository) GetUsage(ctx context.Context, promoID uuid.UUID, customerKey string) (model.UsageRecord, error) {
	if m.getUsageFn != nil {
		return m.getUsageFn(ctx, promoID, customerKey)
	}
	return model.UsageRecord{PromoCodeID: promoID, CustomerKey: customerKey}, nil
}

func (m *mockUsageRepository) GetUsageForUpdate(ctx context.Context, tx database.TxQuerier, promoID uuid.UUID, customerKey string) (model.UsageRecord, error) {
	if m.getUsageForUpdateFn != nil {
		return m.getUsageForUpdateFn(ctx, tx, promoID, customerKey)
	}
	return model.UsageRecord{PromoCodeID: promoID, CustomerKey: customerKey}, nil
}

func (m *mockUsageRepository) IncrementUsage(ctx context.Context, tx database.TxQuerier, promoID uuid.UUID, customerKey string, perCustomerCap *int, at time.Time) (int, error) {
	if m.incrementUsageFn != nil {
		return m.incrementUsageFn(ctx, tx, promoID, customerKey, perCustomerCap, at)
	}
	return 1, nil
}

func (m *mockUsageRepository) InsertRedemption(ctx context.Context, tx database.TxQuerier, r *model.Redemption) error {
	if m.insertRedemptionFn != nil {
		return m.insertRedemptionFn(ctx, tx, r)
	}
	return nil
}

func (m *mockUsageRepository) ListUsage(ctx context.Context, promoID uuid.UUID) ([]model.UsageRecord, error) {
	if m.listUsageFn != nil {
		return m.listUsageFn(ctx, promoID)
	}
	return []model.UsageRecord{}, nil
}

// mockStockRepository is a mock implementation of StockRepositoryInterface.
type mockStockRepository struct {
	getFn                  func(ctx context.Context, flavorID string, size model.Size) (*model.FlavorStock, error)
	listByFlavorsFn        func(ctx context.Context, flavorIDs []string) ([]model.FlavorStock, error)
	ensureRowFn            func(ctx context.Context, tx database.TxQuerier, flavorID string, size model.Size) error
	getForUpdateFn         func(ctx context.Context, tx database.TxQuerier, flavorID string, size model.Size) (*model.FlavorStock, error)
	upsertFn               func(ctx context.Context, tx database.TxQuerier, stock *model.FlavorStock) error
	decrementIfAvailableFn func(ctx context.Context, tx database.TxQuerier, flavorID string, size model.Size, amount int) (int, int, error)
	insertHistoryFn        func(ctx context.Context, tx database.TxQuerier, h *model.StockHistory) error
	listHistoryFn          func(ctx context.Context, itemID string, itemType model.ItemType, limit int) ([]model.StockHistory, error)
}

func (m *mockStockRepository) Get(ctx context.Context, flavorID string, size model.Size) (*model.FlavorStock, error) {
	if m.getFn != nil {
		return m.getFn(ctx, flavorID, size)
	}
	return nil, nil
}

func (m *mockStockRepository) ListByFlavors(ctx context.Context, flavorIDs []string) ([]model.FlavorStock, error) {
	if m.listByFlavorsFn != nil {
		return m.listByFlavorsFn(ctx, flavorIDs)
	}
	return []model.FlavorStock{}, nil
}

func (m *mockStockRepository) EnsureRow(ctx context.Context, tx database.TxQuerier, flavorID string, size model.Size) error {
	if m.ensureRowFn != nil {
		return m.ensureRowFn(ctx, tx, flavorID, size)
	}
	return nil
}

func (m *mockStockRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, flavorID string, size model.Size) (*model.FlavorStock, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, flavorID, size)
	}
	return nil, nil
}

func (m *mockStockRepository) Upsert(ctx context.Context, tx database.TxQuerier, stock *model.FlavorStock) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, tx, stock)
	}
	return nil
}

func (m *mockStockRepository) DecrementIfAvailable(ctx context.Context, tx database.TxQuerier, flavorID string, size model.Size, amount int) (int, int, error) {
	if m.decrementIfAvailableFn != nil {
		return m.decrementIfAvailableFn(ctx, tx, flavorID, size, amount)
	}
	return amount, 0, nil
}

func (m *mockStockRepository) InsertHistory(ctx context.Context, tx database.TxQuerier, h *model.StockHistory) error {
	if m.insertHistoryFn != nil {
		return m.insertHistoryFn(ctx, tx, h)
	}
	return nil
}

func (m *mockStockRepository) ListHistory(ctx context.Context, itemID string, itemType model.ItemType, limit int) ([]model.StockHistory, error) {
	if m.listHistoryFn != nil {
		return m.listHistoryFn(ctx, itemID, itemType, limit)
	}
	return []model.StockHistory{}, nil
}

// mockPackRepository is a mock implementation of PackRepositoryInterface.
type mockPackRepository struct {
	packs map[string]*model.Pack
	err   error
}

func (m *mockPackRepository) GetByID(ctx context.Context, id string) (*model.Pack, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.packs[id], nil
}

// mockZoneRepository is a mock implementation of DeliveryZoneRepositoryInterface.
type mockZoneRepository struct {
	zones map[string]*model.DeliveryZone
	err   error
}

func (m *mockZoneRepository) GetByID(ctx context.Context, id string) (*model.DeliveryZone, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.zones[id], nil
}

// mockSettingsRepository is a mock implementation of SettingsRepositoryInterface.
type mockSettingsRepository struct {
	mode   model.OrderMode
	getErr error
	setFn  func(ctx context.Context, mode model.OrderMode) error
}

func (m *mockSettingsRepository) GetOrderMode(ctx context.Context) (model.OrderMode, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	if m.mode == "" {
		return model.OrderModeStockBased, nil
	}
	return m.mode, nil
}

func (m *mockSettingsRepository) SetOrderMode(ctx context.Context, mode model.OrderMode) error {
	if m.setFn != nil {
		return m.setFn(ctx, mode)
	}
	m.mode = mode
	return nil
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
	committed  bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

func txBeginner(tx *mockTx) *mockTxBeginner {
	return &mockTxBeginner{beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil }}
}

func intPtr(i int) *int {
	return &i
}

func boolPtr(b bool) *bool {
	return &b
}
