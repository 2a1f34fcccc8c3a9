package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

type mockPromotionService struct {
	createFn    func(ctx context.Context, req *model.PromotionRequest) (*model.PromotionCode, error)
	updateFn    func(ctx context.Context, id uuid.UUID, req *model.PromotionRequest) (*model.PromotionCode, error)
	deleteFn    func(ctx context.Context, id uuid.UUID) error
	getFn       func(ctx context.Context, id uuid.UUID) (*model.PromotionCode, error)
	listFn      func(ctx context.Context, filter model.PromotionListFilter) (*model.PromotionPage, error)
	listUsageFn func(ctx context.Context, id uuid.UUID) ([]model.UsageRecord, error)
}

func (m *mockPromotionService) Create(ctx context.Context, req *model.PromotionRequest) (*model.PromotionCode, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &model.PromotionCode{ID: uuid.New(), Code: req.Code}, nil
}

func (m *mockPromotionService) Update(ctx context.Context, id uuid.UUID, req *model.PromotionRequest) (*model.PromotionCode, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return &model.PromotionCode{ID: id, Code: req.Code}, nil
}

func (m *mockPromotionService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPromotionService) Get(ctx context.Context, id uuid.UUID) (*model.PromotionCode, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.PromotionCode{ID: id}, nil
}

func (m *mockPromotionService) List(ctx context.Context, filter model.PromotionListFilter) (*model.PromotionPage, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return &model.PromotionPage{Items: []model.PromotionCode{}, Page: 1, LastPage: 1}, nil
}

func (m *mockPromotionService) ListUsage(ctx context.Context, id uuid.UUID) ([]model.UsageRecord, error) {
	if m.listUsageFn != nil {
		return m.listUsageFn(ctx, id)
	}
	return []model.UsageRecord{}, nil
}

type mockCheckoutService struct {
	previewFn func(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error)
	confirmFn func(ctx context.Context, req *model.ConfirmOrderRequest) (*model.CheckoutResponse, error)
}

func (m *mockCheckoutService) Preview(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if m.previewFn != nil {
		return m.previewFn(ctx, req)
	}
	return &model.CheckoutResponse{}, nil
}

func (m *mockCheckoutService) Confirm(ctx context.Context, req *model.ConfirmOrderRequest) (*model.CheckoutResponse, error) {
	if m.confirmFn != nil {
		return m.confirmFn(ctx, req)
	}
	return &model.CheckoutResponse{OrderID: req.OrderID}, nil
}

type mockStockService struct {
	availabilityFn func(ctx context.Context, flavorID string, size model.Size) (*model.StockAvailability, error)
	adjustFn       func(ctx context.Context, req *model.StockAdjustRequest) (*model.FlavorStock, error)
	historyFn      func(ctx context.Context, itemID string, itemType model.ItemType, limit int) ([]model.StockHistory, error)
	orderModeFn    func(ctx context.Context) (model.OrderMode, error)
	setOrderModeFn func(ctx context.Context, mode model.OrderMode) error
}

func (m *mockStockService) Availability(ctx context.Context, flavorID string, size model.Size) (*model.StockAvailability, error) {
	if m.availabilityFn != nil {
		return m.availabilityFn(ctx, flavorID, size)
	}
	return &model.StockAvailability{FlavorID: flavorID, Size: size}, nil
}

func (m *mockStockService) Adjust(ctx context.Context, req *model.StockAdjustRequest) (*model.FlavorStock, error) {
	if m.adjustFn != nil {
		return m.adjustFn(ctx, req)
	}
	return &model.FlavorStock{FlavorID: req.FlavorID, Size: req.Size}, nil
}

func (m *mockStockService) History(ctx context.Context, itemID string, itemType model.ItemType, limit int) ([]model.StockHistory, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, itemID, itemType, limit)
	}
	return []model.StockHistory{}, nil
}

func (m *mockStockService) OrderMode(ctx context.Context) (model.OrderMode, error) {
	if m.orderModeFn != nil {
		return m.orderModeFn(ctx)
	}
	return model.OrderModeStockBased, nil
}

func (m *mockStockService) SetOrderMode(ctx context.Context, mode model.OrderMode) error {
	if m.setOrderModeFn != nil {
		return m.setOrderModeFn(ctx, mode)
	}
	return nil
}

type mockPackService struct {
	validateFn func(ctx context.Context, packID string, req *model.PackSelectionRequest) (*model.PackSelectionResponse, error)
	addFn      func(ctx context.Context, packID string, req *model.PackSelectionStepRequest) (*model.PackSelectionResponse, error)
	removeFn   func(ctx context.Context, packID string, req *model.PackSelectionStepRequest) (*model.PackSelectionResponse, error)
}

func (m *mockPackService) Validate(ctx context.Context, packID string, req *model.PackSelectionRequest) (*model.PackSelectionResponse, error) {
	if m.validateFn != nil {
		return m.validateFn(ctx, packID, req)
	}
	return &model.PackSelectionResponse{PackID: packID}, nil
}

func (m *mockPackService) AddFlavor(ctx context.Context, packID string, req *model.PackSelectionStepRequest) (*model.PackSelectionResponse, error) {
	if m.addFn != nil {
		return m.addFn(ctx, packID, req)
	}
	return &model.PackSelectionResponse{PackID: packID}, nil
}

func (m *mockPackService) RemoveFlavor(ctx context.Context, packID string, req *model.PackSelectionStepRequest) (*model.PackSelectionResponse, error) {
	if m.removeFn != nil {
		return m.removeFn(ctx, packID, req)
	}
	return &model.PackSelectionResponse{PackID: packID}, nil
}

// doJSON sends body to app and decodes the JSON response into a generic map.
func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	var result map[string]any
	if resp.StatusCode != fiber.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	}
	return resp.StatusCode, result
}
