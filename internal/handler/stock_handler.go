package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

// StockServiceInterface defines flavor availability and stock administration.
type StockServiceInterface interface {
	Availability(ctx context.Context, flavorID string, size model.Size) (*model.StockAvailability, error)
	Adjust(ctx context.Context, req *model.StockAdjustRequest) (*model.FlavorStock, error)
	History(ctx context.Context, itemID string, itemType model.ItemType, limit int) ([]model.StockHistory, error)
}

// StockHandler handles HTTP requests for stock.
type StockHandler struct {
	service   StockServiceInterface
	validator *validator.Validate
}

// NewStockHandler creates a new StockHandler with the given service and validator.
func NewStockHandler(svc StockServiceInterface, v *validator.Validate) *StockHandler {
	return &StockHandler{service: svc, validator: v}
}

// Availability handles GET /api/flavors/:id/stock?size=.
func (h *StockHandler) Availability(c *fiber.Ctx) error {
	size := model.Size(c.Query("size"))
	if !size.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: size must be one of: mini medium large"})
	}

	av, err := h.service.Availability(c.Context(), c.Params("id"), size)
	if err != nil {
		return writeError(c, err, "failed to get flavor availability")
	}
	return c.JSON(av)
}

// Adjust handles POST /api/admin/stock/adjust.
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var req model.StockAdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	stock, err := h.service.Adjust(c.Context(), &req)
	if err != nil {
		return writeError(c, err, "failed to adjust stock")
	}
	return c.JSON(stock)
}

// History handles GET /api/admin/stock/history?item_id=&item_type=&limit=.
func (h *StockHandler) History(c *fiber.Ctx) error {
	itemID := c.Query("item_id")
	if itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: item_id is required"})
	}

	rows, err := h.service.History(c.Context(), itemID, model.ItemType(c.Query("item_type")), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err, "failed to list stock history")
	}
	return c.JSON(fiber.Map{"items": rows})
}
