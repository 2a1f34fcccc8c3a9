package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

// OrderModeServiceInterface reads and switches the store order mode.
type OrderModeServiceInterface interface {
	OrderMode(ctx context.Context) (model.OrderMode, error)
	SetOrderMode(ctx context.Context, mode model.OrderMode) error
}

// SettingsHandler handles store settings requests.
type SettingsHandler struct {
	service   OrderModeServiceInterface
	validator *validator.Validate
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(svc OrderModeServiceInterface, v *validator.Validate) *SettingsHandler {
	return &SettingsHandler{service: svc, validator: v}
}

// GetOrderMode handles GET /api/admin/settings/order-mode.
func (h *SettingsHandler) GetOrderMode(c *fiber.Ctx) error {
	mode, err := h.service.OrderMode(c.Context())
	if err != nil {
		return writeError(c, err, "failed to get order mode")
	}
	return c.JSON(model.OrderModeRequest{OrderMode: mode})
}

// SetOrderMode handles PUT /api/admin/settings/order-mode.
func (h *SettingsHandler) SetOrderMode(c *fiber.Ctx) error {
	var req model.OrderModeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.SetOrderMode(c.Context(), req.OrderMode); err != nil {
		return writeError(c, err, "failed to set order mode")
	}
	return c.JSON(req)
}
