package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

// PackServiceInterface defines pack selection operations.
type PackServiceInterface interface {
	Validate(ctx context.Context, packID string, req *model.PackSelectionRequest) (*model.PackSelectionResponse, error)
	AddFlavor(ctx context.Context, packID string, req *model.PackSelectionStepRequest) (*model.PackSelectionResponse, error)
	RemoveFlavor(ctx context.Context, packID string, req *model.PackSelectionStepRequest) (*model.PackSelectionResponse, error)
}

// PackHandler handles HTTP requests for pack flavor selection.
type PackHandler struct {
	service   PackServiceInterface
	validator *validator.Validate
}

// NewPackHandler creates a new PackHandler with the given service and validator.
func NewPackHandler(svc PackServiceInterface, v *validator.Validate) *PackHandler {
	return &PackHandler{service: svc, validator: v}
}

// Validate handles POST /api/packs/:id/selection/validate.
func (h *PackHandler) Validate(c *fiber.Ctx) error {
	var req model.PackSelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	resp, err := h.service.Validate(c.Context(), c.Params("id"), &req)
	if err != nil {
		return writeError(c, err, "failed to validate pack selection")
	}
	return c.JSON(resp)
}

// Add handles POST /api/packs/:id/selection/add.
func (h *PackHandler) Add(c *fiber.Ctx) error {
	return h.step(c, h.service.AddFlavor, "failed to add flavor to pack")
}

// Remove handles POST /api/packs/:id/selection/remove.
func (h *PackHandler) Remove(c *fiber.Ctx) error {
	return h.step(c, h.service.RemoveFlavor, "failed to remove flavor from pack")
}

type selectionStep func(ctx context.Context, packID string, req *model.PackSelectionStepRequest) (*model.PackSelectionResponse, error)

func (h *PackHandler) step(c *fiber.Ctx, fn selectionStep, failMsg string) error {
	var req model.PackSelectionStepRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	resp, err := fn(c.Context(), c.Params("id"), &req)
	if err != nil {
		return writeError(c, err, failMsg)
	}
	return c.JSON(resp)
}
