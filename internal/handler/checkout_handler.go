package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

// CheckoutServiceInterface defines the checkout operations.
type CheckoutServiceInterface interface {
	Preview(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error)
	Confirm(ctx context.Context, req *model.ConfirmOrderRequest) (*model.CheckoutResponse, error)
}

// CheckoutHandler handles HTTP requests for checkout.
type CheckoutHandler struct {
	service   CheckoutServiceInterface
	validator *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler with the given service and validator.
func NewCheckoutHandler(svc CheckoutServiceInterface, v *validator.Validate) *CheckoutHandler {
	return &CheckoutHandler{service: svc, validator: v}
}

// Preview handles POST /api/checkout/preview. Nothing is written.
func (h *CheckoutHandler) Preview(c *fiber.Ctx) error {
	var req model.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	resp, err := h.service.Preview(c.Context(), &req)
	if err != nil {
		return writeError(c, err, "failed to preview checkout")
	}

	log.Debug().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("promo_code", req.PromoCode).
		Bool("promo_applied", resp.PromoApplied).
		Str("reason", resp.Reason).
		Msg("checkout previewed")
	return c.JSON(resp)
}

// Confirm handles POST /api/checkout/confirm.
func (h *CheckoutHandler) Confirm(c *fiber.Ctx) error {
	var req model.ConfirmOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	resp, err := h.service.Confirm(c.Context(), &req)
	if err != nil {
		return writeError(c, err, "failed to confirm order")
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("order_id", req.OrderID).
		Str("promo_code", resp.PromoCode).
		Msg("checkout confirmed")
	return c.JSON(resp)
}
