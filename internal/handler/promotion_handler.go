package handler

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

// PromotionServiceInterface defines the admin operations on promotions.
type PromotionServiceInterface interface {
	Create(ctx context.Context, req *model.PromotionRequest) (*model.PromotionCode, error)
	Update(ctx context.Context, id uuid.UUID, req *model.PromotionRequest) (*model.PromotionCode, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.PromotionCode, error)
	List(ctx context.Context, filter model.PromotionListFilter) (*model.PromotionPage, error)
	ListUsage(ctx context.Context, id uuid.UUID) ([]model.UsageRecord, error)
}

// PromotionHandler handles HTTP requests for promotion administration.
type PromotionHandler struct {
	service   PromotionServiceInterface
	validator *validator.Validate
}

// NewPromotionHandler creates a new PromotionHandler with the given service and validator.
func NewPromotionHandler(svc PromotionServiceInterface, v *validator.Validate) *PromotionHandler {
	return &PromotionHandler{service: svc, validator: v}
}

func promotionID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

func (h *PromotionHandler) parseRequest(c *fiber.Ctx) (*model.PromotionRequest, error) {
	var req model.PromotionRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}
	return &req, nil
}

// Create handles POST /api/admin/promo-codes.
func (h *PromotionHandler) Create(c *fiber.Ctx) error {
	req, respErr := h.parseRequest(c)
	if req == nil {
		return respErr
	}

	promo, err := h.service.Create(c.Context(), req)
	if err != nil {
		return writeError(c, err, "failed to create promotion")
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("promo_code", promo.Code).
		Str("enhanced_type", string(promo.EnhancedType)).
		Msg("promotion created")
	return c.Status(fiber.StatusCreated).JSON(promo)
}

// Update handles PUT /api/admin/promo-codes/:id.
func (h *PromotionHandler) Update(c *fiber.Ctx) error {
	id, ok := promotionID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a UUID"})
	}
	req, respErr := h.parseRequest(c)
	if req == nil {
		return respErr
	}

	promo, err := h.service.Update(c.Context(), id, req)
	if err != nil {
		return writeError(c, err, "failed to update promotion")
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("promo_id", id.String()).
		Str("promo_code", promo.Code).
		Msg("promotion updated")
	return c.JSON(promo)
}

// Delete handles DELETE /api/admin/promo-codes/:id.
func (h *PromotionHandler) Delete(c *fiber.Ctx) error {
	id, ok := promotionID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a UUID"})
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return writeError(c, err, "failed to delete promotion")
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("promo_id", id.String()).
		Msg("promotion deleted")
	return c.SendStatus(fiber.StatusNoContent)
}

// Get handles GET /api/admin/promo-codes/:id.
func (h *PromotionHandler) Get(c *fiber.Ctx) error {
	id, ok := promotionID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a UUID"})
	}

	promo, err := h.service.Get(c.Context(), id)
	if err != nil {
		return writeError(c, err, "failed to get promotion")
	}
	return c.JSON(promo)
}

// List handles GET /api/admin/promo-codes?page=&limit=&search=&type=&active=.
func (h *PromotionHandler) List(c *fiber.Ctx) error {
	filter := model.PromotionListFilter{
		Search:       c.Query("search"),
		EnhancedType: model.EnhancedType(c.Query("type")),
		Page:         c.QueryInt("page", 1),
		Limit:        c.QueryInt("limit", 0),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: active must be true or false"})
		}
		filter.IsActive = &active
	}

	page, err := h.service.List(c.Context(), filter)
	if err != nil {
		return writeError(c, err, "failed to list promotions")
	}
	return c.JSON(page)
}

// Usage handles GET /api/admin/promo-codes/:id/usage.
func (h *PromotionHandler) Usage(c *fiber.Ctx) error {
	id, ok := promotionID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id must be a UUID"})
	}

	records, err := h.service.ListUsage(c.Context(), id)
	if err != nil {
		return writeError(c, err, "failed to list promotion usage")
	}
	return c.JSON(fiber.Map{"items": records})
}
