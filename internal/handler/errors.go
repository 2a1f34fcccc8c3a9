package handler

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/service"
)

// formatValidationError converts validator errors to client-facing messages.
// Field paths use JSON names, e.g. "items[0].quantity".
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]
	field := jsonPath(fe.Namespace())

	switch fe.Tag() {
	case "required", "required_without":
		return "invalid request: " + field + " is required"
	case "notblank":
		return "invalid request: " + field + " cannot be whitespace only"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "invalid request: " + field + " has more than " + fe.Param() + " entries"
		}
		return "invalid request: " + field + " exceeds maximum length of " + fe.Param()
	case "min":
		return "invalid request: " + field + " must have at least " + fe.Param() + " entries"
	case "gte":
		return "invalid request: " + field + " must be at least " + fe.Param()
	case "lte":
		return "invalid request: " + field + " must be at most " + fe.Param()
	case "oneof":
		return "invalid request: " + field + " must be one of: " + fe.Param()
	case "email":
		return "invalid request: " + field + " must be a valid email"
	case "promo_code":
		return "invalid request: " + field + " must be 3-32 characters of A-Z, 0-9, '_' or '-'"
	}
	return "invalid request: " + field + " is invalid"
}

// jsonPath drops the Go struct names (upper-case segments) that lead a
// validator namespace such as "ConfirmOrderRequest.CheckoutRequest.items[0].quantity".
func jsonPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	i := 0
	for i < len(parts)-1 && parts[i] != "" && unicode.IsUpper([]rune(parts[i])[0]) {
		i++
	}
	return strings.Join(parts[i:], ".")
}

// writeError maps service errors to HTTP responses. Unknown errors are logged
// with request context and reported as 500.
func writeError(c *fiber.Ctx, err error, msg string) error {
	var rule *service.RuleViolationError
	if errors.As(err, &rule) {
		body := fiber.Map{"error": "rule violation", "reason": string(rule.Reason)}
		if rule.FlavorID != "" {
			body["flavor_id"] = rule.FlavorID
		}
		if rule.PackID != "" {
			body["pack_id"] = rule.PackID
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(body)
	}

	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrCustomerIdentityRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: customer_id or guest_email is required"})
	case errors.Is(err, service.ErrPromotionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "promotion not found"})
	case errors.Is(err, service.ErrPackNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "pack not found"})
	case errors.Is(err, service.ErrDeliveryZoneNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "delivery zone not found"})
	case errors.Is(err, service.ErrPromotionExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "promotion code already exists"})
	case errors.Is(err, service.ErrAlreadyRedeemed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "promotion already redeemed for this order"})
	case errors.Is(err, service.ErrUsageConflict), errors.Is(err, service.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "retryable": true})
	case errors.Is(err, service.ErrInvalidAdjustment):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "stock cannot go below zero"})
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg(msg)
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"error": "request timed out, try again"})
	}

	log.Error().
		Err(err).
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg(msg)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
