package service

import (
	"errors"
	"fmt"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/engine"
)

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrPromotionExists is returned when a promotion code is already taken (case-insensitively)
	ErrPromotionExists = errors.New("promotion code already exists")

	// ErrPromotionNotFound is returned when a promotion cannot be found
	ErrPromotionNotFound = errors.New("promotion not found")

	// ErrAlreadyRedeemed is returned when an order has already recorded usage of a promotion
	ErrAlreadyRedeemed = errors.New("promotion already redeemed for order")

	// ErrUsageConflict is returned when a conditional usage increment loses a race.
	// Callers may retry.
	ErrUsageConflict = errors.New("promotion usage changed, try again")

	// ErrInsufficientStock is returned when a conditional stock decrement finds too little stock.
	// Callers may retry with a smaller quantity.
	ErrInsufficientStock = errors.New("insufficient stock, try again")

	// ErrInvalidAdjustment is returned when a stock adjustment would leave a negative quantity
	ErrInvalidAdjustment = errors.New("invalid stock adjustment")

	// ErrPackNotFound is returned when a pack does not exist or is inactive
	ErrPackNotFound = errors.New("pack not found")

	// ErrDeliveryZoneNotFound is returned when a delivery zone does not exist or is inactive
	ErrDeliveryZoneNotFound = errors.New("delivery zone not found")

	// ErrCustomerIdentityRequired is returned when a per-customer limited promotion
	// is used without a customer id or guest email
	ErrCustomerIdentityRequired = errors.New("customer id or guest email required")
)

// RuleViolationError reports a business rule that rejected a confirmation.
// It carries the engine reason so handlers can surface it verbatim.
type RuleViolationError struct {
	Reason   engine.Reason
	FlavorID string
	PackID   string
}

func (e *RuleViolationError) Error() string {
	switch {
	case e.PackID != "" && e.FlavorID != "":
		return fmt.Sprintf("rule violation %s (pack %s, flavor %s)", e.Reason, e.PackID, e.FlavorID)
	case e.PackID != "":
		return fmt.Sprintf("rule violation %s (pack %s)", e.Reason, e.PackID)
	}
	return fmt.Sprintf("rule violation %s", e.Reason)
}

// validationError wraps ErrInvalidRequest with a specific message.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
