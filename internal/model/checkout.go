package model

import "github.com/shopspring/decimal"

// CheckoutRequest is the DTO shared by checkout preview and confirm.
type CheckoutRequest struct {
	PromoCode           string          `json:"promo_code" validate:"max=32"`
	CustomerID          string          `json:"customer_id" validate:"max=255"`
	GuestEmail          string          `json:"guest_email" validate:"omitempty,email,max=255"`
	IsFirstTimeCustomer bool            `json:"is_first_time_customer"`
	CustomerGroups      []string        `json:"customer_groups" validate:"max=50,dive,max=255"`
	DeliveryZoneID      string          `json:"delivery_zone_id" validate:"required,notblank,max=255"`
	PricingRuleDiscount decimal.Decimal `json:"pricing_rule_discount" validate:"gte=0"`
	Items               []CartItem      `json:"items" validate:"required,min=1,max=200,dive"`
}

// ConfirmOrderRequest confirms an order. OrderID is the idempotency key for
// promotion usage.
type ConfirmOrderRequest struct {
	CheckoutRequest
	OrderID string `json:"order_id" validate:"required,notblank,max=255"`
}

// Cart builds the engine cart from the request lines.
func (r CheckoutRequest) Cart() Cart {
	return Cart{Items: r.Items, PricingRuleDiscount: r.PricingRuleDiscount}
}

// CheckoutResponse reports the evaluated totals.
type CheckoutResponse struct {
	OrderID              string          `json:"order_id,omitempty"`
	PromoCode            string          `json:"promo_code,omitempty"`
	PromoApplied         bool            `json:"promo_applied"`
	Reason               string          `json:"reason,omitempty"`
	OrderMode            OrderMode       `json:"order_mode"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	DeliveryFee          decimal.Decimal `json:"delivery_fee"`
	EffectiveDeliveryFee decimal.Decimal `json:"effective_delivery_fee"`
	DiscountAmount       decimal.Decimal `json:"discount_amount"`
	FinalTotal           decimal.Decimal `json:"final_total"`
}

// PackSelectionRequest carries the current selection for a pack.
type PackSelectionRequest struct {
	Selections []FlavorSelection `json:"selections" validate:"max=100,dive"`
}

// PackSelectionStepRequest adds or removes one unit of a flavor.
type PackSelectionStepRequest struct {
	FlavorID   string            `json:"flavor_id" validate:"required,notblank,max=255"`
	Selections []FlavorSelection `json:"selections" validate:"max=100,dive"`
}

// PackSelectionResponse reports a selection and its validity.
type PackSelectionResponse struct {
	PackID     string            `json:"pack_id"`
	Required   int               `json:"required"`
	Selected   int               `json:"selected"`
	Valid      bool              `json:"valid"`
	Reason     string            `json:"reason,omitempty"`
	Selections []FlavorSelection `json:"selections"`
}
