package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType selects how DiscountValue is interpreted.
type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
)

// EnhancedType is the behaviour variant of a promotion code.
type EnhancedType string

const (
	EnhancedBasic             EnhancedType = "basic"
	EnhancedFreeDelivery      EnhancedType = "free_delivery"
	EnhancedBuyOneGetOne      EnhancedType = "buy_one_get_one"
	EnhancedBuyXGetY          EnhancedType = "buy_x_get_y"
	EnhancedCategorySpecific  EnhancedType = "category_specific"
	EnhancedFirstTimeCustomer EnhancedType = "first_time_customer"
	EnhancedLoyaltyReward     EnhancedType = "loyalty_reward"
)

// Valid reports whether t is a known enhanced type.
func (t EnhancedType) Valid() bool {
	switch t {
	case EnhancedBasic, EnhancedFreeDelivery, EnhancedBuyOneGetOne, EnhancedBuyXGetY,
		EnhancedCategorySpecific, EnhancedFirstTimeCustomer, EnhancedLoyaltyReward:
		return true
	}
	return false
}

// PromoCodePattern is the accepted form of a stored promotion code.
var PromoCodePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

// NormalizePromoCode returns the stored form of a promotion code. Lookups
// are case-insensitive, so codes are kept upper-case.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// PromotionCode is an admin-managed promotion record.
type PromotionCode struct {
	ID                        uuid.UUID       `json:"id"`
	Code                      string          `json:"code"`
	Name                      string          `json:"name"`
	Description               string          `json:"description"`
	DiscountType              DiscountType    `json:"discount_type"`
	EnhancedType              EnhancedType    `json:"enhanced_type"`
	DiscountValue             decimal.Decimal `json:"discount_value"`
	MinimumOrderAmount        decimal.Decimal `json:"minimum_order_amount"`
	MaximumDiscount           decimal.Decimal `json:"maximum_discount"`
	UsageLimit                int             `json:"usage_limit"` // 0 = unlimited
	UsedCount                 int             `json:"used_count"`
	UsagePerCustomer          *int            `json:"usage_per_customer"` // nil = unlimited
	UsagePerOrder             int             `json:"usage_per_order"`
	ValidUntil                *time.Time      `json:"valid_until"`
	IsActive                  bool            `json:"is_active"`
	CategoryRestrictions      RestrictionSet  `json:"category_restrictions"`
	ProductRestrictions       RestrictionSet  `json:"product_restrictions"`
	CustomerGroupRestrictions RestrictionSet  `json:"customer_group_restrictions"`
	FirstTimeOnly             bool            `json:"first_time_only"`
	MinimumQuantity           int             `json:"minimum_quantity"`
	MaximumQuantity           int             `json:"maximum_quantity"`
	CombinationAllowed        bool            `json:"combination_allowed"`
	StackWithPricingRules     bool            `json:"stack_with_pricing_rules"`
	BuyXQuantity              int             `json:"buy_x_quantity"`
	GetYQuantity              int             `json:"get_y_quantity"`
	GetYDiscountPercentage    decimal.Decimal `json:"get_y_discount_percentage"`
	CreatedAt                 time.Time       `json:"created_at"`
	UpdatedAt                 time.Time       `json:"updated_at"`
}

// PromotionRequest is the DTO for creating or updating a promotion code.
type PromotionRequest struct {
	Code                      string           `json:"code" validate:"required,notblank,promo_code"`
	Name                      string           `json:"name" validate:"required,notblank,max=255"`
	Description               string           `json:"description" validate:"max=2000"`
	DiscountType              DiscountType     `json:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	EnhancedType              EnhancedType     `json:"enhanced_type" validate:"required,oneof=basic free_delivery buy_one_get_one buy_x_get_y category_specific first_time_customer loyalty_reward"`
	DiscountValue             *decimal.Decimal `json:"discount_value" validate:"required"`
	MinimumOrderAmount        decimal.Decimal  `json:"minimum_order_amount" validate:"gte=0"`
	MaximumDiscount           decimal.Decimal  `json:"maximum_discount" validate:"gte=0"`
	UsageLimit                int              `json:"usage_limit" validate:"gte=0"`
	UsagePerCustomer          *int             `json:"usage_per_customer" validate:"omitempty,gte=1"`
	UsagePerOrder             *int             `json:"usage_per_order" validate:"omitempty,gte=0"`
	ValidUntil                *time.Time       `json:"valid_until"`
	IsActive                  *bool            `json:"is_active"`
	CategoryRestrictions      []string         `json:"category_restrictions" validate:"max=100,dive,max=255"`
	ProductRestrictions       []string         `json:"product_restrictions" validate:"max=100,dive,max=255"`
	CustomerGroupRestrictions []string         `json:"customer_group_restrictions" validate:"max=100,dive,max=255"`
	FirstTimeOnly             bool             `json:"first_time_only"`
	MinimumQuantity           int              `json:"minimum_quantity" validate:"gte=0"`
	MaximumQuantity           int              `json:"maximum_quantity" validate:"gte=0"`
	CombinationAllowed        bool             `json:"combination_allowed"`
	StackWithPricingRules     bool             `json:"stack_with_pricing_rules"`
	BuyXQuantity              int              `json:"buy_x_quantity" validate:"gte=0"`
	GetYQuantity              int              `json:"get_y_quantity" validate:"gte=0"`
	GetYDiscountPercentage    decimal.Decimal  `json:"get_y_discount_percentage" validate:"gte=0,lte=100"`
}

// PromotionListFilter narrows the admin promotion listing.
type PromotionListFilter struct {
	Search       string
	EnhancedType EnhancedType
	IsActive     *bool
	Page         int
	Limit        int
}

// Offset returns the row offset for the requested page.
func (f PromotionListFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// PromotionPage is one page of the admin promotion listing.
type PromotionPage struct {
	Items    []PromotionCode `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
	LastPage int             `json:"last_page"`
}
