package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UsageRecord counts redemptions of one promotion by one customer or guest.
type UsageRecord struct {
	PromoCodeID uuid.UUID `json:"promo_code_id"`
	CustomerKey string    `json:"customer_key"`
	UsageCount  int       `json:"usage_count"`
	LastUsedAt  time.Time `json:"last_used_at"`
}

// Redemption links a confirmed order to the promotion it used.
type Redemption struct {
	ID             uuid.UUID       `json:"id"`
	PromoCodeID    uuid.UUID       `json:"promo_code_id"`
	CustomerKey    string          `json:"customer_key"`
	OrderID        string          `json:"order_id"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	RedeemedAt     time.Time       `json:"redeemed_at"`
}

// CustomerKey identifies a customer for usage tracking: the customer id when
// known, otherwise the lower-cased guest email. Returns "" when neither is set.
func CustomerKey(customerID, guestEmail string) string {
	if id := strings.TrimSpace(customerID); id != "" {
		return "customer:" + id
	}
	if email := strings.ToLower(strings.TrimSpace(guestEmail)); email != "" {
		return "guest:" + email
	}
	return ""
}
