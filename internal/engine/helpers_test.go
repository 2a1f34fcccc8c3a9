package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func intPtr(i int) *int {
	return &i
}

func item(productID, category string, qty int, price string) model.CartItem {
	return model.CartItem{ProductID: productID, Category: category, Quantity: qty, UnitPrice: dec(price)}
}

func cartOf(items ...model.CartItem) model.Cart {
	return model.Cart{Items: items}
}

func basicPromo(t model.DiscountType, value string) model.PromotionCode {
	return model.PromotionCode{
		Code:          "TEST",
		DiscountType:  t,
		EnhancedType:  model.EnhancedBasic,
		DiscountValue: dec(value),
		IsActive:      true,
		UsagePerOrder: 1,
	}
}

func ctxNow() EvalContext {
	return EvalContext{Now: testNow, CustomerKey: "customer:42"}
}
