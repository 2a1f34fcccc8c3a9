package engine

import (
	"math"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

// Unlimited is the MaxSelectable value for flavors that are not stock bound.
const Unlimited = math.MaxInt32

// StockLookup returns the stock row for a flavor and size. ok is false when the
// flavor has never been stocked in that size.
type StockLookup func(flavorID string, size model.Size) (stock model.FlavorStock, ok bool)

// AvailableQuantity returns the on-hand quantity, never negative.
func AvailableQuantity(stock model.FlavorStock) int {
	if stock.Quantity < 0 {
		return 0
	}
	return stock.Quantity
}

// IsUnbounded reports whether selection of the flavor ignores on-hand stock.
func IsUnbounded(stock model.FlavorStock, mode model.OrderMode) bool {
	return mode == model.OrderModePreorder || stock.AllowOutOfStockOrder
}

// MaxSelectable returns how many units of the flavor may be selected.
// Preorder mode and the out-of-stock override yield Unlimited; otherwise it is
// the on-hand quantity (0 when sold out).
func MaxSelectable(stock model.FlavorStock, mode model.OrderMode) int {
	if IsUnbounded(stock, mode) {
		return Unlimited
	}
	return AvailableQuantity(stock)
}

// CanFulfill reports whether requested units can be supplied.
func CanFulfill(stock model.FlavorStock, requested int, mode model.OrderMode) bool {
	if requested <= 0 {
		return true
	}
	return requested <= MaxSelectable(stock, mode)
}
