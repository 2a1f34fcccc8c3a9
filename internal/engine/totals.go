package engine

import "github.com/shopspring/decimal"

// OrderTotals is the money breakdown of an order.
type OrderTotals struct {
	Subtotal             decimal.Decimal
	DeliveryFee          decimal.Decimal
	EffectiveDeliveryFee decimal.Decimal
	DiscountAmount       decimal.Decimal
	FinalTotal           decimal.Decimal
}

// AdjustDeliveryFee zeroes the fee for an applicable free-delivery promotion
// and otherwise returns base, floored at zero.
func AdjustDeliveryFee(base decimal.Decimal, ev Evaluation) decimal.Decimal {
	if ev.Applicable && ev.FreeDelivery {
		return decimal.Zero
	}
	if base.IsNegative() {
		return decimal.Zero
	}
	return base
}

// FinalTotal returns subtotal + delivery - discount, never below zero.
func FinalTotal(subtotal, effectiveDeliveryFee, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Add(effectiveDeliveryFee).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(2)
}

// ComposeTotals combines subtotal, base delivery fee and an evaluation. A
// rejected evaluation contributes no discount.
func ComposeTotals(subtotal, baseDeliveryFee decimal.Decimal, ev Evaluation) OrderTotals {
	discount := decimal.Zero
	if ev.Applicable {
		discount = ev.DiscountAmount
	}
	effective := AdjustDeliveryFee(baseDeliveryFee, ev)
	return OrderTotals{
		Subtotal:             subtotal,
		DeliveryFee:          baseDeliveryFee,
		EffectiveDeliveryFee: effective,
		DiscountAmount:       discount,
		FinalTotal:           FinalTotal(subtotal, effective, discount),
	}
}
