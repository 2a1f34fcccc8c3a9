package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

var hundred = decimal.NewFromInt(100)

// EvalContext is the customer-side input to an evaluation.
type EvalContext struct {
	IsFirstTimeCustomer bool
	CustomerKey         string
	// CustomerUsage is the usage ledger count for (promotion, CustomerKey).
	CustomerUsage  int
	CustomerGroups []string
	Now            time.Time
}

// Evaluation is the outcome of applying a promotion to a cart.
type Evaluation struct {
	Applicable     bool
	DiscountAmount decimal.Decimal
	FreeDelivery   bool
	Reason         Reason
}

func rejected(r Reason) Evaluation {
	return Evaluation{DiscountAmount: decimal.Zero, Reason: r}
}

// Evaluate decides whether promo applies to cart and how much it takes off.
// Checks short-circuit in a fixed order; the first failing check is reported.
func Evaluate(cart model.Cart, promo model.PromotionCode, ec EvalContext) Evaluation {
	subtotal := cart.Subtotal()

	if !promo.IsActive || (promo.ValidUntil != nil && ec.Now.After(*promo.ValidUntil)) {
		return rejected(ReasonExpiredOrInactive)
	}
	if promo.UsageLimit > 0 && promo.UsedCount >= promo.UsageLimit {
		return rejected(ReasonUsageLimitReached)
	}
	if promo.UsagePerCustomer != nil && ec.CustomerUsage >= *promo.UsagePerCustomer {
		return rejected(ReasonCustomerLimitReached)
	}
	if subtotal.LessThan(promo.MinimumOrderAmount) {
		return rejected(ReasonBelowMinimumOrder)
	}
	if requiresFirstTime(promo) && !ec.IsFirstTimeCustomer {
		return rejected(ReasonNotFirstTime)
	}
	qty := cart.TotalQuantity()
	if (promo.MinimumQuantity > 0 && qty < promo.MinimumQuantity) ||
		(promo.MaximumQuantity > 0 && qty > promo.MaximumQuantity) {
		return rejected(ReasonQuantityOutOfRange)
	}

	eligible := cart.Items
	if usesItemRestrictions(promo.EnhancedType) {
		eligible = EligibleItems(cart, promo)
		if len(eligible) == 0 {
			return rejected(ReasonNoEligibleItems)
		}
	}
	if !promo.CustomerGroupRestrictions.Empty() && !promo.CustomerGroupRestrictions.ContainsAny(ec.CustomerGroups) {
		return rejected(ReasonCustomerGroupMismatch)
	}
	if !promo.StackWithPricingRules && cart.PricingRuleDiscount.IsPositive() {
		return rejected(ReasonPricingRuleConflict)
	}

	ev := Evaluation{Applicable: true, DiscountAmount: decimal.Zero}
	switch promo.EnhancedType {
	case model.EnhancedFreeDelivery:
		ev.FreeDelivery = true
	case model.EnhancedBuyOneGetOne, model.EnhancedBuyXGetY:
		ev.DiscountAmount = buyXGetYDiscount(promo, eligible)
	default:
		ev.DiscountAmount = basicDiscount(promo, subtotal)
	}
	ev.DiscountAmount = clampDiscount(ev.DiscountAmount, subtotal)
	return ev
}

func requiresFirstTime(promo model.PromotionCode) bool {
	return promo.FirstTimeOnly || promo.EnhancedType == model.EnhancedFirstTimeCustomer
}

func usesItemRestrictions(t model.EnhancedType) bool {
	return t == model.EnhancedCategorySpecific || t == model.EnhancedBuyOneGetOne || t == model.EnhancedBuyXGetY
}

// EligibleItems returns the cart lines matched by the promotion's category or
// product restrictions. With no restrictions every line is eligible.
func EligibleItems(cart model.Cart, promo model.PromotionCode) []model.CartItem {
	cats, prods := promo.CategoryRestrictions, promo.ProductRestrictions
	if cats.Empty() && prods.Empty() {
		return cart.Items
	}
	var out []model.CartItem
	for _, item := range cart.Items {
		if cats.ContainsAny(item.Categories()) {
			out = append(out, item)
			continue
		}
		if prods.Contains(item.ProductID) || (item.PackID != "" && prods.Contains(item.PackID)) {
			out = append(out, item)
		}
	}
	return out
}

func basicDiscount(promo model.PromotionCode, subtotal decimal.Decimal) decimal.Decimal {
	if promo.DiscountType == model.DiscountPercentage {
		d := subtotal.Mul(promo.DiscountValue).Div(hundred)
		if promo.MaximumDiscount.IsPositive() && d.GreaterThan(promo.MaximumDiscount) {
			d = promo.MaximumDiscount
		}
		return d
	}
	return decimal.Min(promo.DiscountValue, subtotal)
}

// buyXGetYDiscount rewards getY units out of every buyX+getY eligible units,
// priced at the cheapest eligible unit. Every complete group is rewarded.
func buyXGetYDiscount(promo model.PromotionCode, eligible []model.CartItem) decimal.Decimal {
	buyX, getY := promo.BuyXQuantity, promo.GetYQuantity
	if promo.EnhancedType == model.EnhancedBuyOneGetOne {
		if buyX <= 0 {
			buyX = 1
		}
		if getY <= 0 {
			getY = 1
		}
	}
	if buyX <= 0 || getY <= 0 {
		return decimal.Zero
	}
	pct := promo.GetYDiscountPercentage
	if !pct.IsPositive() {
		pct = hundred
	}

	matching := 0
	var cheapest decimal.Decimal
	found := false
	for _, item := range eligible {
		if item.Quantity <= 0 {
			continue
		}
		matching += item.Quantity
		if !found || item.UnitPrice.LessThan(cheapest) {
			cheapest = item.UnitPrice
			found = true
		}
	}
	if !found {
		return decimal.Zero
	}

	groups := matching / (buyX + getY)
	return decimal.NewFromInt(int64(groups * getY)).
		Mul(cheapest).
		Mul(pct).
		Div(hundred)
}

// clampDiscount rounds to cents and keeps the result within [0, subtotal].
// A sub-cent subtotal caps the discount at its whole-cent floor.
func clampDiscount(d, subtotal decimal.Decimal) decimal.Decimal {
	if d.IsNegative() || subtotal.IsNegative() {
		return decimal.Zero
	}
	d = d.Round(2)
	if d.GreaterThan(subtotal) {
		d = subtotal.RoundFloor(2)
	}
	return d
}
