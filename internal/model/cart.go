package model

import "github.com/shopspring/decimal"

// FlavorSelection is a quantity of one flavor chosen for a pack.
type FlavorSelection struct {
	FlavorID string `json:"flavor_id" validate:"required,notblank,max=255"`
	Size     Size   `json:"size" validate:"omitempty,oneof=mini medium large"`
	Quantity int    `json:"quantity" validate:"gte=1"`
	Category string `json:"category" validate:"max=255"`
}

// CartItem is one line of a cart. Pack lines carry PackID and selections.
type CartItem struct {
	ProductID  string            `json:"product_id" validate:"required_without=PackID,max=255"`
	PackID     string            `json:"pack_id" validate:"max=255"`
	Category   string            `json:"category" validate:"max=255"`
	Quantity   int               `json:"quantity" validate:"gte=1"`
	UnitPrice  decimal.Decimal   `json:"unit_price" validate:"gte=0"`
	Selections []FlavorSelection `json:"selections" validate:"dive"`
}

// IsPack reports whether the line is a multi-flavor pack.
func (i CartItem) IsPack() bool {
	return i.PackID != ""
}

// LineTotal returns unit price times quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Categories returns the line category followed by every flavor category.
func (i CartItem) Categories() []string {
	out := make([]string, 0, 1+len(i.Selections))
	if i.Category != "" {
		out = append(out, i.Category)
	}
	for _, s := range i.Selections {
		if s.Category != "" {
			out = append(out, s.Category)
		}
	}
	return out
}

// Cart is the set of lines under evaluation.
type Cart struct {
	Items []CartItem `json:"items"`
	// PricingRuleDiscount is the amount already taken off by automatic pricing rules.
	PricingRuleDiscount decimal.Decimal `json:"pricing_rule_discount"`
}

// Subtotal sums every line total.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// TotalQuantity sums line quantities.
func (c Cart) TotalQuantity() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}
