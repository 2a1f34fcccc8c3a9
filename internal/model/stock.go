package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderMode decides whether flavor selection is bounded by live stock.
type OrderMode string

const (
	OrderModeStockBased OrderMode = "stock_based"
	OrderModePreorder   OrderMode = "preorder"
)

// Valid reports whether m is a known order mode.
func (m OrderMode) Valid() bool {
	return m == OrderModeStockBased || m == OrderModePreorder
}

// Size is a flavor size.
type Size string

const (
	SizeMini   Size = "mini"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Valid reports whether s is a known size.
func (s Size) Valid() bool {
	return s == SizeMini || s == SizeMedium || s == SizeLarge
}

// ItemType identifies what a stock history row refers to.
type ItemType string

const ItemTypeFlavor ItemType = "flavor"

// ChangeType is the kind of stock adjustment.
type ChangeType string

const (
	ChangeAddition    ChangeType = "addition"
	ChangeSubtraction ChangeType = "subtraction"
	ChangeReplacement ChangeType = "replacement"
)

// FlavorStock is the stock level of one flavor in one size.
type FlavorStock struct {
	FlavorID             string    `json:"flavor_id"`
	Size                 Size      `json:"size"`
	Quantity             int       `json:"quantity"`
	AllowOutOfStockOrder bool      `json:"allow_out_of_stock_order"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// StockHistory is an immutable audit row for one stock change.
type StockHistory struct {
	ID           uuid.UUID  `json:"id"`
	ItemID       string     `json:"item_id"`
	ItemType     ItemType   `json:"item_type"`
	Size         Size       `json:"size"`
	OldQuantity  int        `json:"old_quantity"`
	NewQuantity  int        `json:"new_quantity"`
	ChangeAmount int        `json:"change_amount"`
	ChangeType   ChangeType `json:"change_type"`
	Notes        string     `json:"notes"`
	ChangedBy    string     `json:"changed_by"`
	ChangedAt    time.Time  `json:"changed_at"`
}

// StockAdjustRequest is the DTO for an admin stock adjustment.
type StockAdjustRequest struct {
	FlavorID             string     `json:"flavor_id" validate:"required,notblank,max=255"`
	Size                 Size       `json:"size" validate:"required,oneof=mini medium large"`
	ChangeType           ChangeType `json:"change_type" validate:"required,oneof=addition subtraction replacement"`
	Amount               *int       `json:"amount" validate:"required,gte=0"`
	AllowOutOfStockOrder *bool      `json:"allow_out_of_stock_order"`
	Notes                string     `json:"notes" validate:"max=1000"`
	ChangedBy            string     `json:"changed_by" validate:"required,notblank,max=255"`
}

// StockAvailability is the API view of a flavor's availability.
type StockAvailability struct {
	FlavorID      string    `json:"flavor_id"`
	Size          Size      `json:"size"`
	OrderMode     OrderMode `json:"order_mode"`
	Quantity      int       `json:"quantity"`
	MaxSelectable int       `json:"max_selectable"`
	Unlimited     bool      `json:"unlimited"`
}

// Pack is a product made of a fixed number of customer-chosen flavor units.
type Pack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	FlavorCount int             `json:"flavor_count"`
	Size        Size            `json:"size"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
}

// DeliveryZone carries the base delivery fee for an area.
type DeliveryZone struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Fee    decimal.Decimal `json:"fee"`
	Active bool            `json:"active"`
}

// OrderModeRequest is the DTO for switching the store's order mode.
type OrderModeRequest struct {
	OrderMode OrderMode `json:"order_mode" validate:"required,oneof=stock_based preorder"`
}
