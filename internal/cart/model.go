package cart

import (
	"time"

	"github.com/aliyev12/vistashopverse/internal/pricing"

	"github.com/shopspring/decimal"
)

// LineItem is one product at its price when it was added. Serialized
// into the cart's JSONB items column and frozen into order snapshots.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Qty       int32           `json:"qty"`
}

// Owner identifies who a cart belongs to: an authenticated user, or
// an anonymous session when no user is signed in.
type Owner struct {
	UserID        *uint
	SessionCartID string
}

func (o Owner) Resolvable() bool {
	return o.UserID != nil || o.SessionCartID != ""
}

// Cart is the mutable pre-checkout collection of line items. The four
// price fields are derived and recomputed on every mutation.
type Cart struct {
	ID            string
	UserID        *uint
	SessionCartID string
	Items         []LineItem
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PricingItems adapts the line items for the pricing calculator.
func (c *Cart) PricingItems() []pricing.Item {
	return PricingItems(c.Items)
}

func PricingItems(items []LineItem) []pricing.Item {
	out := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		out = append(out, pricing.Item{Price: it.Price, Qty: it.Qty})
	}
	return out
}

func (c *Cart) applyBreakdown(b pricing.Breakdown) {
	c.ItemsPrice = b.ItemsPrice
	c.ShippingPrice = b.ShippingPrice
	c.TaxPrice = b.TaxPrice
	c.TotalPrice = b.TotalPrice
}

// CopyItems returns a deep copy of the cart's items, used by checkout
// to snapshot the cart into an immutable order.
func (c *Cart) CopyItems() []LineItem {
	snapshot := make([]LineItem, len(c.Items))
	copy(snapshot, c.Items)
	return snapshot
}

// ParseLineItem validates raw line-item input into a LineItem.
func ParseLineItem(productID, slug, name, image string, price decimal.Decimal, qty int32) (LineItem, error) {
	if productID == "" {
		return LineItem{}, errValidation("product id is required")
	}
	if qty < 1 {
		return LineItem{}, errValidation("quantity must be at least 1")
	}
	if price.IsNegative() {
		return LineItem{}, errValidation("price must not be negative")
	}

	return LineItem{
		ProductID: productID,
		Slug:      slug,
		Name:      name,
		Image:     image,
		Price:     price,
		Qty:       qty,
	}, nil
}
