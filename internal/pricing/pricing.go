package pricing

import (
	"github.com/aliyev12/vistashopverse/internal/config"

	"github.com/shopspring/decimal"
)

// Item is the minimal line-item view the calculator needs.
type Item struct {
	Price decimal.Decimal
	Qty   int32
}

// Breakdown is the aggregate price of an item set, every component
// already rounded to two decimal places.
type Breakdown struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// Calculator computes order totals from the configured constants.
// It is pure: no state beyond the config, same input same output.
type Calculator struct {
	cfg config.Pricing
}

func NewCalculator(cfg config.Pricing) *Calculator {
	return &Calculator{cfg: cfg}
}

// Calculate returns the price breakdown for an ordered item set.
//
// Rounding is half-up (0.005 rounds to 0.01) and applied per
// component before summing, so TotalPrice always equals
// ItemsPrice + TaxPrice + ShippingPrice exactly.
// Shipping is free only strictly above ShippingMin.
func (c *Calculator) Calculate(items []Item) Breakdown {
	itemsPrice := decimal.Zero
	for _, item := range items {
		itemsPrice = itemsPrice.Add(item.Price.Mul(decimal.NewFromInt32(item.Qty)))
	}
	itemsPrice = round2(itemsPrice)

	shippingPrice := round2(c.cfg.ShippingDefault)
	if itemsPrice.GreaterThan(c.cfg.ShippingMin) {
		shippingPrice = round2(decimal.Zero)
	}

	taxPrice := round2(itemsPrice.Mul(c.cfg.TaxRate))
	totalPrice := round2(itemsPrice.Add(taxPrice).Add(shippingPrice))

	return Breakdown{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    totalPrice,
	}
}

// round2 rounds half away from zero, which for non-negative money
// is exactly round-half-up.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
