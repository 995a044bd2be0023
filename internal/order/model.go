package order

import (
	"time"

	"github.com/aliyev12/vistashopverse/internal/cart"
	"github.com/aliyev12/vistashopverse/internal/user"

	"github.com/shopspring/decimal"
)

const (
	MethodPayPal         = "PayPal"
	MethodStripe         = "Stripe"
	MethodCashOnDelivery = "CashOnDelivery"
)

// PaymentResult is the provider's confirmation, stored on the order
// as JSON once payment is reconciled.
type PaymentResult struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	PayerEmail string `json:"payer_email"`
	AmountPaid string `json:"amount_paid"`
}

// Order is the immutable snapshot of a cart taken at checkout.
// Only the paid/delivered status fields change after creation, and
// each of those changes exactly once.
type Order struct {
	ID              string
	UserID          uint
	Items           []cart.LineItem
	ShippingAddress user.ShippingAddress
	PaymentMethod   string
	ItemsPrice      decimal.Decimal
	ShippingPrice   decimal.Decimal
	TaxPrice        decimal.Decimal
	TotalPrice      decimal.Decimal
	IsPaid          bool
	PaidAt          *time.Time
	IsDelivered     bool
	DeliveredAt     *time.Time
	PaymentResult   *PaymentResult
	CreatedAt       time.Time
}

// ListOptions pages order listings.
type ListOptions struct {
	Limit *int32
	Page  *int32
}
