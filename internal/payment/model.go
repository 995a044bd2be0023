package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProviderPayPal = "PAYPAL"
	ProviderStripe = "STRIPE"
)

// Payment row lifecycle: pending on creation with the provider,
// succeeded once the charge is reconciled onto the order.
const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
)

type CreateOrderRequest struct {
	OrderID    string
	Amount     decimal.Decimal
	Currency   string
	PayerEmail string
}

// ProviderOrder is the provider-side handle for a pending payment.
type ProviderOrder struct {
	ID          string
	Status      string
	ApprovalURL string
	// ClientSecret is Stripe-specific: the browser needs it to
	// confirm the PaymentIntent.
	ClientSecret string
}

// CaptureResult is the provider's confirmation of a completed charge.
type CaptureResult struct {
	ID         string
	Status     string
	PayerEmail string
	AmountPaid decimal.Decimal
}

// Payment is the stored record of a provider payment attempt.
type Payment struct {
	ID         int64
	OrderID    string
	Provider   string
	ExternalID string
	Amount     decimal.Decimal
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
