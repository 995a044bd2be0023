package payment

import (
	"context"
	"net/http"
)

// Gateway abstracts an external payment provider. Implementations
// wrap the provider's API or SDK; callers treat the results as
// opaque confirmations to reconcile against orders.
type Gateway interface {
	// CreateOrder registers a pending payment with the provider and
	// returns what the client needs to approve it.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*ProviderOrder, error)

	// CaptureOrder asks the provider to confirm an approved payment.
	CaptureOrder(ctx context.Context, providerOrderID string) (*CaptureResult, error)

	// VerifyWebhook authenticates an inbound provider event before
	// any of its contents are trusted.
	VerifyWebhook(r *http.Request, body []byte) error
}
