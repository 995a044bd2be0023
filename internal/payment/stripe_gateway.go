package payment

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aliyev12/vistashopverse/internal/logger"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

type stripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway wraps the Stripe SDK. Amounts cross the wire in
// cents; the rest of the system works in decimal units.
func NewStripeGateway(secretKey, webhookSecret string) Gateway {
	if secretKey == "" {
		logger.L().Warn("Stripe secret key is empty")
	}

	api := &client.API{}
	api.Init(secretKey, nil)

	return &stripeGateway{
		api:           api,
		webhookSecret: webhookSecret,
	}
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).Round(2)
}

func (s *stripeGateway) CreateOrder(ctx context.Context, req CreateOrderRequest) (*ProviderOrder, error) {
	log := logger.L().With(
		zap.String("order_id", req.OrderID),
		zap.String("amount", req.Amount.StringFixed(2)),
	)

	currency := req.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toCents(req.Amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID)
	if req.PayerEmail != "" {
		params.ReceiptEmail = stripe.String(req.PayerEmail)
	}

	intent, err := s.api.PaymentIntents.New(params)
	if err != nil {
		log.Error("Failed creating Stripe payment intent", zap.Error(err))
		return nil, err
	}

	log.Info("Stripe payment intent created",
		zap.String("payment_intent_id", intent.ID),
		zap.String("status", string(intent.Status)),
	)

	return &ProviderOrder{
		ID:           intent.ID,
		Status:       string(intent.Status),
		ClientSecret: intent.ClientSecret,
	}, nil
}

// CaptureOrder confirms a succeeded PaymentIntent. Stripe confirms
// client-side, so this is a verification read rather than a capture
// call.
func (s *stripeGateway) CaptureOrder(ctx context.Context, providerOrderID string) (*CaptureResult, error) {
	log := logger.L().With(zap.String("payment_intent_id", providerOrderID))

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := s.api.PaymentIntents.Get(providerOrderID, params)
	if err != nil {
		log.Error("Failed retrieving Stripe payment intent", zap.Error(err))
		return nil, err
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("stripe payment intent not succeeded: %s", intent.Status)
	}

	result := &CaptureResult{
		ID:         intent.ID,
		Status:     "COMPLETED",
		AmountPaid: fromCents(intent.AmountReceived),
	}
	if intent.ReceiptEmail != "" {
		result.PayerEmail = intent.ReceiptEmail
	}

	log.Info("Stripe payment confirmed",
		zap.String("amount", result.AmountPaid.String()),
	)

	return result, nil
}

func (s *stripeGateway) VerifyWebhook(r *http.Request, body []byte) error {
	_, err := webhook.ConstructEvent(body, r.Header.Get("Stripe-Signature"), s.webhookSecret)
	return err
}
