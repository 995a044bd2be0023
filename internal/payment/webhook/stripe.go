package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/aliyev12/vistashopverse/internal/logger"
	"github.com/aliyev12/vistashopverse/internal/order"
	"github.com/aliyev12/vistashopverse/internal/payment"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

const maxWebhookBody = 65536

// StripeHandler receives Stripe events and reconciles completed
// charges against orders. Events are deduplicated by provider event
// id before any order state changes.
type StripeHandler struct {
	OrderSvc order.Service
	Gateway  payment.Gateway
	Repo     payment.Repository
}

func NewStripeHandler(orderSvc order.Service, gateway payment.Gateway, repo payment.Repository) *StripeHandler {
	return &StripeHandler{
		OrderSvc: orderSvc,
		Gateway:  gateway,
		Repo:     repo,
	}
}

func (h *StripeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(zap.String("handler", "stripe_webhook"))

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.Gateway.VerifyWebhook(r, body); err != nil {
		log.Warn("rejecting webhook with bad signature", zap.Error(err))
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var event stripe.Event
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
	)

	if event.Type != "charge.succeeded" {
		// Not a reconciliation event, acknowledge and move on.
		w.WriteHeader(http.StatusOK)
		return
	}

	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		http.Error(w, "invalid charge payload", http.StatusBadRequest)
		return
	}

	orderID := charge.Metadata["order_id"]
	if orderID == "" {
		log.Warn("charge.succeeded without order_id metadata",
			zap.String("charge_id", charge.ID))
		http.Error(w, "missing order_id", http.StatusBadRequest)
		return
	}

	webhookID, isDuplicate, err := h.Repo.SavePaymentWebhook(
		r.Context(), payment.ProviderStripe, event.ID, string(event.Type),
		charge.ID, body, true,
	)
	if err != nil {
		log.Error("failed to record webhook", zap.Error(err))
		http.Error(w, "failed to record webhook", http.StatusInternalServerError)
		return
	}
	if isDuplicate {
		log.Info("duplicate webhook, already handled")
		w.WriteHeader(http.StatusOK)
		return
	}

	result := order.PaymentResult{
		ID:         charge.ID,
		Status:     "COMPLETED",
		PayerEmail: payerEmail(&charge),
		AmountPaid: centsToAmount(charge.Amount),
	}

	if _, err := h.OrderSvc.MarkPaidFromProvider(r.Context(), orderID, result); err != nil {
		log.Error("failed to mark order paid", zap.Error(err))
		_ = h.Repo.MarkWebhookFailed(r.Context(), webhookID, err.Error())
		http.Error(w, "failed to update order", http.StatusInternalServerError)
		return
	}

	if err := h.Repo.MarkWebhookProcessed(r.Context(), webhookID); err != nil {
		log.Warn("failed to mark webhook processed", zap.Error(err))
	}

	log.Info("stripe charge reconciled", zap.String("order_id", orderID))
	w.WriteHeader(http.StatusOK)
}

// centsToAmount renders a Stripe integer amount as a 2dp string.
func centsToAmount(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func payerEmail(c *stripe.Charge) string {
	if c.BillingDetails != nil && c.BillingDetails.Email != "" {
		return c.BillingDetails.Email
	}
	return c.ReceiptEmail
}
