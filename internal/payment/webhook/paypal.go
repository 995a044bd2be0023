package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/aliyev12/vistashopverse/internal/logger"
	"github.com/aliyev12/vistashopverse/internal/order"
	"github.com/aliyev12/vistashopverse/internal/payment"

	"go.uber.org/zap"
)

// paypalEvent covers the fields we read from PAYMENT.CAPTURE.COMPLETED.
type paypalEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		CustomID string `json:"custom_id"`
		Amount   struct {
			Value string `json:"value"`
		} `json:"amount"`
		Payer struct {
			EmailAddress string `json:"email_address"`
		} `json:"payer"`
	} `json:"resource"`
}

type PayPalHandler struct {
	OrderSvc order.Service
	Gateway  payment.Gateway
	Repo     payment.Repository
}

func NewPayPalHandler(orderSvc order.Service, gateway payment.Gateway, repo payment.Repository) *PayPalHandler {
	return &PayPalHandler{
		OrderSvc: orderSvc,
		Gateway:  gateway,
		Repo:     repo,
	}
}

func (h *PayPalHandler) Handle(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(zap.String("handler", "paypal_webhook"))

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

	var event paypalEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.EventType),
	)

	if event.EventType != "PAYMENT.CAPTURE.COMPLETED" {
		w.WriteHeader(http.StatusOK)
		return
	}

	orderID := event.Resource.CustomID
	if orderID == "" {
		log.Warn("capture without custom_id",
			zap.String("capture_id", event.Resource.ID))
		http.Error(w, "missing custom_id", http.StatusBadRequest)
		return
	}

	webhookID, isDuplicate, err := h.Repo.SavePaymentWebhook(
		r.Context(), payment.ProviderPayPal, event.ID, event.EventType,
		event.Resource.ID, body, true,
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
		ID:         event.Resource.ID,
		Status:     "COMPLETED",
		PayerEmail: event.Resource.Payer.EmailAddress,
		AmountPaid: event.Resource.Amount.Value,
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

	log.Info("paypal capture reconciled", zap.String("order_id", orderID))
	w.WriteHeader(http.StatusOK)
}
