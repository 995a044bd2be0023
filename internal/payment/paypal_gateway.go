package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aliyev12/vistashopverse/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type paypalGateway struct {
	clientID     string
	clientSecret string
	webhookID    string
	baseURL      string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewPayPalGateway talks to the PayPal REST checkout API directly.
// baseURL selects the live or sandbox environment.
func NewPayPalGateway(clientID, clientSecret, webhookID, baseURL string) Gateway {
	if clientID == "" || clientSecret == "" {
		logger.L().Warn("PayPal credentials are empty")
	}

	return &paypalGateway{
		clientID:     clientID,
		clientSecret: clientSecret,
		webhookID:    webhookID,
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ----------------- OAuth token -----------------

func (p *paypalGateway) getAccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, "POST",
		p.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}

	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read paypal response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.L().Error("PayPal token request failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return "", fmt.Errorf("paypal token error: %s", string(bodyBytes))
	}

	var res struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		return "", err
	}

	p.accessToken = res.AccessToken
	// Refresh a minute early so an in-flight call never carries an
	// expired token.
	p.tokenExpiry = time.Now().Add(time.Duration(res.ExpiresIn-60) * time.Second)

	return p.accessToken, nil
}

func (p *paypalGateway) doJSON(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	token, err := p.getAccessToken(ctx)
	if err != nil {
		return 0, nil, err
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Add("Authorization", "Bearer "+token)
	req.Header.Add("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read paypal response: %w", err)
	}

	return resp.StatusCode, bodyBytes, nil
}

// ----------------- CreateOrder -----------------

type paypalOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

func (p *paypalGateway) CreateOrder(ctx context.Context, req CreateOrderRequest) (*ProviderOrder, error) {
	log := logger.L().With(
		zap.String("order_id", req.OrderID),
		zap.String("amount", req.Amount.StringFixed(2)),
	)

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"custom_id": req.OrderID,
				"amount": map[string]string{
					"currency_code": currency,
					"value":         req.Amount.StringFixed(2),
				},
			},
		},
	}

	log.Info("Creating PayPal order")

	status, body, err := p.doJSON(ctx, "POST", "/v2/checkout/orders", payload)
	if err != nil {
		log.Error("PayPal request failed", zap.Error(err))
		return nil, err
	}

	if status != http.StatusOK && status != http.StatusCreated {
		log.Error("PayPal returned non-success status",
			zap.Int("status", status),
			zap.ByteString("response", body),
		)
		return nil, fmt.Errorf("paypal error: %s", string(body))
	}

	var res paypalOrderResponse
	if err := json.Unmarshal(body, &res); err != nil {
		log.Error("Failed decoding PayPal response", zap.Error(err))
		return nil, err
	}

	var approvalURL string
	for _, link := range res.Links {
		if link.Rel == "approve" {
			approvalURL = link.Href
			break
		}
	}

	log.Info("PayPal order created",
		zap.String("provider_order_id", res.ID),
		zap.String("status", res.Status),
	)

	return &ProviderOrder{
		ID:          res.ID,
		Status:      res.Status,
		ApprovalURL: approvalURL,
	}, nil
}

// ----------------- CaptureOrder -----------------

type paypalCaptureResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Amount struct {
					Value string `json:"value"`
				} `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (p *paypalGateway) CaptureOrder(ctx context.Context, providerOrderID string) (*CaptureResult, error) {
	log := logger.L().With(zap.String("provider_order_id", providerOrderID))

	status, body, err := p.doJSON(ctx, "POST",
		"/v2/checkout/orders/"+providerOrderID+"/capture", struct{}{})
	if err != nil {
		log.Error("PayPal capture request failed", zap.Error(err))
		return nil, err
	}

	if status != http.StatusOK && status != http.StatusCreated {
		log.Error("PayPal capture returned non-success status",
			zap.Int("status", status),
			zap.ByteString("response", body),
		)
		return nil, fmt.Errorf("paypal capture error: %s", string(body))
	}

	var res paypalCaptureResponse
	if err := json.Unmarshal(body, &res); err != nil {
		log.Error("Failed decoding PayPal capture", zap.Error(err))
		return nil, err
	}

	if res.Status != "COMPLETED" {
		return nil, fmt.Errorf("paypal capture not completed: %s", res.Status)
	}

	result := &CaptureResult{
		ID:         res.ID,
		Status:     res.Status,
		PayerEmail: res.Payer.EmailAddress,
	}

	for _, pu := range res.PurchaseUnits {
		for _, c := range pu.Payments.Captures {
			amount, err := decimal.NewFromString(c.Amount.Value)
			if err != nil {
				return nil, fmt.Errorf("bad capture amount %q: %w", c.Amount.Value, err)
			}
			result.ID = c.ID
			result.AmountPaid = result.AmountPaid.Add(amount)
		}
	}

	log.Info("PayPal capture completed",
		zap.String("capture_id", result.ID),
		zap.String("amount", result.AmountPaid.String()),
	)

	return result, nil
}

// ----------------- Verify Webhook -----------------

// VerifyWebhook checks the event signature through PayPal's
// verification endpoint. An empty webhook id skips verification,
// which is only acceptable in dev.
func (p *paypalGateway) VerifyWebhook(r *http.Request, body []byte) error {
	if p.webhookID == "" {
		return nil
	}

	payload := map[string]interface{}{
		"auth_algo":         r.Header.Get("Paypal-Auth-Algo"),
		"cert_url":          r.Header.Get("Paypal-Cert-Url"),
		"transmission_id":   r.Header.Get("Paypal-Transmission-Id"),
		"transmission_sig":  r.Header.Get("Paypal-Transmission-Sig"),
		"transmission_time": r.Header.Get("Paypal-Transmission-Time"),
		"webhook_id":        p.webhookID,
		"webhook_event":     json.RawMessage(body),
	}

	status, respBody, err := p.doJSON(r.Context(), "POST",
		"/v1/notifications/verify-webhook-signature", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("paypal webhook verification error: %s", string(respBody))
	}

	var res struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.Unmarshal(respBody, &res); err != nil {
		return err
	}

	if res.VerificationStatus != "SUCCESS" {
		return errors.New("invalid webhook signature")
	}
	return nil
}
