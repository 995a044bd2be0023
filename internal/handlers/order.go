package handlers

import (
	"net/http"
	"strconv"

	"github.com/aliyev12/vistashopverse/internal/logger"
	"github.com/aliyev12/vistashopverse/internal/order"
	"github.com/aliyev12/vistashopverse/internal/payment"
	"github.com/aliyev12/vistashopverse/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) Checkout(c *gin.Context) {
	o, err := h.Orders.Checkout(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, o)
}

func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, o)
}

func listOptions(c *gin.Context) order.ListOptions {
	var opts order.ListOptions
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 32); err == nil {
		limit := int32(v)
		opts.Limit = &limit
	}
	if v, err := strconv.ParseInt(c.Query("page"), 10, 32); err == nil {
		page := int32(v)
		opts.Page = &page
	}
	return opts
}

func (h *Handler) ListMyOrders(c *gin.Context) {
	orders, err := h.Orders.ListMyOrders(c.Request.Context(), listOptions(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"orders": orders})
}

func (h *Handler) ListAllOrders(c *gin.Context) {
	orders, total, err := h.Orders.ListAllOrders(c.Request.Context(), listOptions(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"orders": orders, "total": total})
}

// gatewayForOrder picks the configured provider for the order's
// stored payment method. Cash on delivery has no gateway.
func (h *Handler) gatewayForOrder(o *order.Order) (payment.Gateway, string, bool) {
	switch o.PaymentMethod {
	case order.MethodPayPal:
		gw, ok := h.Gateways[payment.ProviderPayPal]
		return gw, payment.ProviderPayPal, ok
	case order.MethodStripe:
		gw, ok := h.Gateways[payment.ProviderStripe]
		return gw, payment.ProviderStripe, ok
	default:
		return nil, "", false
	}
}

// CreatePayment registers the order with its payment provider and
// hands the approval details back to the client.
func (h *Handler) CreatePayment(c *gin.Context) {
	o, err := h.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if o.IsPaid {
		respondError(c, http.StatusConflict, "order is already paid")
		return
	}

	gw, provider, ok := h.gatewayForOrder(o)
	if !ok {
		respondError(c, http.StatusBadRequest, "order has no online payment provider")
		return
	}

	po, err := gw.CreateOrder(c.Request.Context(), payment.CreateOrderRequest{
		OrderID:    o.ID,
		Amount:     o.TotalPrice,
		Currency:   "USD",
		PayerEmail: utils.GetUserEmailFromContext(c.Request.Context()),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// The provider order exists either way; a failed pending row only
	// costs the payment history entry, not the payment.
	if err := h.Payments.SavePayment(c.Request.Context(), &payment.Payment{
		OrderID:    o.ID,
		Provider:   provider,
		ExternalID: po.ID,
		Amount:     o.TotalPrice,
		Status:     payment.StatusPending,
	}); err != nil {
		logger.FromCtx(c.Request.Context()).Warn("failed to record pending payment",
			zap.String("order_id", o.ID), zap.Error(err))
	}

	respondCreated(c, po)
}

// GetPayment returns the latest payment attempt recorded for an order.
func (h *Handler) GetPayment(c *gin.Context) {
	o, err := h.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	p, err := h.Payments.GetPaymentByOrder(c.Request.Context(), o.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if p == nil {
		respondError(c, http.StatusNotFound, "no payment recorded for order")
		return
	}

	respondOK(c, p)
}

// CapturePayment completes an approved provider payment and
// reconciles the result onto the order.
func (h *Handler) CapturePayment(c *gin.Context) {
	var req struct {
		ProviderOrderID string `json:"provider_order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	gw, _, ok := h.gatewayForOrder(o)
	if !ok {
		respondError(c, http.StatusBadRequest, "order has no online payment provider")
		return
	}

	capture, err := gw.CaptureOrder(c.Request.Context(), req.ProviderOrderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result := order.PaymentResult{
		ID:         capture.ID,
		Status:     capture.Status,
		PayerEmail: capture.PayerEmail,
		AmountPaid: capture.AmountPaid.StringFixed(2),
	}

	o, err = h.Orders.MarkPaidFromProvider(c.Request.Context(), o.ID, result)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.Payments.UpdatePaymentStatus(
		c.Request.Context(), req.ProviderOrderID, payment.StatusSucceeded,
	); err != nil {
		logger.FromCtx(c.Request.Context()).Warn("failed to update payment status",
			zap.String("order_id", o.ID), zap.Error(err))
	}

	respondOK(c, o)
}

func (h *Handler) MarkPaidCashOnDelivery(c *gin.Context) {
	o, err := h.Orders.MarkPaidCashOnDelivery(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, o)
}

func (h *Handler) MarkDelivered(c *gin.Context) {
	o, err := h.Orders.MarkDelivered(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, o)
}
