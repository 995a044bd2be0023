package handlers

import (
	"errors"
	"net/http"

	"github.com/aliyev12/vistashopverse/internal/cart"
	"github.com/aliyev12/vistashopverse/internal/logger"
	"github.com/aliyev12/vistashopverse/internal/order"
	"github.com/aliyev12/vistashopverse/internal/payment"
	"github.com/aliyev12/vistashopverse/internal/product"
	"github.com/aliyev12/vistashopverse/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler bundles the services the HTTP layer exposes.
type Handler struct {
	Users    user.Service
	Products product.Service
	Carts    cart.Service
	Orders   order.Service
	Gateways map[string]payment.Gateway
	Payments payment.Repository
}

func New(
	users user.Service,
	products product.Service,
	carts cart.Service,
	orders order.Service,
	gateways map[string]payment.Gateway,
	payments payment.Repository,
) *Handler {
	return &Handler{
		Users:    users,
		Products: products,
		Carts:    carts,
		Orders:   orders,
		Gateways: gateways,
		Payments: payments,
	}
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}

// respondServiceError maps sentinel errors onto HTTP statuses.
// Unexpected errors are logged and masked so internals never leak to
// the client.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrUnauthenticated):
		respondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, order.ErrUnauthorized),
		errors.Is(err, product.ErrUnauthorized):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, cart.ErrItemNotInCart):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrMissingAddress),
		errors.Is(err, order.ErrMissingPaymentMethod),
		errors.Is(err, order.ErrNotYetPaid),
		errors.Is(err, order.ErrNotCashOnDelivery),
		errors.Is(err, cart.ErrSessionMissing),
		errors.Is(err, cart.ErrValidation),
		errors.Is(err, product.ErrValidation),
		errors.Is(err, user.ErrInvalidAddress),
		errors.Is(err, user.ErrInvalidPaymentMethod):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrEmailExists),
		errors.Is(err, product.ErrSlugExists):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, err.Error())
	default:
		logger.FromCtx(c.Request.Context()).Error("unhandled service error", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
