package handlers

import (
	"net/http"

	"github.com/aliyev12/vistashopverse/internal/logger"
	"github.com/aliyev12/vistashopverse/internal/middleware"
	"github.com/aliyev12/vistashopverse/internal/payment/webhook"

	"github.com/gin-gonic/gin"
)

// NewRouter assembles the gin routes and wraps the engine in the
// request-id, logging, CORS, auth and rate-limit chain. The outer
// chain runs as plain net/http so the webhook handlers and the gin
// routes share one context shape.
func NewRouter(h *Handler, stripeWh *webhook.StripeHandler, paypalWh *webhook.PayPalHandler) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.GET("/me", h.Me)
			auth.PUT("/address", h.SaveAddress)
			auth.PUT("/payment-method", h.SavePaymentMethod)
		}

		products := api.Group("/products")
		{
			products.GET("", h.ListProducts)
			products.GET("/:slug", h.GetProductBySlug)
		}

		carts := api.Group("/cart")
		{
			carts.GET("", h.GetCart)
			carts.POST("/items", h.AddCartItem)
			carts.PUT("/items/:productId", h.UpdateCartItem)
			carts.DELETE("/items/:productId", h.RemoveCartItem)
		}

		orders := api.Group("/orders")
		{
			orders.POST("/checkout", h.Checkout)
			orders.GET("", h.ListMyOrders)
			orders.GET("/all", h.ListAllOrders)
			orders.GET("/:id", h.GetOrder)
			orders.POST("/:id/payments", h.CreatePayment)
			orders.GET("/:id/payments", h.GetPayment)
			orders.POST("/:id/payments/capture", h.CapturePayment)
			orders.PATCH("/:id/pay-cod", h.MarkPaidCashOnDelivery)
			orders.PATCH("/:id/deliver", h.MarkDelivered)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
		}

		webhooks := api.Group("/webhooks")
		{
			webhooks.POST("/stripe", gin.WrapF(stripeWh.Handle))
			webhooks.POST("/paypal", gin.WrapF(paypalWh.Handle))
		}
	}

	var handler http.Handler = r
	handler = middleware.RateLimitMiddleware(handler)
	handler = middleware.AuthMiddleware(handler)
	handler = middleware.CORS(handler)
	handler = logger.LoggingMiddleware(handler)
	handler = logger.RequestIDMiddleware(handler)
	return handler
}
