package main

import (
	"net/http"

	"github.com/aliyev12/vistashopverse/internal/cart"
	"github.com/aliyev12/vistashopverse/internal/config"
	"github.com/aliyev12/vistashopverse/internal/db"
	"github.com/aliyev12/vistashopverse/internal/handlers"
	"github.com/aliyev12/vistashopverse/internal/logger"
	"github.com/aliyev12/vistashopverse/internal/order"
	"github.com/aliyev12/vistashopverse/internal/payment"
	"github.com/aliyev12/vistashopverse/internal/payment/webhook"
	"github.com/aliyev12/vistashopverse/internal/pricing"
	"github.com/aliyev12/vistashopverse/internal/product"
	"github.com/aliyev12/vistashopverse/internal/user"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	calc := pricing.NewCalculator(cfg.Pricing)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo, cfg)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, productRepo, calc)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, cartRepo, userRepo, calc, cfg, nil)

	paymentRepo := payment.NewRepository(database)

	stripeGw := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	paypalGw := payment.NewPayPalGateway(
		cfg.PayPalClientID, cfg.PayPalClientSecret,
		cfg.PayPalWebhookID, cfg.PayPalAPIBase,
	)
	gateways := map[string]payment.Gateway{
		payment.ProviderStripe: stripeGw,
		payment.ProviderPayPal: paypalGw,
	}

	h := handlers.New(userSvc, productSvc, cartSvc, orderSvc, gateways, paymentRepo)
	stripeWh := webhook.NewStripeHandler(orderSvc, stripeGw, paymentRepo)
	paypalWh := webhook.NewPayPalHandler(orderSvc, paypalGw, paymentRepo)

	router := handlers.NewRouter(h, stripeWh, paypalWh)

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}
