package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Pricing holds the monetary constants the pricing calculator runs on.
// Passed into constructors explicitly so tests can vary them per case.
type Pricing struct {
	TaxRate         decimal.Decimal
	ShippingMin     decimal.Decimal
	ShippingDefault decimal.Decimal
}

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	JWTSecret string

	StripeSecretKey     string
	StripeWebhookSecret string
	PayPalClientID      string
	PayPalClientSecret  string
	PayPalWebhookID     string
	PayPalAPIBase       string

	Pricing        Pricing
	PaymentMethods []string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    getEnv("APP_PORT", "8080"),
		AppEnv:     os.Getenv("APP_ENV"),

		JWTSecret: os.Getenv("SECRET_KEY"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PayPalClientID:      os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret:  os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalWebhookID:     os.Getenv("PAYPAL_WEBHOOK_ID"),
		PayPalAPIBase:       getEnv("PAYPAL_API_BASE", "https://api-m.sandbox.paypal.com"),

		Pricing: Pricing{
			TaxRate:         getDecimal("TAX_RATE", "0.15"),
			ShippingMin:     getDecimal("SHIPPING_MIN", "100"),
			ShippingDefault: getDecimal("SHIPPING_DEFAULT", "10"),
		},
		PaymentMethods: splitList(getEnv("PAYMENT_METHODS", "PayPal,Stripe,CashOnDelivery")),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

// DefaultPaymentMethod is the first entry of the configured method set.
func (c *Config) DefaultPaymentMethod() string {
	if len(c.PaymentMethods) == 0 {
		return ""
	}
	return c.PaymentMethods[0]
}

func (c *Config) IsPaymentMethodAllowed(method string) bool {
	for _, m := range c.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDecimal(key, fallback string) decimal.Decimal {
	raw := getEnv(key, fallback)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Fatalf("invalid decimal for %s: %q", key, raw)
	}
	return d
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
