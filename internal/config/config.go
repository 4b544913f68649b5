package config

import "os"

// Config holds environment-driven configuration.
type Config struct {
	Addr                string
	DatabaseURL         string
	JWTSecret           string
	StripeSecretKey     string
	StripeWebhookSecret string
	ViaCEPBaseURL       string
	RedisAddr           string
}

// Load reads configuration from environment variables.
func Load() Config {
	addr := os.Getenv("STOREFRONT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	viaCEP := os.Getenv("VIACEP_BASE_URL")
	if viaCEP == "" {
		viaCEP = "https://viacep.com.br"
	}

	return Config{
		Addr:                addr,
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		ViaCEPBaseURL:       viaCEP,
		RedisAddr:           os.Getenv("REDIS_ADDR"),
	}
}
