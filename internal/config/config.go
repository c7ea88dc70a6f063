package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string
	PublicBaseURL      string
	CurrencyCode       string

	MercadoPagoPublicKey   string
	MercadoPagoAccessToken string
	MercadoPagoBaseURL     string
	PaymentSandbox         bool

	PixExpiry        time.Duration
	PixDiscountBPS   int
	CardApprovalRate float64
	MaxInstallments  int

	CartTTL        time.Duration
	ChargeTTL      time.Duration
	IdempotencyTTL time.Duration

	CatalogCacheTTL time.Duration

	ConfirmRateLimit string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		PublicBaseURL:      valueOrDefault(strings.TrimSpace(k.String("PUBLIC_BASE_URL")), "http://localhost:8080"),
		CurrencyCode:       valueOrDefault(k.String("CURRENCY_CODE"), "BRL"),

		MercadoPagoPublicKey:   k.String("MP_PUBLIC_KEY"),
		MercadoPagoAccessToken: k.String("MP_ACCESS_TOKEN"),
		MercadoPagoBaseURL:     strings.TrimSpace(k.String("MP_BASE_URL")),
		PaymentSandbox:         parseBool(valueOrDefault(k.String("PAYMENT_SANDBOX"), "true")),

		PixExpiry:        parseDuration(k.String("PIX_EXPIRY"), "30m"),
		PixDiscountBPS:   parseInt(k.String("PIX_DISCOUNT_BPS"), 500),
		CardApprovalRate: parseFloat(k.String("CARD_APPROVAL_RATE"), 0.9),
		MaxInstallments:  parseInt(k.String("MAX_INSTALLMENTS"), 12),

		CartTTL:        parseDuration(k.String("CART_TTL"), "168h"),
		ChargeTTL:      parseDuration(k.String("CHARGE_TTL"), "24h"),
		IdempotencyTTL: parseDuration(k.String("IDEMPOTENCY_TTL"), "2m"),

		CatalogCacheTTL: parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),

		ConfirmRateLimit: valueOrDefault(k.String("CONFIRM_RATE_LIMIT"), "10-M"),
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.PixDiscountBPS < 0 || cfg.PixDiscountBPS > 10000 {
		return nil, fmt.Errorf("PIX_DISCOUNT_BPS out of range: %d", cfg.PixDiscountBPS)
	}
	if cfg.CardApprovalRate < 0 || cfg.CardApprovalRate > 1 {
		return nil, fmt.Errorf("CARD_APPROVAL_RATE out of range: %f", cfg.CardApprovalRate)
	}
	if cfg.MaxInstallments < 1 {
		cfg.MaxInstallments = 1
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return b
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return f
}
