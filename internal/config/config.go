package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Port          string
	GRPCPort      string
	DatabaseURL   string
	RedisURL      string
	MongoURI      string
	MongoDatabase string
	Environment   string

	TaxRate               decimal.Decimal
	ExpeditedSurcharge    decimal.Decimal
	RegularShippingDays   int
	ExpeditedShippingDays int

	SettlementDelay   time.Duration
	SettlementSucceed bool
	SettlementTimeout time.Duration
	CacheTTL          time.Duration
}

// Load reads the configuration from the environment. An empty DATABASE_URL
// selects the in-memory stores; empty REDIS_URL and MONGO_URI disable the
// cache and the event store.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		GRPCPort:      getEnv("GRPC_PORT", "9090"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "payments"),
		Environment:   getEnv("ENVIRONMENT", "development"),
	}

	var err error
	if cfg.TaxRate, err = getDecimal("TAX_RATE", "0.13"); err != nil {
		return nil, err
	}
	if cfg.ExpeditedSurcharge, err = getDecimal("EXPEDITED_SURCHARGE", "10.00"); err != nil {
		return nil, err
	}
	if cfg.RegularShippingDays, err = getInt("REGULAR_SHIPPING_DAYS", 7); err != nil {
		return nil, err
	}
	if cfg.ExpeditedShippingDays, err = getInt("EXPEDITED_SHIPPING_DAYS", 2); err != nil {
		return nil, err
	}
	if cfg.SettlementDelay, err = getDuration("SETTLEMENT_DELAY", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.SettlementTimeout, err = getDuration("SETTLEMENT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	switch outcome := getEnv("SETTLEMENT_OUTCOME", "success"); outcome {
	case "success":
		cfg.SettlementSucceed = true
	case "failure":
		cfg.SettlementSucceed = false
	default:
		return nil, fmt.Errorf("invalid SETTLEMENT_OUTCOME %q: want success or failure", outcome)
	}

	if cfg.TaxRate.IsNegative() || cfg.ExpeditedSurcharge.IsNegative() {
		return nil, fmt.Errorf("TAX_RATE and EXPEDITED_SURCHARGE must not be negative")
	}
	if cfg.RegularShippingDays < 0 || cfg.ExpeditedShippingDays < 0 {
		return nil, fmt.Errorf("shipping days must not be negative")
	}

	return cfg, nil
}

// GRPCEnabled is false when GRPC_PORT is "off" or "-".
func (c *Config) GRPCEnabled() bool {
	return c.GRPCPort != "off" && c.GRPCPort != "-"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDecimal(key, fallback string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
