// Package config loads process configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
)

// Config captures everything the server needs at startup.
type Config struct {
	Addr   string
	APIKey string

	// Per-customer token bucket settings.
	RateLimitCapacity   int
	RateLimitRefillRate float64

	// Optional Redis URL for the idempotency store. Empty means in-memory.
	RedisURL string

	// Seed balances loaded into the ledger at startup.
	SeedBalances map[string]float64
}

// FromEnv builds a Config from environment variables, applying development
// defaults where unset.
func FromEnv() Config {
	cfg := Config{
		Addr:                envOr("PAYGUARD_ADDR", ":8080"),
		APIKey:              envOr("PAYGUARD_API_KEY", "dev-api-key-change-in-production"),
		RateLimitCapacity:   envIntOr("PAYGUARD_RATE_LIMIT_CAPACITY", 5),
		RateLimitRefillRate: envFloatOr("PAYGUARD_RATE_LIMIT_REFILL_RATE", 5.0),
		RedisURL:            os.Getenv("PAYGUARD_REDIS_URL"),
		SeedBalances: map[string]float64{
			"c_123": 300.00,
			"c_456": 2000.00,
		},
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envFloatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}
