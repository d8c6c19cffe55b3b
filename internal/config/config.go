package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	Env  string
	Port string

	// Store
	StoreBackend string
	RedisURL     string
	RedisPass    string
	RedisDB      int
	KeyPrefix    string

	// Caller identity
	JWTSecret string
	JWTExpiry time.Duration

	// The only account allowed to run admin operations.
	AuthorityAccount string

	RateLimitPerMinute int

	SentryDSN string
}

func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %v", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %v", err)
	}

	cfg := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		StoreBackend: getEnv("STORE_BACKEND", StoreRedis),
		RedisURL:     getEnv("REDIS_URL", "localhost:6379"),
		RedisPass:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:      redisDB,
		KeyPrefix:    getEnv("KEY_PREFIX", "gs:"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: parseDuration(getEnv("JWT_EXPIRY", "24h")),

		AuthorityAccount: getEnv("AUTHORITY_ACCOUNT", ""),

		RateLimitPerMinute: rateLimit,

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.AuthorityAccount == "" {
		return fmt.Errorf("AUTHORITY_ACCOUNT is required")
	}
	switch c.StoreBackend {
	case StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
