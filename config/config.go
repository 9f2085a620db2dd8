package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the store backend.
type Config struct {
	Port     string
	Env      string
	MongoURI string
	MongoDB  string
	RedisURL string

	JWTSecret string
	JWTExpiry time.Duration

	MLServiceURL string
	MLTimeout    time.Duration

	// Pricing rules applied at checkout.
	FreeShippingThreshold float64
	ShippingFee           float64
	TaxRate               float64

	ReturnWindowDays int
	// RestockOnReturn controls whether a returned order restores variant
	// stock the way a cancellation does. The storefront historically did
	// not restock returns (they go through inspection first).
	RestockOnReturn bool

	// CartTTL of zero means carts never expire.
	CartTTL        time.Duration
	IdempotencyTTL time.Duration
}

func Load() Config {
	return Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("APP_ENV", "development"),
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "myntra"),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		JWTSecret: getEnv("JWT_SECRET", "fallback_secret"),
		JWTExpiry: getDuration("JWT_EXPIRY", 7*24*time.Hour),

		MLServiceURL: getEnv("ML_SERVICE_URL", "http://127.0.0.1:5000"),
		MLTimeout:    getDuration("ML_TIMEOUT", 15*time.Second),

		FreeShippingThreshold: getFloat("FREE_SHIPPING_THRESHOLD", 999),
		ShippingFee:           getFloat("SHIPPING_FEE", 50),
		TaxRate:               getFloat("TAX_RATE", 0.18),

		ReturnWindowDays: getInt("RETURN_WINDOW_DAYS", 30),
		RestockOnReturn:  getBool("RESTOCK_ON_RETURN", false),

		CartTTL:        getDuration("CART_TTL", 0),
		IdempotencyTTL: getDuration("IDEMPOTENCY_TTL", 24*time.Hour),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
