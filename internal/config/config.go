package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

var (
	ErrMissingJWTSecret  = errors.New("JWT_SECRET is required")
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrInvalidPort       = errors.New("port must be between 1 and 65535")
)

// Config holds all configuration for the application. It is loaded once at
// startup and handed to the components that need it.
type Config struct {
	AppEnv                string
	DBDriver              string
	DBDSN                 string
	MigrateOnStart        bool
	HTTPPort              int
	RequestTimeout        time.Duration
	GRPCPort              int
	GRPCReflectionEnabled bool
	JWTSecret             string
	JWTIssuer             string
	RedisAddr             string
	CacheEnabled          bool
	CacheTTL              time.Duration
	SubmitRateLimit       float64
	SubmitRateBurst       int
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		DBDSN:                 getEnv("DB_DSN", "file:./data/eduinsight.db?_foreign_keys=on"),
		MigrateOnStart:        getBool("MIGRATE_ON_START", true),
		HTTPPort:              getInt("HTTP_PORT", 5000),
		RequestTimeout:        getDuration("REQUEST_TIMEOUT", 10*time.Second),
		GRPCPort:              getInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getBool("GRPC_REFLECTION_ENABLED", false),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		JWTIssuer:             getEnv("JWT_ISSUER", "eduinsight"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		CacheEnabled:          getBool("CACHE_ENABLED", false),
		CacheTTL:              getDuration("CACHE_TTL", 10*time.Minute),
		SubmitRateLimit:       getFloat("SUBMIT_RATE_LIMIT", 2),
		SubmitRateBurst:       getInt("SUBMIT_RATE_BURST", 5),
	}
}

// Validate reports the first required setting that is missing or out of
// range. The server must not start when it returns an error.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.DBDriver)
	}
	for name, port := range map[string]int{"HTTP_PORT": c.HTTPPort, "GRPC_PORT": c.GRPCPort} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("%w: %s=%d", ErrInvalidPort, name, port)
		}
	}
	return nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
