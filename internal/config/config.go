package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	Env         string
	RedisURL    string
	DatabaseURL string // empty in development selects the SQLite index store
	SQLitePath  string

	// AI responder
	AIServiceURL string
	AITimeout    time.Duration
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "3002"),
		Env:          getEnv("ENV", "development"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SQLitePath:   os.Getenv("SQLITE_PATH"),
		AIServiceURL: os.Getenv("AI_SERVICE_URL"),
		AITimeout:    getEnvSeconds("AI_TIMEOUT_SECONDS", 8*time.Second),
	}

	// In production, require the real backends
	if cfg.Env == "production" {
		if os.Getenv("REDIS_URL") == "" {
			panic("REDIS_URL is required in production")
		}
		if cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required in production")
		}
		if cfg.AIServiceURL == "" {
			panic("AI_SERVICE_URL is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
