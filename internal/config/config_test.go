package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("AI_TIMEOUT_SECONDS", "")

	cfg := Load()

	assert.Equal(t, "3002", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, 8*time.Second, cfg.AITimeout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "staging")
	t.Setenv("REDIS_URL", "redis://cache:6379")
	t.Setenv("DATABASE_URL", "postgres://db/chat")
	t.Setenv("AI_SERVICE_URL", "http://ai:8000/chat")
	t.Setenv("AI_TIMEOUT_SECONDS", "3")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, "redis://cache:6379", cfg.RedisURL)
	assert.Equal(t, "postgres://db/chat", cfg.DatabaseURL)
	assert.Equal(t, "http://ai:8000/chat", cfg.AIServiceURL)
	assert.Equal(t, 3*time.Second, cfg.AITimeout)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadBadTimeoutFallsBack(t *testing.T) {
	t.Setenv("AI_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()
	assert.Equal(t, 8*time.Second, cfg.AITimeout)
}

func TestLoadProductionRequiresBackends(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("REDIS_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AI_SERVICE_URL", "")

	assert.Panics(t, func() { Load() })
}
