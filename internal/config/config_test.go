package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, "data/app.db", cfg.DatabasePath)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(50), cfg.SignupBonus)
	assert.Equal(t, int64(10), cfg.TopUpRate)
	assert.Equal(t, int64(1), cfg.TextFee)
	assert.Equal(t, int64(5), cfg.DocumentFee)
	assert.Equal(t, int64(10), cfg.AudioFee)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_LISTEN_ADDR", ":9999")
	t.Setenv("APP_DATABASE_PATH", "/tmp/other.db")
	t.Setenv("APP_MOCK_LATENCY", "0")
	t.Setenv("APP_SEED_EMAIL", "admin@example.com")
	t.Setenv("APP_SEED_PASSWORD", "password123")
	t.Setenv("APP_SEED_CREDITS", "250")

	cfg := Load()

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "/tmp/other.db", cfg.DatabasePath)
	assert.Equal(t, time.Duration(0), cfg.MockLatency)
	assert.Equal(t, "admin@example.com", cfg.SeedEmail)
	assert.Equal(t, "password123", cfg.SeedPassword)
	assert.Equal(t, int64(250), cfg.SeedCredits)
}

func TestLoadIgnoresInvalidSeedCredits(t *testing.T) {
	t.Setenv("APP_SEED_CREDITS", "not-a-number")

	cfg := Load()
	assert.Equal(t, int64(1000), cfg.SeedCredits)
}
