package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	ListenAddr string

	// DatabasePath is the location of the SQLite database file.
	DatabasePath string

	// JWTSecret signs session tokens. Rotating it invalidates every
	// outstanding session.
	JWTSecret string

	// SessionTTL is how long an issued session token stays valid.
	SessionTTL time.Duration

	// SignupBonus is the number of credits granted on registration.
	SignupBonus int64

	// TopUpRate converts a nominal currency amount into credits
	// (credits = amount * TopUpRate).
	TopUpRate int64

	// Per-operation fees in credits.
	TextFee     int64
	DocumentFee int64
	AudioFee    int64

	// MaxUploadBytes is the per-request ceiling for file uploads.
	MaxUploadBytes int64

	// MockLatency is the artificial delay of the mocked translation
	// engine. Set APP_MOCK_LATENCY=0 to disable (tests do this).
	MockLatency time.Duration

	// SeedEmail/SeedPassword, when both set, bootstrap a single account
	// the first time the service starts against an empty database. This
	// replaces the hard-coded development account of earlier iterations.
	SeedEmail    string
	SeedPassword string
	SeedName     string
	SeedCredits  int64
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		ListenAddr:     getenv("APP_LISTEN_ADDR", ":3000"),
		DatabasePath:   getenv("APP_DATABASE_PATH", "data/app.db"),
		JWTSecret:      getenv("APP_JWT_SECRET", "dev-secret-key-change-in-prod"),
		SessionTTL:     24 * time.Hour,
		SignupBonus:    50,
		TopUpRate:      10,
		TextFee:        1,
		DocumentFee:    5,
		AudioFee:       10,
		MaxUploadBytes: 10 << 20,
		MockLatency:    time.Second,
		SeedEmail:      os.Getenv("APP_SEED_EMAIL"),
		SeedPassword:   os.Getenv("APP_SEED_PASSWORD"),
		SeedName:       getenv("APP_SEED_NAME", "Admin User"),
		SeedCredits:    1000,
	}

	if v := os.Getenv("APP_MOCK_LATENCY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.MockLatency = d
		}
	}

	if v := os.Getenv("APP_SEED_CREDITS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			cfg.SeedCredits = n
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
