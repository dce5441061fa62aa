// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :3000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN. When empty the app falls back to
	// JSON-file storage under DataDir.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// DataDir is the directory for JSON-file storage; used only when
	// DATABASE_URL is unset.
	DataDir string `mapstructure:"DATA_DIR"`
	// JWTSecret is the HMAC signing secret; at least 32 bytes, required.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTTTL is the token and session lifetime (e.g. "24h").
	JWTTTL string `mapstructure:"JWT_TTL"`
	// ScryptN is the scrypt cost factor; power of two in [1024, 262144].
	ScryptN int `mapstructure:"SCRYPT_N"`
	// HashConcurrency caps concurrent key derivations.
	HashConcurrency int `mapstructure:"HASH_CONCURRENCY"`
	// SessionSweepInterval is how often the expired-session sweep runs (e.g. "1h").
	SessionSweepInterval string `mapstructure:"SESSION_SWEEP_INTERVAL"`
	// RateLimitLoginMax is the number of login/signup attempts allowed per
	// IP per window.
	RateLimitLoginMax int `mapstructure:"RATE_LIMIT_LOGIN_MAX"`
	// RateLimitLoginWindow is the fixed rate-limit window (e.g. "1m").
	RateLimitLoginWindow string `mapstructure:"RATE_LIMIT_LOGIN_WINDOW"`
	// Env is the application environment ("development" or "production").
	// Selects the zap logger configuration.
	Env string `mapstructure:"APP_ENV"`
}

const minSecretLen = 32

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":3000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("SCRYPT_N", 16384)
	v.SetDefault("HASH_CONCURRENCY", 4)
	v.SetDefault("SESSION_SWEEP_INTERVAL", "1h")
	v.SetDefault("RATE_LIMIT_LOGIN_MAX", 10)
	v.SetDefault("RATE_LIMIT_LOGIN_WINDOW", "1m")
	v.SetDefault("APP_ENV", "development")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if len(cfg.JWTSecret) < minSecretLen {
		return nil, errors.New("config: JWT_SECRET must be at least 32 bytes")
	}
	if n := cfg.ScryptN; n < 1024 || n > 1<<18 || n&(n-1) != 0 {
		return nil, errors.New("config: SCRYPT_N must be a power of two between 1024 and 262144")
	}
	if cfg.DatabaseURL == "" && cfg.DataDir == "" {
		return nil, errors.New("config: DATA_DIR must be set when DATABASE_URL is empty")
	}

	return &cfg, nil
}

// TokenTTL parses JWTTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// SweepInterval parses SessionSweepInterval. Returns 1h if unset or invalid.
func (c *Config) SweepInterval() time.Duration {
	d, err := time.ParseDuration(c.SessionSweepInterval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// LoginWindow parses RateLimitLoginWindow. Returns 1m if unset or invalid.
func (c *Config) LoginWindow() time.Duration {
	d, err := time.ParseDuration(c.RateLimitLoginWindow)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}
