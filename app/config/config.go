// Package config loads runtime settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSecret = "dev-secret-change-me"

// Config holds every setting the server reads at startup.
type Config struct {
	Port                  string
	DBPath                string
	JWTSecret             string
	TokenTTL              time.Duration
	LogLevel              slog.Level
	LogFormat             string
	ModerationRequireAuth bool
}

// UsingDevSecret reports whether no JWT_SECRET was configured.
func (c *Config) UsingDevSecret() bool {
	return c.JWTSecret == devSecret
}

// Addr is the listen address derived from Port.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// Load reads .env files (when present) and then the environment. Values
// already set in the environment win over the files.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}

	cfg := &Config{
		Port:      GetEnv("PORT", "8080"),
		DBPath:    GetEnv("DB_PATH", "data/badger"),
		JWTSecret: GetEnv("JWT_SECRET", devSecret),
		LogFormat: strings.ToLower(GetEnv("LOG_FORMAT", "text")),
	}

	ttl, err := time.ParseDuration(GetEnv("TOKEN_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL %q", os.Getenv("TOKEN_TTL"))
	}
	cfg.TokenTTL = ttl

	if err := cfg.LogLevel.UnmarshalText([]byte(GetEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg.ModerationRequireAuth, err = strconv.ParseBool(GetEnv("MODERATION_REQUIRE_AUTH", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid MODERATION_REQUIRE_AUTH: %w", err)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q (want text or json)", cfg.LogFormat)
	}

	return cfg, nil
}

// GetEnv returns the value of k, or def when it is unset or empty.
func GetEnv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// NewLogger builds the process logger described by the config.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
