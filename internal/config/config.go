package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds terminal configuration loaded from the environment.
type Config struct {
	AppEnv            string
	Port              string
	TillID            string
	ManagerCode       string
	LogFormat         string
	LogLevel          string
	MetricsNamespace  string
	MetricsEnabled    bool
	CardTerminalDelay time.Duration
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:            valueOrDefault(k.String("APP_ENV"), "development"),
		Port:              valueOrDefault(k.String("PORT"), "8080"),
		TillID:            valueOrDefault(k.String("TILL_ID"), "till-1"),
		ManagerCode:       strings.TrimSpace(k.String("MANAGER_CODE")),
		LogFormat:         valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:          valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsNamespace:  valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "trgopos"),
		MetricsEnabled:    parseBool(valueOrDefault(k.String("OBS_ENABLE_PROMETHEUS"), "true")),
		CardTerminalDelay: parseDuration(k.String("CARD_TERMINAL_DELAY"), "2s"),
	}

	if cfg.ManagerCode == "" {
		if cfg.AppEnv != "development" {
			return nil, errors.New("MANAGER_CODE is required outside development")
		}
		// Demo override code for local development.
		cfg.ManagerCode = "58709"
	}

	return cfg, nil
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
