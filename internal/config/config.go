package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	AppEnv    string
	Port      string
	JWTSecret string
	LogLevel  string
	LogFormat string

	// Global per-IP guard in front of the whole API, on top of the
	// per-endpoint fixed-window limits enforced by the handlers.
	GlobalRatePerSecond float64
	GlobalRateBurst     int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8080"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
		GlobalRatePerSecond: 20,
		GlobalRateBurst:     40,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 16 characters, got %d", len(cfg.JWTSecret))
	}

	if v := os.Getenv("GLOBAL_RATE_PER_SECOND"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate <= 0 {
			return nil, fmt.Errorf("GLOBAL_RATE_PER_SECOND must be a positive number, got %q", v)
		}
		cfg.GlobalRatePerSecond = rate
	}
	if v := os.Getenv("GLOBAL_RATE_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst <= 0 {
			return nil, fmt.Errorf("GLOBAL_RATE_BURST must be a positive integer, got %q", v)
		}
		cfg.GlobalRateBurst = burst
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
