package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains all runtime settings for the twin chat service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	// DatabaseURL selects the Postgres store; empty falls back to the
	// in-process store for local development.
	DatabaseURL string

	// CompletionProvider is one of auto|openai|mock.
	CompletionProvider string
	OpenAIAPIKey       string
	OpenAIModel        string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	// A local .env is a convenience, not a requirement.
	_ = godotenv.Load()

	cfg := Config{
		BindAddr:           envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:   envOrDefault("APP_METRICS_NAMESPACE", "mirra"),
		ShutdownTimeout:    15 * time.Second,
		DatabaseURL:        trimmedEnv("DATABASE_URL"),
		CompletionProvider: envOrDefault("AI_PROVIDER", "auto"),
		OpenAIAPIKey:       trimmedEnv("OPENAI_API_KEY"),
		OpenAIModel:        envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.CompletionProvider))
	switch provider {
	case "auto", "openai", "mock":
		cfg.CompletionProvider = provider
	default:
		return Config{}, fmt.Errorf("AI_PROVIDER must be auto, openai or mock, got %q", cfg.CompletionProvider)
	}
	if cfg.CompletionProvider == "openai" && cfg.OpenAIAPIKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER=openai")
	}
	if strings.TrimSpace(cfg.OpenAIModel) == "" {
		return Config{}, fmt.Errorf("OPENAI_MODEL must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}
