package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8080")
	}
	if cfg.MetricsNamespace != "mirra" {
		t.Fatalf("MetricsNamespace = %q, want %q", cfg.MetricsNamespace, "mirra")
	}
	if cfg.CompletionProvider != "auto" {
		t.Fatalf("CompletionProvider = %q, want %q", cfg.CompletionProvider, "auto")
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("OpenAIModel = %q, want %q", cfg.OpenAIModel, "gpt-4o-mini")
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, 15*time.Second)
	}
}

func TestLoadRejectsOpenAIWithoutKey(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("AI_PROVIDER", "openai")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() with AI_PROVIDER=openai and no key: expected error, got nil")
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("AI_PROVIDER", "vertex")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() with unknown provider: expected error, got nil")
	}
}

func TestLoadParsesShutdownTimeout(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, 30*time.Second)
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"DATABASE_URL",
		"AI_PROVIDER",
		"OPENAI_API_KEY",
		"OPENAI_MODEL",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}
