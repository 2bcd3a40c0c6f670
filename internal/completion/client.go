package completion

import (
	"context"
	"fmt"
	"strings"
)

// Message is one prior conversational turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries everything the model needs for one reply.
type Request struct {
	System      string    `json:"system"`
	History     []Message `json:"history,omitempty"`
	UserMessage string    `json:"user_message"`
}

// Client produces a single assistant reply for a request.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config controls client construction.
type Config struct {
	Provider string
	APIKey   string
	Model    string
}

// New selects a client by provider mode. "auto" picks OpenAI when a key is
// present and falls back to the mock otherwise.
func New(cfg Config) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = "auto"
	}

	switch provider {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewOpenAIClient(cfg.APIKey, cfg.Model), nil
		}
		return NewMockClient(), nil
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("openai api key is required for openai mode")
		}
		return NewOpenAIClient(cfg.APIKey, cfg.Model), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unsupported completion provider %q", cfg.Provider)
	}
}
