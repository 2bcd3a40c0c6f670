package completion

import (
	"context"
	"fmt"
	"strings"
)

// MockClient provides deterministic local replies when no provider is
// configured.
type MockClient struct{}

func NewMockClient() *MockClient { return &MockClient{} }

func (c *MockClient) Complete(ctx context.Context, req Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	text := strings.TrimSpace(req.UserMessage)
	if text == "" {
		return "Я слушаю.", nil
	}
	if len(req.History) == 0 {
		return fmt.Sprintf("Я тебя услышал: %s", text), nil
	}
	return fmt.Sprintf("Я тебя услышал: %s (в диалоге уже %d сообщений)", text, len(req.History)), nil
}
