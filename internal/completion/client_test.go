package completion

import (
	"context"
	"strings"
	"testing"
)

func TestNewSelectsProvider(t *testing.T) {
	cases := []struct {
		name     string
		cfg      Config
		wantMock bool
		wantErr  bool
	}{
		{name: "auto without key", cfg: Config{Provider: "auto"}, wantMock: true},
		{name: "auto with key", cfg: Config{Provider: "auto", APIKey: "sk-test"}},
		{name: "mock explicit", cfg: Config{Provider: "mock", APIKey: "sk-test"}, wantMock: true},
		{name: "openai without key", cfg: Config{Provider: "openai"}, wantErr: true},
		{name: "unknown provider", cfg: Config{Provider: "gemini"}, wantErr: true},
	}

	for _, tc := range cases {
		client, err := New(tc.cfg)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected error, got nil", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: New error = %v", tc.name, err)
			continue
		}
		_, isMock := client.(*MockClient)
		if isMock != tc.wantMock {
			t.Errorf("%s: mock = %v, want %v", tc.name, isMock, tc.wantMock)
		}
	}
}

func TestMockClientIsDeterministic(t *testing.T) {
	client := NewMockClient()
	req := Request{
		System:      "persona",
		UserMessage: "Привет",
	}

	first, err := client.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}
	for i := 0; i < 3; i++ {
		got, err := client.Complete(context.Background(), req)
		if err != nil {
			t.Fatalf("Complete error = %v", err)
		}
		if got != first {
			t.Fatalf("mock reply differs between calls: %q vs %q", got, first)
		}
	}
	if !strings.Contains(first, "Привет") {
		t.Fatalf("mock reply %q does not echo the message", first)
	}
}

func TestMockClientHonorsCancelledContext(t *testing.T) {
	client := NewMockClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Complete(ctx, Request{UserMessage: "x"}); err == nil {
		t.Fatalf("Complete with cancelled context: expected error, got nil")
	}
}
