package gemini

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error when no API keys are configured")
	}
}

func TestNew_Defaults(t *testing.T) {
	p, err := New(Config{APIKeys: []string{"key-1"}}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.cfg.Model != "gemini-2.5-flash" {
		t.Errorf("expected default model, got %s", p.cfg.Model)
	}
	if p.cfg.MaxRetries != 2 {
		t.Errorf("expected default max retries 2, got %d", p.cfg.MaxRetries)
	}
	if p.cfg.RetryBackoff <= 0 {
		t.Errorf("expected positive default backoff, got %v", p.cfg.RetryBackoff)
	}
	if p.Name() != "gemini" {
		t.Errorf("expected provider name 'gemini', got %s", p.Name())
	}
}

func TestRotateKey_Cycles(t *testing.T) {
	p, err := New(Config{APIKeys: []string{"a", "b", "c"}}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a", "b", "c", "a"}
	for i, w := range want {
		if got := p.currentAPIKey(); got != w {
			t.Errorf("rotation %d: expected key %q, got %q", i, w, got)
		}
		p.rotateKey()
	}
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"rpc error: code = 429 desc = too many requests", true},
		{"quota exceeded for model", true},
		{"RESOURCE_EXHAUSTED: out of tokens", true},
		{"connection refused", false},
		{"invalid API key", false},
	}

	for _, tt := range tests {
		if got := isQuotaError(errors.New(tt.msg)); got != tt.want {
			t.Errorf("isQuotaError(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}
