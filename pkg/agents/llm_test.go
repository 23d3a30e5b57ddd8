package agents

import (
	"testing"
	"time"

	"github.com/plutuslabs/plutus/pkg/config"
	"github.com/plutuslabs/plutus/pkg/httputil"
)

func TestNewLLMClientBaseURLs(t *testing.T) {
	tests := []struct {
		provider config.LLMProvider
		want     string
	}{
		{config.ProviderOllama, "http://localhost:11434/v1"},
		{config.ProviderGroq, "https://api.groq.com/openai/v1"},
		{config.ProviderOpenAI, "https://api.openai.com/v1"},
		{config.ProviderOpenRouter, "https://openrouter.ai/api/v1"},
	}
	for _, tt := range tests {
		c := NewLLMClient(LLMConfig{Provider: tt.provider})
		if c.baseURL != tt.want {
			t.Errorf("provider %s: baseURL = %q, want %q", tt.provider, c.baseURL, tt.want)
		}
	}

	c := NewLLMClient(LLMConfig{Provider: config.ProviderCustom, BaseURL: "http://llm.internal:8080/v1"})
	if c.baseURL != "http://llm.internal:8080/v1" {
		t.Errorf("explicit base URL not honored, got %q", c.baseURL)
	}
}

func TestNewLLMClientTimeout(t *testing.T) {
	// Without an override, the shared LLM client (and its timeout) is used.
	c := NewLLMClient(LLMConfig{Provider: config.ProviderGroq})
	if c.client != httputil.LLMClient() {
		t.Error("expected the shared LLM client when no timeout is set")
	}

	c = NewLLMClient(LLMConfig{Provider: config.ProviderGroq, Timeout: 5 * time.Second})
	if c.client.Timeout != 5*time.Second {
		t.Errorf("client timeout = %v, want 5s", c.client.Timeout)
	}
	if c.client.Transport != httputil.LLMClient().Transport {
		t.Error("timeout override should still use the shared transport")
	}
}
