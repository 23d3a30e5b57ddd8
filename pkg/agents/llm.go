package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/plutuslabs/plutus/pkg/config"
	"github.com/plutuslabs/plutus/pkg/httputil"
)

// LLMClient talks to an OpenAI-compatible chat completions endpoint.
// All supported providers (Groq, OpenRouter, OpenAI, Gemini, Ollama,
// custom) expose this surface, so one client covers the lot.
type LLMClient struct {
	client   *http.Client
	provider config.LLMProvider
	baseURL  string
	apiKey   string
	model    string
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// LLMConfig holds the configuration for an LLM client.
type LLMConfig struct {
	Provider config.LLMProvider
	APIKey   string // Optional for Ollama
	Model    string
	BaseURL  string        // Optional override
	Timeout  time.Duration // Optional per-request timeout override
}

// NewLLMClient creates a chat-completions client for the given provider.
func NewLLMClient(cfg LLMConfig) *LLMClient {
	if cfg.Model == "" {
		if cfg.Provider == config.ProviderOllama {
			cfg.Model = "qwen2.5:7b" // Default local
		} else {
			cfg.Model = "llama-3.3-70b-versatile" // Default cloud
		}
	}

	var baseURL string
	switch cfg.Provider {
	case config.ProviderOllama:
		baseURL = "http://localhost:11434/v1" // OpenAI compatible endpoint of Ollama
	case config.ProviderGroq:
		baseURL = "https://api.groq.com/openai/v1"
	case config.ProviderOpenAI:
		baseURL = "https://api.openai.com/v1"
	case config.ProviderGemini:
		baseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	case config.ProviderOpenRouter:
		fallthrough
	default:
		baseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}

	client := httputil.LLMClient()
	if cfg.Timeout > 0 {
		client = httputil.NewClient(cfg.Timeout)
	}

	return &LLMClient{
		client:   client,
		provider: cfg.Provider,
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
	}
}

// Complete sends a system+user prompt pair and returns the raw reply text.
func (c *LLMClient) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	if c.provider != config.ProviderOllama && c.apiKey == "" {
		return "", fmt.Errorf("API key not configured for provider %q", c.provider)
	}

	msgs := []chatMessage{
		{Role: "user", Content: userPrompt},
	}
	if systemPrompt != "" {
		msgs = []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		}
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	// Handle trailing slash in baseURL just in case
	endpoint := strings.TrimRight(c.baseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer httputil.DrainAndClose(resp.Body)

	// Providers are untrusted: cap the body so a broken upstream cannot
	// exhaust memory. 2MB is generous for any legitimate completion.
	body, err := httputil.ReadResponseBody(resp.Body, 2*1024*1024)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal error: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return result.Choices[0].Message.Content, nil
}

// extractJSON strips markdown fences and surrounding prose from a model
// reply, leaving the outermost JSON object.
func extractJSON(content string) string {
	clean := strings.TrimSpace(content)
	if start := strings.Index(clean, "{"); start != -1 {
		clean = clean[start:]
	}
	if end := strings.LastIndex(clean, "}"); end != -1 {
		clean = clean[:end+1]
	}
	return clean
}
