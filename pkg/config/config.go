// Package config resolves runtime configuration from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLMProvider defines the backend LLM service type
type LLMProvider string

const (
	ProviderNone       LLMProvider = "none"       // No LLM, canned responses only
	ProviderOllama     LLMProvider = "ollama"     // Local Ollama server
	ProviderOpenRouter LLMProvider = "openrouter" // OpenRouter (default, has free tier)
	ProviderGroq       LLMProvider = "groq"       // Groq (high-speed inference)
	ProviderOpenAI     LLMProvider = "openai"     // Direct OpenAI API
	ProviderGemini     LLMProvider = "gemini"     // Google Gemini (OpenAI-compatible endpoint)
	ProviderCustom     LLMProvider = "custom"     // Custom OpenAI-compatible endpoint
)

// Config holds global settings for the honeypot service.
// All settings can be configured via environment variables.
type Config struct {
	// === Core Settings ===
	APIKey string // API key required on inbound requests (env: PLUTUS_API_KEY)
	Port   string // HTTP listen port (default: "8080")

	// === LLM Provider Configuration ===
	// These settings drive both the scam detector and the persona actor.
	LLMProvider LLMProvider // Which LLM service to use
	LLMAPIKey   string      // API key for cloud providers
	LLMModel    string      // Model identifier (e.g. "llama-3.3-70b-versatile")
	LLMBaseURL  string      // Custom base URL for self-hosted or custom providers
	LLMRetries  int         // Retries per LLM call on failure (default: 2)
	LLMTimeout  time.Duration

	// === Engagement Policy ===
	MaxTurns                int     // Hard cap on conversation turns (default: 20)
	MinIntelTypes           int     // Distinct evidence types considered sufficient (default: 2)
	StaleThreshold          int     // Turns without new evidence before giving up (default: 5)
	ScamConfidenceThreshold float64 // Confidence above which the persona engages (default: 0.7)

	// === Result Callback ===
	CallbackEnabled bool
	CallbackURL     string
	CallbackTimeout time.Duration

	// === Session Storage ===
	RedisAddr     string // When set, sessions live in Redis instead of memory
	RedisPassword string
	RedisDB       int
	SessionMaxAge time.Duration // Sessions older than this are purged (default: 24h)

	// === Extraction ===
	KeywordFile string // Optional YAML file overriding the built-in scam keyword list
}

// NewDefaultConfig creates a Config with sensible defaults.
// All settings can be overridden via environment variables.
func NewDefaultConfig() *Config {
	cfg := &Config{
		// Core
		APIKey: GetEnv("PLUTUS_API_KEY", ""),
		Port:   GetEnv("PLUTUS_PORT", "8080"),

		// LLM Provider - auto-detected from available keys when not set
		LLMProvider: detectLLMProvider(),
		LLMAPIKey:   GetEnv("PLUTUS_LLM_API_KEY", GetEnv("GROQ_API_KEY", GetEnv("OPENROUTER_API_KEY", os.Getenv("OPENAI_API_KEY")))),
		LLMModel:    GetEnv("PLUTUS_LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMBaseURL:  GetEnv("PLUTUS_LLM_BASE_URL", ""),
		LLMRetries:  GetEnvInt("PLUTUS_LLM_RETRIES", 2),
		LLMTimeout:  time.Duration(GetEnvInt("PLUTUS_LLM_TIMEOUT_MS", 30000)) * time.Millisecond,

		// Engagement policy - tune these to trade depth against cost
		MaxTurns:                clampInt(GetEnvInt("PLUTUS_MAX_TURNS", 20), 1, 1000),
		MinIntelTypes:           clampInt(GetEnvInt("PLUTUS_MIN_INTEL_TYPES", 2), 1, 4),
		StaleThreshold:          clampInt(GetEnvInt("PLUTUS_STALE_THRESHOLD", 5), 1, 100),
		ScamConfidenceThreshold: GetEnvFloat("PLUTUS_SCAM_CONFIDENCE_THRESHOLD", 0.7),

		// Callback
		CallbackEnabled: GetEnvBool("PLUTUS_CALLBACK_ENABLED", true),
		CallbackURL:     GetEnv("PLUTUS_CALLBACK_URL", "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"),
		CallbackTimeout: time.Duration(GetEnvInt("PLUTUS_CALLBACK_TIMEOUT_MS", 10000)) * time.Millisecond,

		// Storage
		RedisAddr:     GetEnv("PLUTUS_REDIS_ADDR", ""),
		RedisPassword: GetEnv("PLUTUS_REDIS_PASSWORD", ""),
		RedisDB:       GetEnvInt("PLUTUS_REDIS_DB", 0),
		SessionMaxAge: time.Duration(GetEnvInt("PLUTUS_SESSION_TTL_SECONDS", 86400)) * time.Second,

		// Extraction
		KeywordFile: GetEnv("PLUTUS_KEYWORD_FILE", ""),
	}

	return cfg
}

// clampInt ensures a value is within bounds
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func detectLLMProvider() LLMProvider {
	// Check explicit provider setting first
	if p := os.Getenv("PLUTUS_LLM_PROVIDER"); p != "" {
		return LLMProvider(p)
	}
	// Auto-detect based on available keys
	if os.Getenv("GROQ_API_KEY") != "" {
		return ProviderGroq
	}
	if os.Getenv("OPENROUTER_API_KEY") != "" || os.Getenv("PLUTUS_LLM_API_KEY") != "" {
		return ProviderOpenRouter
	}
	if os.Getenv("OPENAI_API_KEY") != "" {
		return ProviderOpenAI
	}
	if os.Getenv("GEMINI_API_KEY") != "" {
		return ProviderGemini
	}
	// Default to Ollama (local) if no cloud keys found
	return ProviderOllama
}

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

// RequiredSecret defines a required environment variable for startup validation
type RequiredSecret struct {
	Name        string // Environment variable name
	Description string // Human-readable description
	Production  bool   // Required in production only (false = required always)
}

// CriticalSecrets returns the list of secrets required for the service to operate
func CriticalSecrets() []RequiredSecret {
	return []RequiredSecret{
		{Name: "PLUTUS_API_KEY", Description: "API key for inbound request authentication", Production: true},
		{Name: "PLUTUS_LLM_API_KEY", Description: "API key for the LLM provider", Production: true},
	}
}

// Validate checks that all required configuration is present.
// In production mode, this returns an error if critical secrets are missing.
// In development mode, it logs warnings but allows startup for local testing.
func (c *Config) Validate() error {
	env := strings.ToLower(os.Getenv("PLUTUS_ENV"))
	isProduction := env == "production" || env == "prod"

	var missing []string
	var warnings []string

	for _, secret := range CriticalSecrets() {
		if os.Getenv(secret.Name) != "" {
			continue
		}
		if secret.Production && !isProduction {
			warnings = append(warnings, secret.Name+" ("+secret.Description+")")
		} else {
			missing = append(missing, secret.Name+" ("+secret.Description+")")
		}
	}

	if c.ScamConfidenceThreshold < 0 || c.ScamConfidenceThreshold > 1 {
		missing = append(missing, "PLUTUS_SCAM_CONFIDENCE_THRESHOLD (must be between 0 and 1)")
	}
	if c.CallbackEnabled && c.CallbackURL == "" {
		missing = append(missing, "PLUTUS_CALLBACK_URL (callback enabled but no URL)")
	}

	for _, w := range warnings {
		log.Printf("[STARTUP] Warning: Missing optional secret: %s", w)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

// MustValidate calls Validate and fatally exits if validation fails.
// Call this at startup before starting the server.
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		log.Fatalf("[STARTUP] FATAL: Configuration validation failed: %v", err)
	}
	log.Println("[STARTUP] Configuration validated successfully")
}
