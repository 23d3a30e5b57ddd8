package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/plutuslabs/plutus/pkg/agents"
	"github.com/plutuslabs/plutus/pkg/callback"
	"github.com/plutuslabs/plutus/pkg/config"
	"github.com/plutuslabs/plutus/pkg/intel"
	"github.com/plutuslabs/plutus/pkg/session"
)

const Version = "1.0.0"

// Honeypot wires the pipeline components behind the HTTP surface.
type Honeypot struct {
	orchestrator *agents.Orchestrator
	store        session.Store
	sender       *callback.Sender
	config       *config.Config
}

func NewHoneypot(cfg *config.Config) *Honeypot {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	policy := session.Policy{
		MaxTurns:       cfg.MaxTurns,
		MinIntelTypes:  cfg.MinIntelTypes,
		StaleThreshold: cfg.StaleThreshold,
	}

	var store session.Store
	if cfg.RedisAddr != "" {
		store = session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, policy, cfg.SessionMaxAge)
		log.Printf("✓ Redis session store (%s)", cfg.RedisAddr)
	} else {
		store = session.NewMemoryStore(policy, session.WithMaxAge(cfg.SessionMaxAge))
		log.Println("○ In-memory session store (set PLUTUS_REDIS_ADDR for persistence)")
	}

	llm := agents.NewLLMClient(agents.LLMConfig{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
		BaseURL:  cfg.LLMBaseURL,
		Timeout:  cfg.LLMTimeout,
	})
	if cfg.LLMAPIKey != "" || cfg.LLMProvider == config.ProviderOllama {
		log.Printf("✓ LLM agents enabled (provider: %s, model: %s)", cfg.LLMProvider, cfg.LLMModel)
	} else {
		log.Println("○ LLM agents degraded (no API key; neutral verdicts and canned replies)")
	}

	var keywords []string
	if cfg.KeywordFile != "" {
		keywords = intel.LoadKeywords(cfg.KeywordFile)
	}
	extractor := intel.NewExtractor(keywords)

	orchestrator := agents.NewOrchestrator(
		agents.NewDetector(llm, agents.WithDetectorRetries(cfg.LLMRetries)),
		agents.NewActor(llm, agents.WithActorRetries(cfg.LLMRetries)),
		extractor,
		store,
		cfg.ScamConfidenceThreshold,
	)

	sender := callback.NewSender(cfg.CallbackURL, cfg.CallbackEnabled,
		callback.WithTimeout(cfg.CallbackTimeout))
	if sender.Enabled() {
		log.Printf("✓ Result callback enabled (%s)", cfg.CallbackURL)
	} else {
		log.Println("○ Result callback disabled")
	}

	return &Honeypot{
		orchestrator: orchestrator,
		store:        store,
		sender:       sender,
		config:       cfg,
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err == nil {
		log.Println("[STARTUP] Loaded environment from .env")
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		port := ""
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		runHTTPServer(port)
	case "extract":
		if len(os.Args) < 3 {
			fmt.Println("Usage: plutus extract <text>")
			os.Exit(1)
		}
		runCLIExtract(strings.Join(os.Args[2:], " "))
	case "version":
		fmt.Printf("Plutus v%s\n", Version)
		fmt.Println("Agentic Scam Honeypot")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Plutus v%s - Agentic Scam Honeypot\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  plutus serve [port]    Start HTTP server (default: 8080)")
	fmt.Println("  plutus extract <text>  Extract scam intelligence from text")
	fmt.Println("  plutus version         Show version")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  plutus serve 8080")
	fmt.Println("  plutus extract \"Pay to scammer@paytm, call +919876543210. Urgent!\"")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  PLUTUS_API_KEY       API key for inbound authentication")
	fmt.Println("  PLUTUS_LLM_API_KEY   API key for the LLM provider")
	fmt.Println("  PLUTUS_LLM_PROVIDER  Provider: ollama, openrouter, groq, openai, gemini")
	fmt.Println("  PLUTUS_REDIS_ADDR    Redis address for persistent sessions")
}

// ============================================================================
// HTTP Server Mode
// ============================================================================

func runHTTPServer(port string) {
	cfg := config.NewDefaultConfig()
	cfg.MustValidate()
	if port != "" {
		cfg.Port = port
	}

	hp := NewHoneypot(cfg)
	defer hp.store.Close()

	app := fiber.New(fiber.Config{
		AppName: "Plutus Honeypot",
	})

	// Every route except health and root requires the API key.
	app.Use(func(c fiber.Ctx) error {
		path := c.Path()
		if path == "/" || path == "/health" {
			return c.Next()
		}
		if cfg.APIKey != "" && c.Get("x-api-key") != cfg.APIKey {
			return c.Status(401).JSON(fiber.Map{"status": "error", "error": "invalid or missing API key"})
		}
		return c.Next()
	})

	app.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "Plutus Honeypot",
			"version": Version,
			"status":  "running",
		})
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   Version,
			"sessions":  hp.store.Stats(),
		})
	})

	app.Post("/analyze", func(c fiber.Ctx) error {
		var req agents.AnalyzeRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"status": "error", "error": "invalid request body"})
		}
		if req.Message.Text == "" {
			return c.Status(400).JSON(fiber.Map{"status": "error", "error": "message.text is required"})
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
			log.Printf("[api] minted session id %s", req.SessionID)
		}

		resp := hp.orchestrator.ProcessMessage(c.Context(), req)

		if !resp.ContinueConversation {
			if summary, ok := hp.store.Summary(req.SessionID); ok {
				hp.sender.SendAsync(summary)
			}
		}

		return c.JSON(resp)
	})

	app.Get("/session/:id", func(c fiber.Ctx) error {
		summary, ok := hp.store.Summary(c.Params("id"))
		if !ok {
			return c.Status(404).JSON(fiber.Map{"status": "error", "error": "session not found"})
		}
		return c.JSON(summary)
	})

	app.Delete("/session/:id", func(c fiber.Ctx) error {
		id := c.Params("id")
		if !hp.orchestrator.EndSessionManually(id) {
			return c.Status(404).JSON(fiber.Map{"status": "error", "error": "session not found or already ended"})
		}
		if summary, ok := hp.store.Summary(id); ok {
			hp.sender.SendAsync(summary)
		}
		return c.JSON(fiber.Map{"status": "success", "sessionId": id, "ended": true})
	})

	log.Printf("Plutus HTTP server starting on :%s", cfg.Port)
	log.Printf("Endpoints:")
	log.Printf("  GET    /health       - Health check")
	log.Printf("  POST   /analyze      - Analyze a scammer message")
	log.Printf("  GET    /session/:id  - Session summary")
	log.Printf("  DELETE /session/:id  - End a session manually")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

// ============================================================================
// CLI Mode
// ============================================================================

func runCLIExtract(text string) {
	cfg := config.NewDefaultConfig()

	var keywords []string
	if cfg.KeywordFile != "" {
		keywords = intel.LoadKeywords(cfg.KeywordFile)
	}
	extractor := intel.NewExtractor(keywords)

	evidence := extractor.ExtractAll(text)
	output, _ := json.MarshalIndent(evidence, "", "  ")
	fmt.Println(string(output))
}
