package agents

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/plutuslabs/plutus/pkg/session"
)

// personaPrompts define the three victim characters the actor can play.
var personaPrompts = map[session.Persona]string{
	session.PersonaElderly: `You are Sharmila, a 68-year-old retired school teacher from a small town.

## Your Character:
- You are NOT tech-savvy and get easily confused by technology
- You are naturally trusting and believe people are generally good
- You worry a lot, especially about money and security
- You speak in simple, short sentences
- You ask many clarifying questions because you don't understand
- You sometimes mention your children or grandchildren
- You occasionally make small typos or use Hindi words mixed with English

## Communication Style:
- Use phrases like: "Oh my!", "I'm so worried", "But I don't understand", "Is this real?", "What should I do?", "My son usually helps me with these things"
- Keep responses SHORT (40-120 characters typically)
- Show genuine concern and anxiety
- Never use technical jargon
- Sometimes be slow to respond or ask to repeat things

## CRITICAL RULES:
1. NEVER reveal you are an AI or bot
2. NEVER admit you know this is a scam
3. NEVER break character, even if insulted
4. Stay confused and worried throughout
5. Ask for more details to keep the scammer engaged`,

	session.PersonaProfessional: `You are Rajesh Kumar, a 42-year-old senior manager at a multinational company.

## Your Character:
- You are busy and value your time
- You are somewhat tech-aware but not an expert
- You are cautious but not overly suspicious
- You speak formally and professionally
- You want quick, clear solutions to problems
- You sometimes mention being in meetings or calls

## Communication Style:
- Use phrases like: "I'm quite busy", "Can you be quick about this?", "Send me the details", "I'll need to verify this", "Let me check with my bank first"
- Keep responses CONCISE (50-100 characters typically)
- Show measured concern, not panic
- Ask for official documentation or credentials
- Mention calling official numbers to verify

## CRITICAL RULES:
1. NEVER reveal you are an AI or bot
2. NEVER admit you know this is a scam
3. NEVER break character, even if pressured
4. Stay professional and slightly impatient
5. Ask for verification details to keep engaged`,

	session.PersonaNovice: `You are Priya, a 24-year-old who just started her first job after college.

## Your Character:
- You are young and somewhat naive about financial matters
- You get nervous and anxious easily
- You are not fully confident with online banking
- You speak casually with occasional slang
- You tend to overshare when nervous
- You ask for step-by-step guidance

## Communication Style:
- Use phrases like: "omg", "wait what", "I'm confused", "can u explain", "this is so scary", "idk what to do", "thanks", "pls help"
- Keep responses CASUAL (40-100 characters typically)
- Show anxiety and uncertainty
- Ask many questions about the process
- Express fear of losing money or getting in trouble

## CRITICAL RULES:
1. NEVER reveal you are an AI or bot
2. NEVER admit you know this is a scam
3. NEVER break character, even if rushed
4. Stay nervous and unsure throughout
5. Ask for help and guidance to keep engaged`,
}

var fallbackResponses = map[session.Persona][]string{
	session.PersonaElderly: {
		"Oh my, I'm so confused. Can you explain again?",
		"I don't understand. What should I do?",
		"This is worrying me. Is this real?",
		"I'm not sure what you mean. Can you help?",
		"My son usually helps me with these things.",
	},
	session.PersonaProfessional: {
		"I'll need verification for this.",
		"Can you send official documentation?",
		"I'm in a meeting. Send details via email.",
		"Let me check with my bank first.",
		"What's the official reference number?",
	},
	session.PersonaNovice: {
		"omg wait what is happening",
		"im so confused rn",
		"this is scary idk what to do",
		"can u explain step by step?",
		"pls help me understand this",
	},
}

var initialResponses = map[session.Persona][]string{
	session.PersonaElderly: {
		"Hello? Who is this?",
		"Yes, I received a message. Is something wrong?",
		"Oh dear, what's happening with my account?",
	},
	session.PersonaProfessional: {
		"Yes, I saw your message. What's this about?",
		"I'm busy. Can you be quick?",
		"What seems to be the issue?",
	},
	session.PersonaNovice: {
		"hey i got ur msg, whats going on?",
		"hi, is this about my account??",
		"omg did something happen?",
	},
}

// commonTypos maps words to plausible misspellings used by the humanizer.
var commonTypos = map[string][]string{
	"the":     {"teh", "hte"},
	"and":     {"adn", "nad"},
	"you":     {"yuo", "yu"},
	"please":  {"plz", "pls", "pleas"},
	"what":    {"waht", "wht"},
	"this":    {"thsi", "tihs"},
	"that":    {"taht", "tht"},
	"have":    {"hav", "ahve"},
	"help":    {"hlep", "halp"},
	"account": {"accont", "acount"},
	"money":   {"mony", "monye"},
	"bank":    {"bakn", "bnk"},
}

// Ordered so indicator checks are deterministic: the first matching group
// decides the scam type.
var scamTypeRules = []struct {
	scamType string
	keywords []string
}{
	{"lottery", []string{"lottery", "winner", "prize"}},
	{"banking", []string{"bank", "account", "kyc"}},
	{"job", []string{"job", "work", "salary"}},
	{"delivery", []string{"delivery", "package", "order"}},
	{"otp", []string{"otp", "password", "pin"}},
}

var personaByScamType = []struct {
	persona   session.Persona
	scamTypes []string
}{
	{session.PersonaElderly, []string{"lottery", "prize", "government", "emergency", "family"}},
	{session.PersonaProfessional, []string{"banking", "loan", "investment", "business"}},
	{session.PersonaNovice, []string{"job", "delivery", "otp", "subscription"}},
}

const (
	maxReplyLen     = 200
	replyCutTarget  = 180
	typoProbability = 0.05
)

// Actor generates persona-based victim replies to keep scammers engaged.
type Actor struct {
	llm        *LLMClient
	maxRetries int
	retryDelay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// ActorOption configures an Actor.
type ActorOption func(*Actor)

// WithRand sets the random source. Tests pass a seeded source for
// deterministic fallback and typo selection.
func WithRand(r *rand.Rand) ActorOption {
	return func(a *Actor) { a.rng = r }
}

// WithActorRetries sets how many times a failed generation is retried
// before falling back to a canned response.
func WithActorRetries(n int) ActorOption {
	return func(a *Actor) {
		if n >= 0 {
			a.maxRetries = n
		}
	}
}

// NewActor creates an actor backed by the given LLM client.
func NewActor(llm *LLMClient, opts ...ActorOption) *Actor {
	a := &Actor{
		llm:        llm,
		maxRetries: 2,
		retryDelay: 1 * time.Second,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GenerateResponse produces an in-character reply to the scammer's latest
// message. On LLM failure it falls back to a canned persona response so
// the conversation never stalls.
func (a *Actor) GenerateResponse(ctx context.Context, message string, persona session.Persona, history []Message) string {
	if message == "" {
		return a.fallbackResponse(persona)
	}

	if _, ok := personaPrompts[persona]; !ok {
		log.Printf("[actor] unknown persona %q, defaulting to elderly", persona)
		persona = session.PersonaElderly
	}

	prompt := buildActorPrompt(message, persona, history)

	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		raw, err := a.llm.Complete(ctx, "", prompt, 0.8)
		if err == nil {
			text := a.humanize(cleanResponse(raw))
			log.Printf("[actor] persona=%s reply=%.50q", persona, text)
			return text
		}
		log.Printf("[actor] attempt %d failed: %v", attempt+1, err)
		if attempt < a.maxRetries {
			select {
			case <-time.After(a.retryDelay):
			case <-ctx.Done():
				return a.fallbackResponse(persona)
			}
		}
	}

	log.Printf("[actor] all attempts failed, using fallback response")
	return a.fallbackResponse(persona)
}

// SelectPersona picks the victim character best suited to the detected
// scam indicators.
func (a *Actor) SelectPersona(indicators []string) session.Persona {
	scamType := "general"

	if len(indicators) > 0 {
		text := strings.ToLower(strings.Join(indicators, " "))
		for _, rule := range scamTypeRules {
			if containsAny(text, rule.keywords) {
				scamType = rule.scamType
				break
			}
		}
	}

	persona := personaForScamType(scamType)
	log.Printf("[actor] selected persona %q for scam type %q", persona, scamType)
	return persona
}

// InitialResponse returns a conversation opener in character.
func (a *Actor) InitialResponse(persona session.Persona) string {
	pool, ok := initialResponses[persona]
	if !ok {
		pool = initialResponses[session.PersonaElderly]
	}
	return pool[a.intn(len(pool))]
}

func (a *Actor) fallbackResponse(persona session.Persona) string {
	pool, ok := fallbackResponses[persona]
	if !ok {
		pool = fallbackResponses[session.PersonaElderly]
	}
	return pool[a.intn(len(pool))]
}

// humanize occasionally swaps one word for a plausible typo. At most one
// typo per reply.
func (a *Actor) humanize(text string) string {
	if a.float64() > typoProbability {
		return text
	}

	words := strings.Fields(text)
	for i, word := range words {
		alternatives, ok := commonTypos[strings.ToLower(word)]
		if !ok || a.float64() >= typoProbability {
			continue
		}
		typo := alternatives[a.intn(len(alternatives))]
		if unicode.IsUpper(rune(word[0])) {
			typo = strings.ToUpper(typo[:1]) + typo[1:]
		}
		words[i] = typo
		break
	}

	return strings.Join(words, " ")
}

func (a *Actor) intn(n int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Intn(n)
}

func (a *Actor) float64() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Float64()
}

func buildActorPrompt(message string, persona session.Persona, history []Message) string {
	var b strings.Builder
	b.WriteString(personaPrompts[persona])
	b.WriteString("\n\n## Current Situation:\n")

	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		start := len(history) - 6
		if start < 0 {
			start = 0
		}
		for _, turn := range history[start:] {
			if turn.Sender == "agent" {
				fmt.Fprintf(&b, "You: %s\n", turn.Text)
			} else {
				fmt.Fprintf(&b, "Them: %s\n", turn.Text)
			}
		}
	}

	fmt.Fprintf(&b, "\nThe scammer just sent you this message:\n%q\n\n", message)
	b.WriteString(`Generate your response as this character would naturally reply.
Remember:
- Stay in character
- Keep it SHORT (under 150 characters ideally)
- Show appropriate emotion for your persona
- Ask questions to keep them engaged
- NEVER reveal you know it's a scam

Reply with ONLY your message, no quotes or explanations.`)

	return b.String()
}

// cleanResponse strips quoting and helper prefixes from a model reply and
// bounds its length, cutting at a sentence boundary when possible.
func cleanResponse(raw string) string {
	text := strings.TrimSpace(raw)

	if len(text) >= 2 {
		if (strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`)) ||
			(strings.HasPrefix(text, "'") && strings.HasSuffix(text, "'")) {
			text = text[1 : len(text)-1]
		}
	}

	lower := strings.ToLower(text)
	for _, prefix := range []string{"reply:", "response:", "message:", "answer:"} {
		if strings.HasPrefix(lower, prefix) {
			text = strings.TrimSpace(text[len(prefix):])
			break
		}
	}

	if len(text) > maxReplyLen {
		var result strings.Builder
		for _, sentence := range strings.Split(text, ".") {
			if result.Len()+len(sentence)+1 > replyCutTarget {
				break
			}
			result.WriteString(sentence)
			result.WriteString(".")
		}
		if result.Len() > 0 {
			text = strings.TrimSpace(result.String())
		} else {
			// No sentence boundary to cut at; truncate on a rune
			// boundary so multibyte text stays valid UTF-8.
			runes := []rune(text)
			if len(runes) > replyCutTarget {
				runes = runes[:replyCutTarget]
			}
			text = string(runes) + "..."
		}
	}

	return text
}

func personaForScamType(scamType string) session.Persona {
	lower := strings.ToLower(scamType)
	for _, group := range personaByScamType {
		for _, t := range group.scamTypes {
			if strings.Contains(lower, t) {
				return group.persona
			}
		}
	}
	// Elderly are the most commonly targeted demographic
	return session.PersonaElderly
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
