package agents

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/plutuslabs/plutus/pkg/session"
)

func TestSelectPersona(t *testing.T) {
	a := NewActor(nil)

	tests := []struct {
		name       string
		indicators []string
		want       session.Persona
	}{
		{"lottery scam", []string{"lottery win", "prize claim"}, session.PersonaElderly},
		{"banking scam", []string{"bank account verification", "kyc pending"}, session.PersonaProfessional},
		{"job scam", []string{"job offer", "salary advance"}, session.PersonaNovice},
		{"delivery scam", []string{"package held at customs"}, session.PersonaNovice},
		{"otp scam", []string{"otp request"}, session.PersonaNovice},
		{"no indicators", nil, session.PersonaElderly},
		{"unrecognized", []string{"something else entirely"}, session.PersonaElderly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.SelectPersona(tt.indicators); got != tt.want {
				t.Errorf("SelectPersona(%v) = %q, want %q", tt.indicators, got, tt.want)
			}
		})
	}
}

func TestSelectPersonaOrdering(t *testing.T) {
	a := NewActor(nil)

	// "lottery" outranks "bank" when both appear.
	got := a.SelectPersona([]string{"bank lottery scheme"})
	if got != session.PersonaElderly {
		t.Errorf("SelectPersona = %q, want elderly (lottery checked first)", got)
	}
}

func TestFallbackResponseInCharacter(t *testing.T) {
	a := NewActor(nil, WithRand(rand.New(rand.NewSource(1))))

	for persona, pool := range fallbackResponses {
		got := a.fallbackResponse(persona)
		found := false
		for _, candidate := range pool {
			if got == candidate {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("fallback %q not in %s pool", got, persona)
		}
	}

	// Unknown persona falls back to the elderly pool.
	got := a.fallbackResponse(session.Persona("robot"))
	found := false
	for _, candidate := range fallbackResponses[session.PersonaElderly] {
		if got == candidate {
			found = true
		}
	}
	if !found {
		t.Errorf("unknown persona fallback %q not from elderly pool", got)
	}
}

func TestFallbackDeterministicWithSeed(t *testing.T) {
	a1 := NewActor(nil, WithRand(rand.New(rand.NewSource(42))))
	a2 := NewActor(nil, WithRand(rand.New(rand.NewSource(42))))

	for i := 0; i < 5; i++ {
		r1 := a1.fallbackResponse(session.PersonaNovice)
		r2 := a2.fallbackResponse(session.PersonaNovice)
		if r1 != r2 {
			t.Fatalf("same seed diverged: %q vs %q", r1, r2)
		}
	}
}

func TestInitialResponse(t *testing.T) {
	a := NewActor(nil)

	got := a.InitialResponse(session.PersonaProfessional)
	found := false
	for _, candidate := range initialResponses[session.PersonaProfessional] {
		if got == candidate {
			found = true
		}
	}
	if !found {
		t.Errorf("initial response %q not in professional pool", got)
	}
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Oh my, what should I do?", "Oh my, what should I do?"},
		{"surrounding double quotes", `"Is this real?"`, "Is this real?"},
		{"surrounding single quotes", `'Is this real?'`, "Is this real?"},
		{"reply prefix", "Reply: I'm so worried", "I'm so worried"},
		{"response prefix", "RESPONSE: send the details", "send the details"},
		{"whitespace", "  hello there  ", "hello there"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanResponse(tt.in); got != tt.want {
				t.Errorf("cleanResponse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanResponseLengthCap(t *testing.T) {
	long := strings.Repeat("This is a sentence. ", 30)
	got := cleanResponse(long)

	if len(got) > maxReplyLen {
		t.Errorf("len = %d, want <= %d", len(got), maxReplyLen)
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("long reply should cut at a sentence boundary, got %q", got)
	}
}

func TestCleanResponseNoSentenceBoundary(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := cleanResponse(long)

	if len(got) > maxReplyLen {
		t.Errorf("len = %d, want <= %d", len(got), maxReplyLen)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("unbreakable reply should be truncated with ellipsis, got %q", got)
	}
}

func TestCleanResponseTruncatesOnRuneBoundary(t *testing.T) {
	// Devanagari and emoji are multibyte; a byte-indexed cut would split a
	// rune and produce invalid UTF-8.
	tests := []struct {
		name string
		text string
	}{
		{"devanagari", strings.Repeat("नमस्ते जी ", 40)},
		{"emoji", strings.Repeat("🙏", 150)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanResponse(tt.text)
			if !utf8.ValidString(got) {
				t.Fatalf("truncated reply is not valid UTF-8: %q", got)
			}
			if !strings.HasSuffix(got, "...") {
				t.Errorf("want ellipsis suffix, got %q", got)
			}
			if n := len([]rune(got)); n > replyCutTarget+3 {
				t.Errorf("rune length = %d, want <= %d", n, replyCutTarget+3)
			}
		})
	}
}

func TestHumanizeAtMostOneTypo(t *testing.T) {
	// A seed whose first Float64 is below the typo threshold would swap a
	// word; sweep seeds and assert no output ever diverges by more than
	// one word.
	original := "please help me with the bank account"
	origWords := strings.Fields(original)

	for seed := int64(0); seed < 200; seed++ {
		a := NewActor(nil, WithRand(rand.New(rand.NewSource(seed))))
		got := a.humanize(original)
		words := strings.Fields(got)

		if len(words) != len(origWords) {
			t.Fatalf("seed %d changed word count: %q", seed, got)
		}
		diffs := 0
		for i := range words {
			if words[i] != origWords[i] {
				diffs++
			}
		}
		if diffs > 1 {
			t.Errorf("seed %d introduced %d typos: %q", seed, diffs, got)
		}
	}
}

func TestHumanizePreservesCapitalization(t *testing.T) {
	// Force the typo path with a handwritten source.
	for seed := int64(0); seed < 5000; seed++ {
		a := NewActor(nil, WithRand(rand.New(rand.NewSource(seed))))
		got := a.humanize("Please respond")
		if got == "Please respond" {
			continue
		}
		first := strings.Fields(got)[0]
		if first[0] < 'A' || first[0] > 'Z' {
			t.Fatalf("seed %d lost capitalization: %q", seed, got)
		}
		return // exercised the typo path once, done
	}
	t.Skip("no seed triggered a typo in range")
}

func TestActorRetriesOption(t *testing.T) {
	a := NewActor(nil)
	if a.maxRetries != 2 {
		t.Fatalf("default maxRetries = %d, want 2", a.maxRetries)
	}
	a = NewActor(nil, WithActorRetries(4))
	if a.maxRetries != 4 {
		t.Errorf("maxRetries = %d, want 4", a.maxRetries)
	}
	a = NewActor(nil, WithActorRetries(-3))
	if a.maxRetries != 2 {
		t.Errorf("negative retries should keep the default, got %d", a.maxRetries)
	}
}
