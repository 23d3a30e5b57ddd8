package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

const detectorSystemPrompt = `You are an expert scam detection system analyzing messages for fraudulent intent.

Your task is to analyze the given message and determine if it's a scam or legitimate.

## Scam Indicators to Look For:
1. **Urgency/Fear tactics**: "immediately", "urgent", "account will be closed", "legal action"
2. **Request for sensitive info**: OTP, password, CVV, PIN, bank account details
3. **Suspicious links**: Fake bank URLs, shortened links, typosquatting domains
4. **Impersonation**: Fake bank/government/company representatives
5. **Too good to be true**: Lottery wins, lucky draws, free prizes
6. **Payment requests**: Transfer money for "fees", "taxes", "processing charges"
7. **Grammatical errors**: Poor grammar typical of mass scam campaigns
8. **Phone number requests**: Asking to call suspicious numbers

## Response Format:
You MUST respond with ONLY valid JSON in this exact format:
{
    "is_scam": true/false,
    "confidence": 0.0 to 1.0,
    "reason": "Brief explanation of why this is/isn't a scam",
    "indicators": ["list", "of", "detected", "scam", "patterns"]
}

## Confidence Guidelines:
- 0.9-1.0: Clear scam with multiple strong indicators
- 0.7-0.89: Likely scam with some indicators
- 0.5-0.69: Suspicious but inconclusive
- 0.3-0.49: Probably legitimate but has some flags
- 0.0-0.29: Clearly legitimate

Be STRICT: Only assign confidence > 0.7 for clear scams with multiple indicators.`

// strongIndicators are phrases whose presence alone marks a message as a
// likely scam, used for fast screening without an LLM round-trip.
var strongIndicators = []string{
	"send otp",
	"share otp",
	"your account will be",
	"account suspended",
	"account blocked",
	"kyc update",
	"click here to verify",
	"won lottery",
	"lucky winner",
	"processing fee",
	"claim your prize",
	"legal action",
	"police complaint",
	"arrest warrant",
}

// Detector classifies inbound messages as scam or legitimate.
type Detector struct {
	llm        *LLMClient
	maxRetries int
	retryDelay time.Duration
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithDetectorRetries sets how many times a failed classification is retried.
func WithDetectorRetries(n int) DetectorOption {
	return func(d *Detector) {
		if n >= 0 {
			d.maxRetries = n
		}
	}
}

// NewDetector creates a detector backed by the given LLM client.
func NewDetector(llm *LLMClient, opts ...DetectorOption) *Detector {
	d := &Detector{
		llm:        llm,
		maxRetries: 2,
		retryDelay: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectScam classifies a message, retrying on transient LLM failures.
// On repeated failure it returns the neutral verdict rather than an error
// so the pipeline keeps moving.
func (d *Detector) DetectScam(ctx context.Context, message string, history []Message) Detection {
	if strings.TrimSpace(message) == "" {
		log.Printf("[detector] empty message received")
		return defaultDetection()
	}

	prompt := buildDetectorPrompt(message, history)

	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		raw, err := d.llm.Complete(ctx, detectorSystemPrompt, prompt, 0.3)
		if err == nil {
			det, perr := parseDetection(raw)
			if perr == nil {
				log.Printf("[detector] is_scam=%v confidence=%.2f", det.IsScam, det.Confidence)
				return det
			}
			err = perr
		}
		log.Printf("[detector] attempt %d failed: %v", attempt+1, err)
		if attempt < d.maxRetries {
			select {
			case <-time.After(d.retryDelay):
			case <-ctx.Done():
				return defaultDetection()
			}
		}
	}

	log.Printf("[detector] all attempts failed, returning neutral verdict")
	return defaultDetection()
}

// QuickClassify screens a message against the strong indicator list
// without calling the LLM.
func (d *Detector) QuickClassify(message string) bool {
	if message == "" {
		return false
	}
	lower := strings.ToLower(message)
	for _, indicator := range strongIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func buildDetectorPrompt(message string, history []Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this message for scam intent:\n\n%q\n", message)

	if len(history) > 0 {
		b.WriteString("\n## Previous conversation context:\n")
		start := len(history) - 5
		if start < 0 {
			start = 0
		}
		for _, turn := range history[start:] {
			fmt.Fprintf(&b, "- %s: %s\n", turn.Sender, turn.Text)
		}
	}

	b.WriteString("\nRespond with ONLY the JSON object, no other text.")
	return b.String()
}

func parseDetection(raw string) (Detection, error) {
	clean := extractJSON(raw)

	var det Detection
	if err := json.Unmarshal([]byte(clean), &det); err != nil {
		return Detection{}, fmt.Errorf("failed to parse detector response: %w - content: %s", err, clean)
	}
	if det.Reason == "" {
		det.Reason = "No reason provided"
	}
	if det.Indicators == nil {
		det.Indicators = []string{}
	}
	return det, nil
}

// defaultDetection is the neutral verdict used when classification fails.
func defaultDetection() Detection {
	return Detection{
		IsScam:     false,
		Confidence: 0.5,
		Reason:     "Unable to analyze message",
		Indicators: []string{},
	}
}
