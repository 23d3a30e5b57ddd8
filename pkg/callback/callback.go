// Package callback delivers final session intelligence to the evaluation
// endpoint when a conversation ends.
package callback

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/plutuslabs/plutus/pkg/httputil"
	"github.com/plutuslabs/plutus/pkg/intel"
	"github.com/plutuslabs/plutus/pkg/session"
)

// Payload is the wire format of the final result callback.
type Payload struct {
	SessionID              string         `json:"sessionId"`
	ScamDetected           bool           `json:"scamDetected"`
	TotalMessagesExchanged int            `json:"totalMessagesExchanged"`
	ExtractedIntelligence  intel.Evidence `json:"extractedIntelligence"`
	AgentNotes             string         `json:"agentNotes"`
}

// Sender posts session summaries with retries and exponential backoff.
type Sender struct {
	url        string
	client     *http.Client
	maxRetries int
	backoff    func(attempt int) time.Duration
	enabled    bool

	// Bounds concurrent deliveries; SendAsync drops when saturated.
	sem *httputil.Semaphore
}

// Option configures a Sender.
type Option func(*Sender)

// WithBackoff overrides the retry delay schedule. Tests use this to avoid
// real sleeps.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(s *Sender) { s.backoff = fn }
}

// WithClient overrides the HTTP client.
func WithClient(c *http.Client) Option {
	return func(s *Sender) { s.client = c }
}

// WithTimeout sets a per-delivery timeout on the shared transport.
func WithTimeout(d time.Duration) Option {
	return func(s *Sender) {
		if d > 0 {
			s.client = httputil.NewClient(d)
		}
	}
}

// NewSender creates a callback sender. When enabled is false, Send is a
// logged no-op that reports success.
func NewSender(url string, enabled bool, opts ...Option) *Sender {
	s := &Sender{
		url:        url,
		client:     httputil.CallbackClient(),
		maxRetries: 3,
		// 2s, 4s, 8s
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<(attempt+1)) * time.Second
		},
		enabled: enabled,
		sem:     httputil.NewSemaphore(50),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether deliveries are active.
func (s *Sender) Enabled() bool {
	return s.enabled
}

// Send delivers a session summary, retrying up to three times. It returns
// an error only after every attempt has failed.
func (s *Sender) Send(summary session.Summary) error {
	if !s.enabled {
		log.Printf("[callback] disabled, skipping session %s", summary.SessionID)
		return nil
	}

	payload := buildPayload(summary)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal callback payload: %w", err)
	}

	log.Printf("[callback] sending final result for session %s", summary.SessionID)

	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		lastErr = s.post(body)
		if lastErr == nil {
			log.Printf("[callback] delivered for session %s", summary.SessionID)
			return nil
		}
		log.Printf("[callback] attempt %d/%d failed for session %s: %v",
			attempt+1, s.maxRetries, summary.SessionID, lastErr)
		if attempt < s.maxRetries-1 {
			time.Sleep(s.backoff(attempt))
		}
	}

	log.Printf("[callback] all attempts failed for session %s", summary.SessionID)
	return lastErr
}

// SendAsync delivers in a goroutine. A saturated semaphore drops the
// delivery rather than piling up retry loops.
func (s *Sender) SendAsync(summary session.Summary) {
	if !s.enabled {
		return
	}
	if !s.sem.TryAcquire() {
		log.Printf("[callback] delivery dropped for session %s: too many in flight", summary.SessionID)
		return
	}
	go func() {
		defer s.sem.Release()
		_ = s.Send(summary)
	}()
}

func (s *Sender) post(body []byte) error {
	resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer httputil.DrainAndClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return nil
	}

	errBody, _ := httputil.ReadErrorBody(resp.Body)
	return fmt.Errorf("callback returned %d: %.200s", resp.StatusCode, string(errBody))
}

func buildPayload(summary session.Summary) Payload {
	var parts []string
	if summary.PersonaUsed != session.PersonaNone {
		parts = append(parts, fmt.Sprintf("Persona: %s", summary.PersonaUsed))
	}
	if summary.EndReason != session.EndReasonNone {
		parts = append(parts, fmt.Sprintf("End reason: %s", summary.EndReason))
	}
	if summary.HighValueIntelCount > 0 {
		parts = append(parts, fmt.Sprintf("Extracted %d high-value items", summary.HighValueIntelCount))
	}

	notes := "Conversation completed."
	if len(parts) > 0 {
		notes = strings.Join(parts, ". ")
	}

	return Payload{
		SessionID:              summary.SessionID,
		ScamDetected:           summary.ScamDetected,
		TotalMessagesExchanged: summary.TotalMessagesExchanged,
		ExtractedIntelligence:  summary.ExtractedIntelligence,
		AgentNotes:             notes,
	}
}
