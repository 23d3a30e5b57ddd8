// Package session owns per-conversation state for the honeypot: turn
// counting, classification verdicts, accumulated evidence, persona stickiness
// and the end-of-conversation policy.
//
// Every mutating operation is atomic under the store's exclusion domain and
// performs no blocking work inside it. External calls (classification, reply
// generation, callbacks) happen elsewhere, never under the lock.
package session

import (
	"time"

	"github.com/plutuslabs/plutus/pkg/intel"
)

// Persona identifies the decoy character a session speaks as. Once set to a
// non-empty value it never changes for the life of the session.
type Persona string

const (
	PersonaNone         Persona = ""
	PersonaElderly      Persona = "elderly"
	PersonaProfessional Persona = "professional"
	PersonaNovice       Persona = "novice"
)

// EndReason records why a session left the active state. Set exactly once.
type EndReason string

const (
	EndReasonNone         EndReason = ""
	EndSufficientIntel    EndReason = "sufficient_intelligence"
	EndMaxTurns           EndReason = "max_turns_reached"
	EndStaleConversation  EndReason = "stale_conversation"
	EndManual             EndReason = "manual_end"
	EndSessionNotFound    EndReason = "session_not_found"
)

// State is the fixed-shape per-session record. It is owned by a Store and
// mutated only through Store operations; callers receive copies.
type State struct {
	ID            string         `json:"session_id"`
	TurnCount     int            `json:"turn_count"`
	ScamConfirmed bool           `json:"scam_confirmed"`
	Confidence    float64        `json:"confidence"`
	Persona       Persona        `json:"persona"`
	Evidence      intel.Evidence `json:"evidence"`

	// LastEvidenceTurn is the turn at which evidence last grew; drives the
	// staleness end condition.
	LastEvidenceTurn int `json:"last_evidence_turn"`

	Active    bool      `json:"active"`
	EndReason EndReason `json:"end_reason"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// newState returns the default state for a previously-unseen identifier.
func newState(id string, now time.Time) *State {
	return &State{
		ID:        id,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// clone returns a deep copy safe to hand outside the lock.
func (s *State) clone() State {
	c := *s
	c.Evidence = s.Evidence.Clone()
	return c
}

// Summary is the read-only reporting snapshot of a session, shaped for the
// result-delivery callback.
type Summary struct {
	SessionID              string         `json:"sessionId"`
	ScamDetected           bool           `json:"scamDetected"`
	TotalMessagesExchanged int            `json:"totalMessagesExchanged"`
	ExtractedIntelligence  intel.Evidence `json:"extractedIntelligence"`
	PersonaUsed            Persona        `json:"personaUsed"`
	EndReason              EndReason      `json:"endReason"`
	HighValueIntelCount    int            `json:"highValueIntelCount"`
	CreatedAt              time.Time      `json:"createdAt"`
	UpdatedAt              time.Time      `json:"updatedAt"`
}

// summarize builds a Summary from a state snapshot.
func summarize(s *State) Summary {
	return Summary{
		SessionID:              s.ID,
		ScamDetected:           s.ScamConfirmed,
		TotalMessagesExchanged: s.TurnCount,
		ExtractedIntelligence:  s.Evidence.Clone(),
		PersonaUsed:            s.Persona,
		EndReason:              s.EndReason,
		HighValueIntelCount:    s.Evidence.HighValueCount(),
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

// Policy holds the termination thresholds. Zero values are replaced with the
// defaults by the store constructors.
type Policy struct {
	MaxTurns       int // force end at this turn count (default 20)
	MinIntelTypes  int // non-empty categories needed for sufficiency (default 2)
	StaleThreshold int // turns without new evidence before ending (default 5)
}

func (p Policy) withDefaults() Policy {
	if p.MaxTurns == 0 {
		p.MaxTurns = 20
	}
	if p.MinIntelTypes == 0 {
		p.MinIntelTypes = 2
	}
	if p.StaleThreshold == 0 {
		p.StaleThreshold = 5
	}
	return p
}

// evaluate applies the termination policy to a state. Priority order is
// fixed: sufficiency, then turn budget, then staleness. First match wins.
func (p Policy) evaluate(s *State) (bool, EndReason) {
	if !s.Active {
		reason := s.EndReason
		if reason == EndReasonNone {
			reason = EndReason("already_ended")
		}
		return true, reason
	}

	if s.Evidence.TypesCount() >= p.MinIntelTypes && s.Evidence.HighValueCount() >= 1 {
		return true, EndSufficientIntel
	}
	if s.TurnCount >= p.MaxTurns {
		return true, EndMaxTurns
	}
	if s.TurnCount > 3 && s.TurnCount-s.LastEvidenceTurn >= p.StaleThreshold {
		return true, EndStaleConversation
	}
	return false, EndReasonNone
}
