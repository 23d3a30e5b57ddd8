package agents

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/plutuslabs/plutus/pkg/intel"
	"github.com/plutuslabs/plutus/pkg/session"
)

// Classifier is the detector surface the orchestrator depends on.
type Classifier interface {
	DetectScam(ctx context.Context, message string, history []Message) Detection
}

// Responder is the actor surface the orchestrator depends on.
type Responder interface {
	GenerateResponse(ctx context.Context, message string, persona session.Persona, history []Message) string
	SelectPersona(indicators []string) session.Persona
}

var (
	_ Classifier = (*Detector)(nil)
	_ Responder  = (*Actor)(nil)
)

// Orchestrator runs the per-message pipeline: classify, extract evidence,
// reply in persona, and decide whether the conversation continues.
type Orchestrator struct {
	classifier Classifier
	responder  Responder
	extractor  *intel.Extractor
	store      session.Store

	// Persona engagement requires confirmed scam at or above this confidence.
	confidenceThreshold float64
}

// NewOrchestrator wires the pipeline components together.
func NewOrchestrator(classifier Classifier, responder Responder, extractor *intel.Extractor, store session.Store, confidenceThreshold float64) *Orchestrator {
	if confidenceThreshold <= 0 {
		confidenceThreshold = 0.7
	}
	return &Orchestrator{
		classifier:          classifier,
		responder:           responder,
		extractor:           extractor,
		store:               store,
		confidenceThreshold: confidenceThreshold,
	}
}

// ProcessMessage runs one inbound message through the full pipeline and
// returns the wire response.
func (o *Orchestrator) ProcessMessage(ctx context.Context, req AnalyzeRequest) AnalyzeResponse {
	start := time.Now()
	sessionID := req.SessionID
	messageText := req.Message.Text

	log.Printf("[orchestrator] session=%s processing message: %.50q", sessionID, messageText)

	state := o.store.GetOrCreate(sessionID)
	isFirstTurn := state.TurnCount == 0

	turnCount := o.store.IncrementTurn(sessionID)

	// Classify on the first turn and keep re-checking until a scam is
	// confirmed. A confirmed verdict is never revisited.
	var detection *Detection
	if isFirstTurn || !state.ScamConfirmed {
		det := o.classifier.DetectScam(ctx, messageText, req.ConversationHistory)
		detection = &det
		o.store.UpdateClassification(sessionID, det.IsScam, det.Confidence)
	}

	state = o.store.GetOrCreate(sessionID)

	// Evidence comes out of every message regardless of the verdict.
	evidence := o.extractor.ExtractAll(messageText)
	o.store.MergeEvidence(sessionID, evidence)
	state = o.store.GetOrCreate(sessionID)

	var agentResponse string
	if state.ScamConfirmed && state.Confidence >= o.confidenceThreshold {
		persona := state.Persona
		if persona == session.PersonaNone {
			var indicators []string
			if detection != nil {
				indicators = detection.Indicators
			}
			persona = o.responder.SelectPersona(indicators)
			o.store.SetPersona(sessionID, persona)
		}
		agentResponse = o.responder.GenerateResponse(ctx, messageText, persona, req.ConversationHistory)
	}

	shouldEnd, endReason := o.store.EvaluateTermination(sessionID)
	if shouldEnd {
		o.store.End(sessionID, endReason)
	}

	state = o.store.GetOrCreate(sessionID)
	responseTime := time.Since(start).Milliseconds()

	resp := AnalyzeResponse{
		Status:                "success",
		ScamDetected:          state.ScamConfirmed,
		AgentResponse:         agentResponse,
		ExtractedIntelligence: state.Evidence,
		EngagementMetrics: EngagementMetrics{
			ConversationTurn:       turnCount,
			ResponseTimeMs:         responseTime,
			TotalIntelligenceItems: state.Evidence.TotalItems(),
		},
		ContinueConversation: !shouldEnd,
		AgentNotes:           buildNotes(detection, state.Persona, shouldEnd, endReason),
	}

	log.Printf("[orchestrator] session=%s turn=%d scam=%v continue=%v elapsed=%dms",
		sessionID, turnCount, state.ScamConfirmed, !shouldEnd, responseTime)

	return resp
}

// EndSessionManually ends an active session, reporting whether it was
// still active.
func (o *Orchestrator) EndSessionManually(sessionID string) bool {
	state := o.store.GetOrCreate(sessionID)
	if !state.Active {
		return false
	}
	o.store.End(sessionID, session.EndManual)
	return true
}

// SessionSummary returns the summary used for callbacks and reporting.
func (o *Orchestrator) SessionSummary(sessionID string) (session.Summary, bool) {
	return o.store.Summary(sessionID)
}

func buildNotes(detection *Detection, persona session.Persona, ended bool, endReason session.EndReason) string {
	var parts []string
	if detection != nil {
		parts = append(parts, fmt.Sprintf("Detection: %s", detection.Reason))
	}
	if persona != session.PersonaNone {
		parts = append(parts, fmt.Sprintf("Persona: %s", persona))
	}
	if ended {
		parts = append(parts, fmt.Sprintf("Ended: %s", endReason))
	}
	return strings.Join(parts, ". ")
}
