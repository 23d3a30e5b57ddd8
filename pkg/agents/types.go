// Package agents implements the conversational honeypot pipeline: a
// detector that classifies inbound messages as scams, an actor that keeps
// confirmed scammers talking through a believable victim persona, and an
// orchestrator that runs both against per-session state.
package agents

import "github.com/plutuslabs/plutus/pkg/intel"

// Message is a single conversation message.
type Message struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Metadata carries channel context for an inbound message.
type Metadata struct {
	Channel  string `json:"channel"`
	Language string `json:"language"`
	Locale   string `json:"locale"`
}

// AnalyzeRequest is the request body of the analyze endpoint.
type AnalyzeRequest struct {
	SessionID           string    `json:"sessionId"`
	Message             Message   `json:"message"`
	ConversationHistory []Message `json:"conversationHistory"`
	Metadata            Metadata  `json:"metadata"`
}

// EngagementMetrics reports per-turn engagement counters.
type EngagementMetrics struct {
	ConversationTurn       int   `json:"conversationTurn"`
	ResponseTimeMs         int64 `json:"responseTimeMs"`
	TotalIntelligenceItems int   `json:"totalIntelligenceItems"`
}

// AnalyzeResponse is the response body of the analyze endpoint.
type AnalyzeResponse struct {
	Status                string            `json:"status"`
	ScamDetected          bool              `json:"scamDetected"`
	AgentResponse         string            `json:"agentResponse"`
	ExtractedIntelligence intel.Evidence    `json:"extractedIntelligence"`
	EngagementMetrics     EngagementMetrics `json:"engagementMetrics"`
	ContinueConversation  bool              `json:"continueConversation"`
	AgentNotes            string            `json:"agentNotes"`
}

// Detection holds the classifier verdict for one message.
type Detection struct {
	IsScam     bool     `json:"is_scam"`
	Confidence float64  `json:"confidence"`
	Reason     string   `json:"reason"`
	Indicators []string `json:"indicators"`
}
