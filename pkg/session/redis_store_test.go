package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/plutuslabs/plutus/pkg/intel"
)

func mustPayload(t *testing.T, st *State) string {
	t.Helper()
	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	return string(data)
}

func TestFoldSessionPayloads(t *testing.T) {
	now := time.Now()

	active := newState("sess-a", now)
	active.TurnCount = 4
	active.Evidence = intel.Evidence{
		UpiIDs:       []string{"scammer@paytm"},
		PhoneNumbers: []string{"+919876543210"},
	}

	ended := newState("sess-b", now)
	ended.TurnCount = 20
	ended.Active = false
	ended.EndReason = EndMaxTurns
	ended.Evidence = intel.Evidence{
		SuspiciousKeywords: []string{"otp", "urgent", "verify"},
	}

	keys := []string{
		redisKeyPrefix + "sess-a",
		redisKeyPrefix + "sess-b",
		redisKeyPrefix + "sess-expired",
		redisKeyPrefix + "sess-corrupt",
	}
	vals := []interface{}{
		mustPayload(t, active),
		mustPayload(t, ended),
		nil,            // expired between scan and fetch
		"{not json!!}", // corrupt entry
	}

	stats := foldSessionPayloads(keys, vals)
	if stats.SessionCount != 2 {
		t.Errorf("SessionCount = %d, want 2 (expired and corrupt entries skipped)", stats.SessionCount)
	}
	if stats.ActiveCount != 1 {
		t.Errorf("ActiveCount = %d, want 1", stats.ActiveCount)
	}
	if stats.TotalTurns != 24 {
		t.Errorf("TotalTurns = %d, want 24", stats.TotalTurns)
	}
	if stats.EvidenceItems != 5 {
		t.Errorf("EvidenceItems = %d, want 5", stats.EvidenceItems)
	}
}

func TestFoldSessionPayloadsEmpty(t *testing.T) {
	stats := foldSessionPayloads(nil, nil)
	if stats != (Stats{}) {
		t.Errorf("empty fold = %+v, want zero stats", stats)
	}
}
