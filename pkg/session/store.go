package session

import (
	"sync"
	"time"

	"github.com/plutuslabs/plutus/pkg/intel"
)

// Store is the session engine's operation surface. Implementations guarantee
// each operation is atomic; unknown identifiers are no-ops or not-found
// signals, never errors, except GetOrCreate which always succeeds.
type Store interface {
	GetOrCreate(id string) State
	IncrementTurn(id string) int
	UpdateClassification(id string, confirmed bool, confidence float64)
	SetPersona(id string, persona Persona)
	MergeEvidence(id string, newEvidence intel.Evidence) bool
	EvaluateTermination(id string) (bool, EndReason)
	End(id string, reason EndReason)
	Summary(id string) (Summary, bool)
	Stats() Stats
	Close()
}

// Stats contains store-level counters for the health endpoint.
type Stats struct {
	SessionCount  int `json:"session_count"`
	ActiveCount   int `json:"active_count"`
	TotalTurns    int `json:"total_turns"`
	EvidenceItems int `json:"evidence_items"`
}

// add folds one session into the counters.
func (st *Stats) add(ses *State) {
	st.SessionCount++
	if ses.Active {
		st.ActiveCount++
	}
	st.TotalTurns += ses.TurnCount
	st.EvidenceItems += ses.Evidence.TotalItems()
}

// MemoryStore implements Store with a mutex-protected map. Suitable for
// single-node deployments; RedisStore covers the distributed case.
type MemoryStore struct {
	sessions map[string]*State
	mu       sync.Mutex
	policy   Policy

	maxAge      time.Duration // session TTL before the purge loop removes it
	cleanupTick time.Duration

	stopCleanup chan struct{}
	cleanupOnce sync.Once
}

// StoreOption is a functional option for configuring MemoryStore.
type StoreOption func(*MemoryStore)

// WithMaxAge sets the maximum age for a session before purge.
func WithMaxAge(d time.Duration) StoreOption {
	return func(s *MemoryStore) {
		s.maxAge = d
	}
}

// WithCleanupInterval sets how often the purge loop runs.
func WithCleanupInterval(d time.Duration) StoreOption {
	return func(s *MemoryStore) {
		s.cleanupTick = d
	}
}

// NewMemoryStore creates an in-memory session store and starts its purge
// loop. Close stops the loop.
func NewMemoryStore(policy Policy, opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		sessions:    make(map[string]*State),
		policy:      policy.withDefaults(),
		maxAge:      24 * time.Hour,
		cleanupTick: 1 * time.Hour,
		stopCleanup: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.cleanupLoop()

	return s
}

// GetOrCreate returns a snapshot of the session, creating it with defaults
// on first reference. Never fails.
func (s *MemoryStore) GetOrCreate(id string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	ses, ok := s.sessions[id]
	if !ok {
		ses = newState(id, time.Now())
		s.sessions[id] = ses
	}
	return ses.clone()
}

// IncrementTurn bumps the turn counter and returns the new value. Unknown
// ids return 0.
func (s *MemoryStore) IncrementTurn(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ses, ok := s.sessions[id]
	if !ok {
		return 0
	}
	if !ses.Active {
		// Ended sessions are frozen; only timestamps may move.
		ses.UpdatedAt = time.Now()
		return ses.TurnCount
	}
	ses.TurnCount++
	ses.UpdatedAt = time.Now()
	return ses.TurnCount
}

// UpdateClassification records a classification verdict. Unknown ids and
// ended sessions are ignored.
func (s *MemoryStore) UpdateClassification(id string, confirmed bool, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ses, ok := s.sessions[id]
	if !ok || !ses.Active {
		return
	}
	ses.ScamConfirmed = confirmed
	ses.Confidence = confidence
	ses.UpdatedAt = time.Now()
}

// SetPersona assigns the persona if none is set yet. The sticky-once rule is
// enforced here, not by callers.
func (s *MemoryStore) SetPersona(id string, persona Persona) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ses, ok := s.sessions[id]
	if !ok || !ses.Active {
		return
	}
	if ses.Persona != PersonaNone {
		return
	}
	ses.Persona = persona
	ses.UpdatedAt = time.Now()
}

// MergeEvidence unions newEvidence into the session and reports whether
// anything new arrived. Growth stamps LastEvidenceTurn with the current turn.
func (s *MemoryStore) MergeEvidence(id string, newEvidence intel.Evidence) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ses, ok := s.sessions[id]
	if !ok || !ses.Active {
		return false
	}
	added := ses.Evidence.Merge(newEvidence)
	if added {
		ses.LastEvidenceTurn = ses.TurnCount
	}
	ses.UpdatedAt = time.Now()
	return added
}

// EvaluateTermination applies the end policy. Already-ended sessions return
// their stored reason, so repeated calls are idempotent.
func (s *MemoryStore) EvaluateTermination(id string) (bool, EndReason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ses, ok := s.sessions[id]
	if !ok {
		return true, EndSessionNotFound
	}
	return s.policy.evaluate(ses)
}

// End transitions the session to inactive, once. Ending an already-ended
// session is a no-op; the first reason sticks.
func (s *MemoryStore) End(id string, reason EndReason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ses, ok := s.sessions[id]
	if !ok || !ses.Active {
		return
	}
	ses.Active = false
	ses.EndReason = reason
	ses.UpdatedAt = time.Now()
}

// Summary returns the reporting snapshot, or false for unknown ids.
func (s *MemoryStore) Summary(id string) (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ses, ok := s.sessions[id]
	if !ok {
		return Summary{}, false
	}
	return summarize(ses), true
}

// Stats returns current store counters.
func (s *MemoryStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{}
	for _, ses := range s.sessions {
		stats.add(ses)
	}
	return stats
}

// Close stops the purge goroutine.
func (s *MemoryStore) Close() {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
}

// cleanupLoop periodically purges sessions older than maxAge. Runs outside
// the turn path.
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupTick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, ses := range s.sessions {
		if now.Sub(ses.CreatedAt) > s.maxAge {
			delete(s.sessions, id)
		}
	}
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
