package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plutuslabs/plutus/pkg/intel"
)

const redisKeyPrefix = "plutus:session:"

// RedisStore implements Store on Redis for deployments where session state
// must survive a process restart or be shared behind a load balancer that
// does not pin conversations. A process-local mutex serializes the
// read-modify-write cycle, preserving the single-exclusion-domain contract
// for a single writer node.
type RedisStore struct {
	client *redis.Client
	policy Policy
	mu     sync.Mutex
	maxAge time.Duration
	opTTL  time.Duration
}

// NewRedisStore connects to addr and returns a Redis-backed store. Session
// keys expire after maxAge (Redis handles the purge; no cleanup loop).
func NewRedisStore(addr, password string, db int, policy Policy, maxAge time.Duration) *RedisStore {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		policy: policy.withDefaults(),
		maxAge: maxAge,
		opTTL:  5 * time.Second,
	}
}

func (s *RedisStore) key(id string) string {
	return redisKeyPrefix + id
}

// load fetches and decodes a session. Missing keys and decode failures
// return nil; Redis errors are logged, never surfaced to the turn path.
func (s *RedisStore) load(ctx context.Context, id string) *State {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[session] redis get %s: %v", id, err)
		}
		return nil
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		log.Printf("[session] corrupt session %s: %v", id, err)
		return nil
	}
	return &st
}

func (s *RedisStore) save(ctx context.Context, st *State) {
	data, err := json.Marshal(st)
	if err != nil {
		log.Printf("[session] marshal session %s: %v", st.ID, err)
		return
	}
	if err := s.client.Set(ctx, s.key(st.ID), data, s.maxAge).Err(); err != nil {
		log.Printf("[session] redis set %s: %v", st.ID, err)
	}
}

// mutate runs fn over the stored state under the local lock and writes the
// result back. When the id is unknown it calls fn with nil and writes
// nothing.
func (s *RedisStore) mutate(id string, fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.opTTL)
	defer cancel()

	st := s.load(ctx, id)
	if st == nil {
		return
	}
	fn(st)
	st.UpdatedAt = time.Now()
	s.save(ctx, st)
}

func (s *RedisStore) GetOrCreate(id string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.opTTL)
	defer cancel()

	st := s.load(ctx, id)
	if st == nil {
		st = newState(id, time.Now())
		s.save(ctx, st)
	}
	return st.clone()
}

func (s *RedisStore) IncrementTurn(id string) int {
	turn := 0
	s.mutate(id, func(st *State) {
		if st.Active {
			st.TurnCount++
		}
		turn = st.TurnCount
	})
	return turn
}

func (s *RedisStore) UpdateClassification(id string, confirmed bool, confidence float64) {
	s.mutate(id, func(st *State) {
		if !st.Active {
			return
		}
		st.ScamConfirmed = confirmed
		st.Confidence = confidence
	})
}

func (s *RedisStore) SetPersona(id string, persona Persona) {
	s.mutate(id, func(st *State) {
		if !st.Active || st.Persona != PersonaNone {
			return
		}
		st.Persona = persona
	})
}

func (s *RedisStore) MergeEvidence(id string, newEvidence intel.Evidence) bool {
	added := false
	s.mutate(id, func(st *State) {
		if !st.Active {
			return
		}
		if st.Evidence.Merge(newEvidence) {
			st.LastEvidenceTurn = st.TurnCount
			added = true
		}
	})
	return added
}

func (s *RedisStore) EvaluateTermination(id string) (bool, EndReason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.opTTL)
	defer cancel()

	st := s.load(ctx, id)
	if st == nil {
		return true, EndSessionNotFound
	}
	return s.policy.evaluate(st)
}

func (s *RedisStore) End(id string, reason EndReason) {
	s.mutate(id, func(st *State) {
		if !st.Active {
			return
		}
		st.Active = false
		st.EndReason = reason
	})
}

func (s *RedisStore) Summary(id string) (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.opTTL)
	defer cancel()

	st := s.load(ctx, id)
	if st == nil {
		return Summary{}, false
	}
	return summarize(st), true
}

func (s *RedisStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.opTTL)
	defer cancel()

	var keys []string
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("[session] redis scan: %v", err)
	}
	if len(keys) == 0 {
		return Stats{}
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		log.Printf("[session] redis mget: %v", err)
		return Stats{SessionCount: len(keys)}
	}
	return foldSessionPayloads(keys, vals)
}

// foldSessionPayloads aggregates fetched session payloads into counters,
// skipping entries that expired between scan and fetch or fail to decode.
func foldSessionPayloads(keys []string, vals []interface{}) Stats {
	stats := Stats{}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var ses State
		if err := json.Unmarshal([]byte(raw), &ses); err != nil {
			log.Printf("[session] corrupt session %s: %v", keys[i], err)
			continue
		}
		stats.add(&ses)
	}
	return stats
}

func (s *RedisStore) Close() {
	if err := s.client.Close(); err != nil {
		log.Printf("[session] redis close: %v", err)
	}
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
