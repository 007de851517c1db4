package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps accepted timestamps per key in process memory.
// State is lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	policy  Policy
	clients map[string][]time.Time
}

func NewMemoryStore(policy Policy) *MemoryStore {
	return &MemoryStore{
		policy:  policy,
		clients: make(map[string][]time.Time),
	}
}

func (s *MemoryStore) Allow(_ context.Context, key string, now time.Time) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := s.prune(s.clients[key], now)

	if len(recent) >= s.policy.Limit {
		s.clients[key] = recent
		retry := s.policy.Window
		if len(recent) > 0 {
			retry = oldest(recent).Add(s.policy.Window).Sub(now)
		}
		return Decision{Allowed: false, RetryAfter: retry}, nil
	}

	recent = append(recent, now)
	s.clients[key] = recent

	// coarse bound: drop everyone rather than track an LRU
	if s.policy.MaxClients > 0 && len(s.clients) > s.policy.MaxClients {
		s.clients = make(map[string][]time.Time)
	}

	return Decision{Allowed: true, Remaining: s.policy.Limit - len(recent)}, nil
}

func (s *MemoryStore) Clients(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients), nil
}

// prune drops timestamps that are a full window old, in place.
func (s *MemoryStore) prune(timestamps []time.Time, now time.Time) []time.Time {
	recent := timestamps[:0]
	for _, ts := range timestamps {
		if now.Sub(ts) < s.policy.Window {
			recent = append(recent, ts)
		}
	}
	return recent
}

func oldest(timestamps []time.Time) time.Time {
	first := timestamps[0]
	for _, ts := range timestamps[1:] {
		if ts.Before(first) {
			first = ts
		}
	}
	return first
}
