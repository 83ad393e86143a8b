package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/siwa/core"
	"github.com/layer-3/siwa/ports"
)

// sweepInterval is how often the background sweep reclaims expired records.
const sweepInterval = time.Minute

// MemoryStore backs the nonce, session and rate-limit contracts with
// mutex-guarded maps. Expiry is enforced lazily on every read and a periodic
// sweep reclaims dead records, so no per-key timers are needed. The store is
// owned by whoever constructs it; call Close to stop the sweep goroutine.
type MemoryStore struct {
	mu       sync.Mutex
	nonces   map[string]*core.NonceRecord
	sessions map[string]*core.SessionRecord
	limits   map[string]*core.RateLimitRecord

	done chan struct{}
	once sync.Once
}

// NewMemoryStore creates a memory store and starts its sweep goroutine.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		nonces:   make(map[string]*core.NonceRecord),
		sessions: make(map[string]*core.SessionRecord),
		limits:   make(map[string]*core.RateLimitRecord),
		done:     make(chan struct{}),
	}

	go s.sweep()

	return s
}

// Nonces returns the nonce store view.
func (s *MemoryStore) Nonces() ports.NonceStore { return memoryNonces{s} }

// Sessions returns the session store view.
func (s *MemoryStore) Sessions() ports.SessionStore { return memorySessions{s} }

// RateLimits returns the rate-limit store view.
func (s *MemoryStore) RateLimits() ports.RateLimitStore { return memoryLimits{s} }

// Close stops the sweep goroutine. Idempotent.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for nonce, record := range s.nonces {
				if now.After(record.ExpiresAt) {
					delete(s.nonces, nonce)
				}
			}
			for token, record := range s.sessions {
				if now.After(record.ExpiresAt) {
					delete(s.sessions, token)
				}
			}
			for id, record := range s.limits {
				if now.After(record.ExpiresAt) {
					delete(s.limits, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

type memoryNonces struct{ s *MemoryStore }

func (m memoryNonces) Get(ctx context.Context, nonce string) (*core.NonceRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	record, ok := m.s.nonces[nonce]
	if !ok || time.Now().After(record.ExpiresAt) {
		return nil, nil
	}
	return record, nil
}

func (m memoryNonces) Set(ctx context.Context, nonce string, record *core.NonceRecord) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	m.s.nonces[nonce] = record
	return nil
}

func (m memoryNonces) Delete(ctx context.Context, nonce string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	delete(m.s.nonces, nonce)
	return nil
}

// Consume removes and returns the nonce record in one critical section, so
// two racing calls for the same nonce see exactly one winner.
func (m memoryNonces) Consume(ctx context.Context, nonce string) (*core.NonceRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	record, ok := m.s.nonces[nonce]
	if !ok {
		return nil, nil
	}
	delete(m.s.nonces, nonce)

	if time.Now().After(record.ExpiresAt) {
		return nil, nil
	}
	return record, nil
}

type memorySessions struct{ s *MemoryStore }

func (m memorySessions) Get(ctx context.Context, token string) (*core.SessionRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	record, ok := m.s.sessions[token]
	if !ok || time.Now().After(record.ExpiresAt) {
		return nil, nil
	}
	return record, nil
}

func (m memorySessions) Set(ctx context.Context, token string, record *core.SessionRecord) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	m.s.sessions[token] = record
	return nil
}

func (m memorySessions) Delete(ctx context.Context, token string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	delete(m.s.sessions, token)
	return nil
}

type memoryLimits struct{ s *MemoryStore }

// Increment advances the fixed-window counter for the identifier. A new
// window starts when no record exists or the current one began before
// now-window; within an active window requests beyond maxRequests are
// rejected.
func (m memoryLimits) Increment(ctx context.Context, identifier string, window time.Duration, maxRequests int) (core.RateLimitResult, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	now := time.Now()
	record, ok := m.s.limits[identifier]
	if !ok || record.WindowStart.Before(now.Add(-window)) {
		record = &core.RateLimitRecord{
			Count:       1,
			WindowStart: now,
			ExpiresAt:   now.Add(window),
		}
		m.s.limits[identifier] = record
		return core.RateLimitResult{Allowed: true, Count: 1, ResetTime: record.ExpiresAt}, nil
	}

	if record.Count >= maxRequests {
		return core.RateLimitResult{Allowed: false, Count: record.Count, ResetTime: record.ExpiresAt}, nil
	}

	record.Count++
	return core.RateLimitResult{Allowed: true, Count: record.Count, ResetTime: record.ExpiresAt}, nil
}
