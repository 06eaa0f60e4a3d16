package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	fingerprint string
	expiresAt   time.Time
}

// MemoryStore is an in-process session binding store with TTL expiry.
// Suitable for single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	stopCh  chan struct{}
}

// NewMemoryStore creates a memory store and starts its expiry janitor
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *MemoryStore) evictExpired() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}

// GetFingerprint returns the fingerprint bound to the session, or "" when
// none is bound
func (s *MemoryStore) GetFingerprint(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[sessionID]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", nil
	}
	return entry.fingerprint, nil
}

// BindFingerprint attaches a fingerprint to the session
func (s *MemoryStore) BindFingerprint(_ context.Context, sessionID, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sessionID] = memoryEntry{
		fingerprint: fingerprint,
		expiresAt:   time.Now().Add(s.ttl),
	}
	return nil
}

// Clear removes the session's binding
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	return nil
}

// Close stops the expiry janitor
func (s *MemoryStore) Close() {
	close(s.stopCh)
}
