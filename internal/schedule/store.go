package schedule

import (
	"context"
	"sync"
)

// Store is the persistence capability for the last prepared schedule.
//
// The prepared schedule is durable staging state: it must survive between
// a prepare command and a go command, including across separate client
// connections and (for durable implementations) process restarts.
// Semantics are last-prepared-wins; Read before any Write fails with
// ErrNotPrepared.
type Store interface {
	// Write persists a raw schedule line, replacing any previous one.
	// Callers must validate the line first; the store is deliberately
	// format-agnostic.
	Write(ctx context.Context, rawLine string) error

	// Read returns the last successfully written line, or ErrNotPrepared
	// if nothing was ever written.
	Read(ctx context.Context) (string, error)
}

// MemoryStore is an in-memory Store for tests and ephemeral deployments.
//
// Thread Safety: safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	line    string
	written bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Write stores the line in memory.
func (s *MemoryStore) Write(_ context.Context, rawLine string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.line = rawLine
	s.written = true
	return nil
}

// Read returns the stored line, or ErrNotPrepared if never written.
func (s *MemoryStore) Read(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.written {
		return "", ErrNotPrepared
	}
	return s.line, nil
}
