// internal/store/memory.go
//
// In-memory store for game sessions started over HTTP.
// A session only remembers which secret a game id refers to; guesses are
// marked independently and nothing about progress is kept here.
//
// Characteristics:
//   - Sessions keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Get returns ErrNotFound for unknown IDs.

package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Get for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Session ties a game ID to its secret code.
type Session struct {
	ID        string
	Secret    string
	UserID    string // empty for guests
	CreatedAt time.Time
}

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (Session, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex       // guards sessions
	sessions map[string]Session // keyed by Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]Session)}
}

// Save adds or updates the session.
func (m *memory) Save(ctx context.Context, s Session) error {
	if s.ID == "" {
		return errors.New("session id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Get looks up a session by ID.
func (m *memory) Get(ctx context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return Session{}, ErrNotFound
}
