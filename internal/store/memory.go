// internal/store/memory.go
//
// In-memory implementation of the session Store.
// Active daily games live here until their date passes; finished results are
// persisted separately by the daily package.
//
// Characteristics:
//   - Stores *game.Session objects keyed by ID, indexed by owner|date.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/capsle/internal/game"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*game.Session, error)

	// ForOwner returns the owner's session for date, if any.
	ForOwner(ctx context.Context, owner, date string) (*game.Session, bool)

	// PruneBefore drops sessions dated before date (YYYY-MM-DD) and reports how many.
	PruneBefore(ctx context.Context, date string) int
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session // keyed by Session.ID
	byOwner  map[string]string        // owner|date -> Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		sessions: make(map[string]*game.Session),
		byOwner:  make(map[string]string),
	}
}

func ownerKey(owner, date string) string { return owner + "|" + date }

func (m *memory) Save(_ context.Context, s *game.Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session without id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	if s.Owner != "" {
		m.byOwner[ownerKey(s.Owner, s.Date)] = s.ID
	}
	return nil
}

func (m *memory) Get(_ context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) ForOwner(_ context.Context, owner, date string) (*game.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byOwner[ownerKey(owner, date)]
	if !ok {
		return nil, false
	}
	s, ok := m.sessions[id]
	return s, ok
}

// PruneBefore relies on YYYY-MM-DD keys sorting chronologically.
func (m *memory) PruneBefore(_ context.Context, date string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.Date >= date {
			continue
		}
		delete(m.sessions, id)
		if m.byOwner[ownerKey(s.Owner, s.Date)] == id {
			delete(m.byOwner, ownerKey(s.Owner, s.Date))
		}
		n++
	}
	return n
}
