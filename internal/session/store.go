package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExists   = errors.New("session already exists")
)

// Store keeps sessions between interactions
type Store interface {
	Create(s *Session) error
	Get(id string) (*Session, error)
	Update(id string, fn func(s *Session) error) (*Session, error)
	Delete(id string) error
	Sweep(ttl time.Duration, now time.Time) int
	Len() int
}

type entry struct {
	mu      sync.Mutex
	session *Session
}

// MemoryStore is an in-memory implementation of Store. Updates to one session
// are serialised; different sessions never block each other beyond the map lookup.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*entry)}
}

// Create stores a new session
func (m *MemoryStore) Create(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; exists {
		return fmt.Errorf("%w: %s", ErrExists, s.ID)
	}
	m.sessions[s.ID] = &entry{session: s.Clone()}
	return nil
}

func (m *MemoryStore) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, exists := m.sessions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// Get returns a copy of the session
func (m *MemoryStore) Get(id string) (*Session, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

// Update applies fn to a working copy of the session and stores it when fn
// succeeds. The returned session is a copy of the stored state.
func (m *MemoryStore) Update(id string, fn func(s *Session) error) (*Session, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.session.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	work.UpdatedAt = time.Now()
	e.session = work
	return work.Clone(), nil
}

// Delete removes a session
func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// Sweep removes sessions idle for longer than ttl and returns how many went
func (m *MemoryStore) Sweep(ttl time.Duration, now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.sessions {
		e.mu.Lock()
		idle := now.Sub(e.session.UpdatedAt)
		e.mu.Unlock()
		if idle > ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// RunSweeper sweeps the store every interval until ctx is cancelled
func RunSweeper(ctx context.Context, store Store, interval, ttl time.Duration, logger *slog.Logger) {
	if interval <= 0 || ttl <= 0 {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := store.Sweep(ttl, now); n > 0 {
				logger.Info("expired sessions removed",
					slog.Int("removed", n),
					slog.Int("remaining", store.Len()))
			}
		}
	}
}
