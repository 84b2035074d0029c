package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

type entry struct {
	mu       sync.Mutex
	state    *State
	lastUsed time.Time
}

// Store maps session IDs to session state. Each session has its own lock,
// so one interaction is applied at a time per session while sessions
// proceed independently.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets the idle timeout.
func WithTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.ttl = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used by the reaper.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		ttl:      DefaultTTL,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a session and returns its ID.
func (s *Store) Create() string {
	id := uuid.NewString()
	e := &entry{state: NewState(), lastUsed: s.now()}

	s.mu.Lock()
	s.sessions[id] = e
	s.mu.Unlock()
	return id
}

// Update runs fn with exclusive access to the session's state and marks
// the session used. The error from fn is returned as is.
func (s *Store) Update(id string, fn func(*State) error) error {
	e, err := s.get(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = s.now()
	return fn(e.state)
}

// Exists reports whether id names a live session.
func (s *Store) Exists(id string) bool {
	_, err := s.get(id)
	return err == nil
}

// Delete ends a session. Unknown IDs are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) get(id string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return e, nil
}

// ReapIdle drops sessions idle longer than the TTL, checking every
// interval until ctx is done. Run it in its own goroutine.
func (s *Store) ReapIdle(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.reapOnce(); n > 0 {
				s.logger.Debug("sessions reaped", "count", n, "live", s.Len())
			}
		}
	}
}

func (s *Store) reapOnce() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.sessions {
		// an entry busy in Update is in use, not idle
		if !e.mu.TryLock() {
			continue
		}
		stale := e.lastUsed.Before(cutoff)
		e.mu.Unlock()
		if stale {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
