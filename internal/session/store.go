// Package session keeps the server-side registry of issued bearer tokens.
// A signed token alone is necessary but not sufficient for authorization:
// the store is the source of truth for "is this token still live", which is
// what makes explicit logout possible before a token's embedded expiry.
//
// The store is process-local memory. It does not survive a restart and is
// not shared between instances; horizontal scaling needs an external
// registry, which this service does not attempt.
package session

import (
	"sync"
	"time"
)

// Session is the record registered for one issued token.
type Session struct {
	Token     string
	SubjectID int64
	ExpiresAt time.Time
}

// Store is an in-memory session registry keyed by token. All methods are
// safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	m    map[string]Session
	nowF func() time.Time
}

// NewStore returns an empty Store. now is the clock used for expiry checks;
// nil means time.Now. The caller owns sweeping: run Sweep on a periodic
// tick to bound growth from sessions that are never looked up again.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{m: make(map[string]Session), nowF: now}
}

// Create registers a session for token. Re-registering an existing token
// silently overwrites it; issued tokens are unique (random jti), so this
// is not treated as an error.
func (s *Store) Create(subjectID int64, token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[token] = Session{Token: token, SubjectID: subjectID, ExpiresAt: expiresAt}
}

// Get returns the live session for token. A present but expired session is
// deleted on the way out and reported as absent.
func (s *Store) Get(token string) (Session, bool) {
	s.mu.RLock()
	sess, ok := s.m[token]
	s.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if !sess.ExpiresAt.After(s.nowF()) {
		s.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// replaced the entry since the read.
		if cur, ok := s.m[token]; ok && !cur.ExpiresAt.After(s.nowF()) {
			delete(s.m, token)
		}
		s.mu.Unlock()
		return Session{}, false
	}
	return sess, true
}

// Delete removes the session for token. Deleting an absent token is a no-op.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, token)
}

// Sweep removes every session that expired at or before now and returns
// how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, sess := range s.m {
		if !sess.ExpiresAt.After(now) {
			delete(s.m, token)
			removed++
		}
	}
	return removed
}

// Len reports the number of registered sessions, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
