// Package session provides the in-memory per-user dialogue session store.
//
// The store is the only mutable shared state in the bot core. All turn
// processing follows a read-compute-write cycle guarded by the session
// version: CompareAndSet is the serialization point for concurrent events
// arriving for the same user.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/kisses-noo/rpp-lab/internal/domain"
)

// ErrVersionConflict is returned by CompareAndSet when another turn has
// written the session since it was read.
var ErrVersionConflict = errors.New("session version conflict")

// Store keeps one session per user identity.
type Store struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	now      func() time.Time
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: map[string]domain.Session{},
		now:      time.Now,
	}
}

// Get returns the session for a user, creating an idle one on first contact.
// Get never fails.
func (s *Store) Get(userID string) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = domain.NewSession(userID)
		sess.LastActivity = s.now()
		s.sessions[userID] = sess
	}
	return clone(sess)
}

// CompareAndSet writes next for the user if the stored version still equals
// expectedVersion. On success the version is bumped and LastActivity
// refreshed; otherwise ErrVersionConflict is returned and the caller must
// restart its read-compute-write cycle.
func (s *Store) CompareAndSet(userID string, expectedVersion int64, next domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[userID]
	if ok && cur.Version != expectedVersion {
		return ErrVersionConflict
	}
	if !ok && expectedVersion != 0 {
		return ErrVersionConflict
	}

	next.UserID = userID
	next.Version = expectedVersion + 1
	next.LastActivity = s.now()
	s.sessions[userID] = clone(next)
	return nil
}

// ExpireStale resets all sessions whose last activity is older than maxAge
// back to IDLE with cleared fields, and returns how many were reset. An
// abandoned dialogue must never block a user forever.
func (s *Store) ExpireStale(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	expired := 0
	for id, sess := range s.sessions {
		if sess.State == domain.StateIdle || !sess.LastActivity.Before(cutoff) {
			continue
		}
		sess.Reset()
		sess.Version++
		sess.LastActivity = s.now()
		s.sessions[id] = sess
		expired++
	}
	return expired
}

// Len reports the number of tracked sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// clone copies a session so callers never share the stored fields map.
func clone(sess domain.Session) domain.Session {
	fields := make(map[string]string, len(sess.Fields))
	for k, v := range sess.Fields {
		fields[k] = v
	}
	sess.Fields = fields
	return sess
}
