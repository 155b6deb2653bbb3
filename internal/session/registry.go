package session

import (
	"sync"
	"time"

	"github.com/wchen310/tictactoe-arena/internal/events"
)

// Registry is the concurrent-safe mapping from match identifier to live
// session. Its lock covers only map lookups and mutations; per-match
// operations run under the session's own mutex, so matches never contend
// with each other.
type Registry struct {
	mu       sync.RWMutex
	sessions map[int64]*Session

	recorder Recorder
	pub      *events.Publisher
	grace    time.Duration
}

// NewRegistry creates an empty registry. Sessions it creates record outcomes
// through recorder, publish lifecycle events through pub, and linger for
// grace after being abandoned.
func NewRegistry(recorder Recorder, pub *events.Publisher, grace time.Duration) *Registry {
	return &Registry{
		sessions: make(map[int64]*Session),
		recorder: recorder,
		pub:      pub,
		grace:    grace,
	}
}

// GetOrCreate returns the session for matchID, atomically creating a Forming
// one if none exists. Concurrent callers for the same identifier always see
// the same session.
func (r *Registry) GetOrCreate(matchID int64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[matchID]; ok {
		return s
	}
	s := newSession(matchID, r.recorder, r.pub, r.grace, r.Remove)
	r.sessions[matchID] = s
	return s
}

// Get returns the session for matchID if one is live.
func (r *Registry) Get(matchID int64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[matchID]
	return s, ok
}

// Remove drops the session for matchID from the map. A later GetOrCreate for
// the same identifier starts a brand-new Forming session.
func (r *Registry) Remove(matchID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, matchID)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
