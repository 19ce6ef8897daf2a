// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session keeps per-user state between requests: the help chat
// history and the report of the most recent run. A session is created on
// first use, cleared when ended, and expires after a period of inactivity.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/literature-helper/pkg/types"
)

// DefaultTTL is used when a Store is created with a non-positive TTL.
const DefaultTTL = time.Hour

// Session is the state owned by one user. Its accessors are safe for
// concurrent use; Exclusive serializes whole runs.
type Session struct {
	ID      string
	Created time.Time

	run sync.Mutex

	mu       sync.Mutex
	lastUsed time.Time
	history  []types.ChatMessage
	report   *types.Report
}

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, Created: now, lastUsed: now}
}

// Exclusive runs fn while holding the session's run lock.
func (s *Session) Exclusive(fn func()) {
	s.run.Lock()
	defer s.run.Unlock()
	fn()
}

// History returns a copy of the chat history.
func (s *Session) History() []types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// AppendExchange records a question and the reply it received.
func (s *Session) AppendExchange(question, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		types.ChatMessage{Role: types.RoleUser, Text: question},
		types.ChatMessage{Role: types.RoleModel, Text: reply},
	)
}

// Report returns the most recent run report, or nil.
func (s *Session) Report() *types.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// SetReport replaces the most recent run report.
func (s *Session) SetReport(r *types.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = r
}

// clear drops all state.
func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.report = nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed) > ttl
}

// Store indexes sessions by ID. Expired sessions are swept lazily on
// access; no background goroutine is started.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore returns an empty store whose sessions expire after ttl of
// inactivity.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session with a fresh ID.
func (st *Store) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	st.sweepLocked(now)
	s := newSession(uuid.NewString(), now)
	st.sessions[s.ID] = s
	return s
}

// Get returns the session for id, creating it on first use. An id that is
// not a valid UUID is replaced by a fresh one; callers read the ID back
// from the returned session. The boolean reports whether it was created.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	st.sweepLocked(now)

	if s, ok := st.sessions[id]; ok {
		s.touch(now)
		return s, false
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	s := newSession(id, now)
	st.sessions[id] = s
	return s, true
}

// Lookup returns an existing, unexpired session without creating one.
func (st *Store) Lookup(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	st.sweepLocked(now)
	s, ok := st.sessions[id]
	if ok {
		s.touch(now)
	}
	return s, ok
}

// End clears and removes a session. It reports whether the session existed.
func (st *Store) End(id string) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		s.clear()
	}
	return ok
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sweepLocked(st.now())
	return len(st.sessions)
}

func (st *Store) sweepLocked(now time.Time) {
	for id, s := range st.sessions {
		if s.expired(now, st.ttl) {
			s.clear()
			delete(st.sessions, id)
		}
	}
}
