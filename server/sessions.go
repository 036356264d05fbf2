package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/etnz/stress"
)

// sessions keeps evaluated results until they are downloaded or expire.
// Handlers run concurrently, a session is only reachable through its id.
type sessions struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]session
}

type session struct {
	result  stress.Result
	expires time.Time
}

func newSessions(ttl time.Duration) *sessions {
	return &sessions{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]session),
	}
}

// put stores a result and returns its new session id.
func (s *sessions) put(res stress.Result) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = session{result: res, expires: s.now().Add(s.ttl)}
	return id
}

// get returns the result of a live session.
func (s *sessions) get(id string) (stress.Result, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return stress.Result{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || !s.now().Before(e.expires) {
		return stress.Result{}, false
	}
	return e.result, true
}

// evict removes expired sessions and returns how many were removed.
func (s *sessions) evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
