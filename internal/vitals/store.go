package vitals

import (
	"container/list"
	"sync"

	"mindbot-vr/internal/triage"
)

const DefaultMaxSessions = 10000

type entry struct {
	sessionID string
	state     triage.VitalsSample
}

// Store keeps the unrounded simulator state per session. When more than
// maxSessions sessions are tracked the least recently sampled one is
// dropped and restarts from a fresh initial state on its next sample.
type Store struct {
	mu          sync.Mutex
	sim         *Simulator
	maxSessions int
	order       *list.List
	sessions    map[string]*list.Element
}

func NewStore(sim *Simulator, maxSessions int) *Store {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Store{
		sim:         sim,
		maxSessions: maxSessions,
		order:       list.New(),
		sessions:    make(map[string]*list.Element),
	}
}

// Sample advances the session's state and returns the rounded reading.
func (s *Store) Sample(sessionID string) triage.VitalsSample {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.sessions[sessionID]
	if !ok {
		el = s.order.PushFront(&entry{sessionID: sessionID, state: s.sim.Initial()})
		s.sessions[sessionID] = el
		s.evict()
	} else {
		s.order.MoveToFront(el)
	}

	e := el.Value.(*entry)
	e.state = s.sim.Next(e.state)
	return Round(e.state)
}

func (s *Store) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.sessions[sessionID]; ok {
		s.order.Remove(el)
		delete(s.sessions, sessionID)
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) evict() {
	for s.order.Len() > s.maxSessions {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.sessions, oldest.Value.(*entry).sessionID)
	}
}
