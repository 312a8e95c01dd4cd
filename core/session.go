package core

import "sync"

// SessionSnapshot is the process-wide observable session state.
type SessionSnapshot struct {
	IsAuthenticated bool
	CurrentUser     *User
}

// SessionState publishes {isAuthenticated, currentUser} to any number of
// subscribers. It is written only through Establish and TearDown, which
// cover the four legal transitions (login success, registration success,
// refresh success, logout/refresh failure); no other write path exists,
// so observers can never see a divergent partial update.
type SessionState struct {
	mu      sync.RWMutex
	current SessionSnapshot
	subs    map[int]func(SessionSnapshot)
	nextID  int
}

func NewSessionState() *SessionState {
	return &SessionState{subs: make(map[int]func(SessionSnapshot))}
}

// Current returns the latest published snapshot.
func (s *SessionState) Current() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers a listener and returns its unsubscribe function.
// The listener is immediately invoked with the current snapshot so late
// subscribers do not miss state.
func (s *SessionState) Subscribe(fn func(SessionSnapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	snap := s.current
	s.mu.Unlock()

	fn(snap)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Establish marks the session authenticated as the given user. Covers the
// login-success, registration-success and refresh-success transitions.
func (s *SessionState) Establish(u *User) {
	s.publish(SessionSnapshot{IsAuthenticated: true, CurrentUser: u})
}

// TearDown marks the session unauthenticated. Covers the logout and
// refresh-failure transitions.
func (s *SessionState) TearDown() {
	s.publish(SessionSnapshot{})
}

// publish stores the snapshot and notifies subscribers. Listeners are
// called outside the lock so a subscriber may unsubscribe from within its
// own callback.
func (s *SessionState) publish(snap SessionSnapshot) {
	s.mu.Lock()
	s.current = snap
	listeners := make([]func(SessionSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
