package capture

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/go-scripts/teamscribe/internal/scroll"
)

// Session is one capture run.
type Session struct {
	ID      string
	Started time.Time

	stop     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	state    scroll.State
	captured int
	degraded bool
}

func newSession(now time.Time) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Started: now,
		stop:    make(chan struct{}),
		state:   scroll.StateIdle,
	}
}

// Stop asks the run to end after the current iteration. Safe to call more
// than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Session) setState(state scroll.State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) update(p scroll.Progress) {
	s.mu.Lock()
	s.state = p.State
	s.captured = p.Captured
	s.mu.Unlock()
}

func (s *Session) finish(state scroll.State, captured int) {
	s.mu.Lock()
	s.state = state
	s.captured = captured
	s.mu.Unlock()
}

func (s *Session) status(active bool) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Active:    active,
		SessionID: s.ID,
		State:     s.state,
		Captured:  s.captured,
		Degraded:  s.degraded,
		Started:   s.Started,
	}
}

// Status is a snapshot of the engine's current or most recent session.
type Status struct {
	Active    bool         `json:"active"`
	SessionID string       `json:"sessionId,omitempty"`
	State     scroll.State `json:"state"`
	Captured  int          `json:"captured"`
	Degraded  bool         `json:"degraded"`
	Started   time.Time    `json:"started,omitzero"`
}
