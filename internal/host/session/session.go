// Package session manages live form session lifecycle. A session ties an
// authenticated actor to one WebSocket connection and at most one running
// form; the manager enforces age and idle limits so the sweeper can time
// abandoned forms out.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hearthbot/hearth/forms"
)

// Session holds per-connection state.
type Session struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Cluster   string    `json:"cluster,omitempty"`
	Roles     []string  `json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	mu         sync.Mutex
	lastActive time.Time
	form       *forms.Form
	cancel     context.CancelFunc
}

// New creates a session for an actor. cancel unwinds the owning
// connection; Expire invokes it.
func New(actor, cluster string, roles []string, cancel context.CancelFunc) *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.New().String(),
		Actor:      actor,
		Cluster:    cluster,
		Roles:      roles,
		CreatedAt:  now,
		lastActive: now,
		cancel:     cancel,
	}
}

// Touch updates the last activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// LastActive returns the last activity timestamp.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Bind attaches a form run to the session. It fails while an earlier run
// is still unresolved, so a session drives one form at a time.
func (s *Session) Bind(f *forms.Form) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form != nil && !s.form.Status().Resolved() {
		return false
	}
	s.form = f
	return true
}

// Form returns the bound form, nil if none was started yet.
func (s *Session) Form() *forms.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Expire unwinds the session's connection. The host observes its context
// closing, times the running form out and journals the outcome.
func (s *Session) Expire() {
	if s.cancel != nil {
		s.cancel()
	}
}

// IsExpired reports whether the session exceeded maxAge. Zero disables
// the limit.
func (s *Session) IsExpired(maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return time.Since(s.CreatedAt) > maxAge
}

// IsIdle reports whether the session has been inactive longer than
// timeout. Zero disables the limit.
func (s *Session) IsIdle(timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}
	return time.Since(s.LastActive()) > timeout
}

// Manager handles session creation, lookup, and expiry sweeps.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxAge      time.Duration
	idleTimeout time.Duration
}

// NewManager creates a session manager with the given limits. Zero
// disables a limit.
func NewManager(maxAge, idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		maxAge:      maxAge,
		idleTimeout: idleTimeout,
	}
}

// Create registers a new session for an actor and returns it.
func (m *Manager) Create(actor, cluster string, roles []string, cancel context.CancelFunc) *Session {
	s := New(actor, cluster, roles, cancel)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get retrieves a session by ID. Returns nil if not found or past its
// limits; a session past its limits is removed and expired.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout) {
		m.Remove(id)
		s.Expire()
		return nil
	}
	return s
}

// Remove deletes a session without expiring it. Hosts call it from their
// connection teardown.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes every session past its limits and returns them so the
// caller can expire each one. Called periodically by the worker.
func (m *Manager) Sweep() []*Session {
	m.mu.Lock()
	var swept []*Session
	for id, s := range m.sessions {
		if s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout) {
			delete(m.sessions, id)
			swept = append(swept, s)
		}
	}
	m.mu.Unlock()
	return swept
}
