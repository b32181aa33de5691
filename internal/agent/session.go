package agent

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session tracks one conversation. Sessions live in memory only and reset
// on restart; tickets are the durable record.
type Session struct {
	ID        string
	UserID    string
	StartedAt time.Time
	Messages  int
	Escalated int
}

// SessionManager hands out session ids and keeps per-session counters.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Start creates a new session for the user and returns its id.
func (m *SessionManager) Start(userID string) string {
	if userID == "" {
		userID = "anonymous"
	}
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartedAt: time.Now().UTC(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s.ID
}

// Record updates session counters after a processed message. Unknown ids
// are ignored so callers can pass externally supplied session ids.
func (m *SessionManager) Record(sessionID string, escalated bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return
	}
	s.Messages++
	if escalated {
		s.Escalated++
	}
}

// Get returns a copy of the session, if it exists.
func (m *SessionManager) Get(sessionID string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}
