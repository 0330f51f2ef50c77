package services

import (
	"fmt"
	"sync"
	"time"

	"bookstore/internal/models"

	"github.com/google/uuid"
)

// Session is one logged-in user's working state. The cart belongs to the
// session and is never shared with another one.
type Session struct {
	ID        string
	User      *models.User
	Cart      *models.Cart
	CreatedAt time.Time
	ExpiresAt time.Time // zero means the session does not expire
}

// Expired reports whether the session's lifetime is over at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionManager keeps the live sessions.
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

// Open starts a session with an empty cart for the user. A positive ttl
// sets when the session expires.
func (m *SessionManager) Open(user *models.User, ttl time.Duration) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	s := &Session{
		ID:        uuid.New().String(),
		User:      user,
		Cart:      models.NewCart(),
		CreatedAt: now,
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	m.sessions[s.ID] = s
	return s
}

// Get returns a live session by ID. Expired sessions are not returned.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrSessionNotFound, id)
	}
	if s.Expired(time.Now()) {
		return nil, fmt.Errorf("%w: %s has expired", models.ErrSessionNotFound, id)
	}
	return s, nil
}

// Close forgets the session. It reports whether the session was live.
func (m *SessionManager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// CloseExpired forgets every session expired at now and returns them.
func (m *SessionManager) CloseExpired(now time.Time) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []*Session
	for id, s := range m.sessions {
		if s.Expired(now) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	return expired
}

// CloseAll forgets every session and returns them.
func (m *SessionManager) CloseAll() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	return sessions
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func requireSession(s *Session) error {
	if s == nil || s.User == nil {
		return models.ErrNotAuthenticated
	}
	return nil
}
