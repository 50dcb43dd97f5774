package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionTTL = 2 * time.Hour

type sessionEntry struct {
	mu      sync.Mutex
	session *QuizSession
	userID  uint
	created time.Time
}

// SessionManager keeps in-progress quiz sessions in memory, keyed by opaque
// tokens. Abandoned sessions are simply pruned; nothing is persisted until a
// session reaches Completed. The per-entry lock serializes transitions, so a
// double-submitted Confirm cannot fire two verification calls.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*sessionEntry)}
}

// Create registers a session for a user and returns its token.
func (m *SessionManager) Create(userID uint, session *QuizSession) string {
	token := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked()
	m.sessions[token] = &sessionEntry{
		session: session,
		userID:  userID,
		created: time.Now(),
	}
	return token
}

// With runs fn against the session under its lock. Unknown tokens and tokens
// owned by another user both resolve to ErrNotFound.
func (m *SessionManager) With(token string, userID uint, fn func(*QuizSession) error) error {
	m.mu.Lock()
	entry, ok := m.sessions[token]
	m.mu.Unlock()

	if !ok || entry.userID != userID {
		return ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

// Remove drops a session, e.g. after its outcome has been consumed.
func (m *SessionManager) Remove(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

func (m *SessionManager) pruneLocked() {
	cutoff := time.Now().Add(-sessionTTL)
	for token, entry := range m.sessions {
		if entry.created.Before(cutoff) {
			delete(m.sessions, token)
		}
	}
}
