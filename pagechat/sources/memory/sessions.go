// Package memory keeps live chat sessions in process memory. Nothing here
// survives a restart.
package memory

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"pagechat/pagechat/services/llm"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one websocket connection's lifetime and its history.
type Session struct {
	ID        string
	CreatedAt time.Time
	Turns     []llm.Message
}

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session), now: time.Now}
}

// Create registers an empty session. The id is the creation time in unix
// milliseconds with a short random suffix.
func (s *SessionStore) Create() Session {
	created := s.now()
	sess := &Session{
		ID:        fmt.Sprintf("%d-%s", created.UnixMilli(), uuid.NewString()[:8]),
		CreatedAt: created,
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return Session{ID: sess.ID, CreatedAt: sess.CreatedAt}
}

// Append adds turns to the end of the session history.
func (s *SessionStore) Append(id string, turns ...llm.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("append to %s: %w", id, ErrSessionNotFound)
	}
	sess.Turns = append(sess.Turns, turns...)
	return nil
}

// History returns a copy of the session's turns.
func (s *SessionStore) History(id string) ([]llm.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	out := make([]llm.Message, len(sess.Turns))
	copy(out, sess.Turns)
	return out, true
}

// Delete drops the session and hands back what it held.
func (s *SessionStore) Delete(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	delete(s.sessions, id)
	return *sess, true
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
