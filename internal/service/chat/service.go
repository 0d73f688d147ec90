package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/sales-analyst/backend/internal/model/chat"
)

var (
	ErrPersonaRequired = errors.New("persona id is required")
	ErrSessionNotFound = errors.New("session not found")
)

// Service keeps the transcripts of live websocket conversations in memory.
// A transcript exists only between CreateSession and EndSession.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	entries  map[string][]chat.Entry
}

// NewService bootstraps an empty in-memory store.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		entries:  make(map[string][]chat.Entry),
	}
}

// CreateSession provisions an anonymous session bound to a persona.
func (s *Service) CreateSession(_ context.Context, personaID string) (chat.Session, error) {
	if personaID == "" {
		return chat.Session{}, ErrPersonaRequired
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		PersonaID: personaID,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.entries[session.ID] = make([]chat.Entry, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// AppendMessage records a turn at the end of the session transcript.
func (s *Service) AppendMessage(_ context.Context, sessionID string, message chat.Message) (chat.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return chat.Entry{}, ErrSessionNotFound
	}

	entry := chat.Entry{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	s.entries[sessionID] = append(s.entries[sessionID], entry)
	return entry, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// LoadTranscript returns the session's messages in append order.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	messages := make([]chat.Message, len(entries))
	for i, e := range entries {
		messages[i] = e.Message
	}
	return messages, nil
}

// EndSession discards the session and its transcript.
func (s *Service) EndSession(_ context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	delete(s.entries, sessionID)
	s.mu.Unlock()
}

// ActiveSessions reports how many conversations are currently open.
func (s *Service) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
