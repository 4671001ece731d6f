package memory

import (
	"context"
	"sync"

	"github.com/aretw0/sheetpilot/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Session
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Session),
	}
}

// Save persists the session in memory.
func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	copied := cloneSession(session)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[session.ID] = copied
	return nil
}

// Load retrieves the session from memory.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	// Copy on read so callers can't mutate the stored clipboard through the pointer
	return cloneSession(session), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns stored sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}

func cloneSession(s *domain.Session) *domain.Session {
	ret := *s
	if s.Clipboard.Cells != nil {
		ret.Clipboard.Cells = make([][]any, len(s.Clipboard.Cells))
		for i, row := range s.Clipboard.Cells {
			ret.Clipboard.Cells[i] = append([]any(nil), row...)
			if row != nil && ret.Clipboard.Cells[i] == nil {
				ret.Clipboard.Cells[i] = []any{}
			}
		}
	}
	if s.Sealed != nil {
		ret.Sealed = append([]byte(nil), s.Sealed...)
	}
	return &ret
}
