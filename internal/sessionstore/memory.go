package sessionstore

import (
	"context"
	"sync"
	"time"

	"surveychat/internal/model"
)

// memoryStore keeps session records in a mutex-guarded map. Used by tests
// and single-process local runs.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

func (s *memoryStore) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.sessions[sessionID]
	if !exists {
		return nil, nil
	}
	return cloneSession(stored), nil
}

func (s *memoryStore) Put(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.SessionID]; exists {
		return ErrAlreadyExists
	}

	session.Version = 1
	s.sessions[session.SessionID] = cloneSession(session)
	return nil
}

func (s *memoryStore) UpdateMessages(ctx context.Context, sessionID string, messages []model.Message, updatedAt time.Time, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.sessions[sessionID]
	if !exists {
		return ErrNotFound
	}
	if stored.Version != version {
		return ErrVersionConflict
	}

	stored.Messages = append([]model.Message(nil), messages...)
	stored.UpdatedAt = updatedAt
	stored.Version++
	return nil
}

func (s *memoryStore) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, stored := range s.sessions {
		if stored.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	return nil
}

func cloneSession(src *model.Session) *model.Session {
	dst := *src
	dst.Messages = append([]model.Message(nil), src.Messages...)
	return &dst
}
