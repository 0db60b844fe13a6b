package session

import (
	"context"
	"sync"

	"github.com/guia-app/guia/internal/client/models"
)

// MemoryStore keeps the session for the lifetime of the process only.
type MemoryStore struct {
	mu   sync.Mutex
	snap *Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap == nil {
		return nil, nil
	}
	return &Snapshot{Credentials: s.snap.Credentials, User: s.snap.User.Clone()}, nil
}

func (s *MemoryStore) Save(_ context.Context, creds models.Credentials, user *models.User) error {
	if err := checkSave(creds, user); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &Snapshot{Credentials: creds, User: user.Clone()}
	return nil
}

func (s *MemoryStore) SaveUser(_ context.Context, user *models.User) error {
	if user == nil {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return ErrNoSession
	}
	s.snap.User = user.Clone()
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	return nil
}
