// README: In-memory user store for tests and DSN-less dev mode.
package identity

import (
	"context"
	"sync"

	"revline/internal/types"
)

type MemStore struct {
	mu     sync.RWMutex
	byID   map[types.ID]*User
	byName map[string]types.ID
}

func NewMemStore() *MemStore {
	return &MemStore{
		byID:   make(map[types.ID]*User),
		byName: make(map[string]types.ID),
	}
}

func (s *MemStore) CreateUser(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[u.Username]; ok {
		return ErrUserExists
	}
	cp := *u
	s.byID[u.ID] = &cp
	s.byName[u.Username] = u.ID
	return nil
}

func (s *MemStore) UserByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *MemStore) UserByID(_ context.Context, id types.ID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}
