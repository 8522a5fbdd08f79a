// README: In-memory vehicle store for tests and DSN-less dev mode.
package vehicle

import (
	"context"
	"sort"
	"sync"

	"revline/internal/types"
)

type MemStore struct {
	mu       sync.RWMutex
	vehicles map[types.ID]*Vehicle
	vtypes   map[types.ID]*Type
}

func NewMemStore() *MemStore {
	return &MemStore{
		vehicles: make(map[types.ID]*Vehicle),
		vtypes:   make(map[types.ID]*Type),
	}
}

func (s *MemStore) Create(_ context.Context, v *Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.vehicles[v.ID] = &cp
	return nil
}

func (s *MemStore) Get(_ context.Context, id types.ID) (*Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *MemStore) ListByClient(_ context.Context, clientID types.ID) ([]*Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Vehicle
	for _, v := range s.vehicles {
		if v.ClientID == clientID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemStore) ListAll(_ context.Context) ([]*Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		cp := *v
		out = append(out, &cp)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemStore) CreateType(_ context.Context, t *Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.vtypes[t.ID] = &cp
	return nil
}

func (s *MemStore) GetType(_ context.Context, id types.ID) (*Type, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.vtypes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func sortNewestFirst(vs []*Vehicle) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].CreatedAt.After(vs[j].CreatedAt) })
}
