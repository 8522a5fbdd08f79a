// README: In-memory checklist store for tests and DSN-less dev mode.
package checklist

import (
	"context"
	"sort"
	"sync"
	"time"

	"revline/internal/types"
)

type MemStore struct {
	mu    sync.RWMutex
	items map[types.ID]*Item
	rows  map[types.ID][]*OrderItem // keyed by order id
}

func NewMemStore() *MemStore {
	return &MemStore{
		items: make(map[types.ID]*Item),
		rows:  make(map[types.ID][]*OrderItem),
	}
}

func (s *MemStore) CreateItem(_ context.Context, it *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *it
	s.items[it.ID] = &cp
	return nil
}

func (s *MemStore) RequiredForVehicleType(_ context.Context, typeID types.ID) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Item
	for _, it := range s.items {
		if it.VehicleTypeID == typeID && it.IsRequired {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *MemStore) RowsForOrder(_ context.Context, orderID types.ID) ([]OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.rows[orderID]
	out := make([]OrderItem, len(rows))
	for i, r := range rows {
		out[i] = *r
	}
	return out, nil
}

func (s *MemStore) InsertRows(_ context.Context, rows []OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		cp := r
		s.rows[r.OrderID] = append(s.rows[r.OrderID], &cp)
	}
	return nil
}

func (s *MemStore) CompleteRow(_ context.Context, orderID, itemID, by types.ID, notes string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows[orderID] {
		if r.ItemID == itemID {
			r.IsCompleted = true
			r.CompletedBy = &by
			completedAt := at
			r.CompletedAt = &completedAt
			r.Notes = notes
			return true, nil
		}
	}
	return false, nil
}
