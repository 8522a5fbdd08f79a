// README: In-memory order store for tests and DSN-less dev mode. The mutex
// gives the same CAS atomicity the SQL store gets from its transaction.
package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"revline/internal/types"
)

type MemStore struct {
	mu      sync.Mutex
	orders  map[types.ID]*ServiceOrder
	history map[types.ID][]HistoryEntry
	nextID  int64
}

func NewMemStore() *MemStore {
	return &MemStore{
		orders:  make(map[types.ID]*ServiceOrder),
		history: make(map[types.ID][]HistoryEntry),
	}
}

func (s *MemStore) Create(_ context.Context, o *ServiceOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneOrder(o)
	s.orders[o.ID] = cp
	return nil
}

func (s *MemStore) Get(_ context.Context, id types.ID) (*ServiceOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (s *MemStore) List(_ context.Context, sc Scope) ([]*ServiceOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*ServiceOrder
	for _, o := range s.orders {
		if !scopeMatches(sc, o) {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if sc.Limit > 0 && len(out) > sc.Limit {
		out = out[:sc.Limit]
	}
	return out, nil
}

func scopeMatches(sc Scope, o *ServiceOrder) bool {
	if sc.OperatorID != nil {
		if o.OperatorID == nil || *o.OperatorID != *sc.OperatorID {
			return false
		}
	}
	if sc.ClientID != nil {
		match := o.ClientID == *sc.ClientID
		for _, v := range sc.VehicleIDs {
			if o.VehicleID == v {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	if len(sc.Statuses) > 0 {
		found := false
		for _, st := range sc.Statuses {
			if o.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *MemStore) Take(_ context.Context, id types.ID, operatorID types.ID, version int, now time.Time, entry *HistoryEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return false, ErrNotFound
	}
	if o.OperatorID != nil || o.Status != StatusPending || o.StatusVersion != version {
		return false, nil
	}
	op := operatorID
	t := now
	o.OperatorID = &op
	o.TakenBy = &op
	o.TakenAt = &t
	o.Status = StatusInProgress
	o.StatusVersion++
	if o.StartDate == nil {
		o.StartDate = &t
	}
	s.appendEntry(entry)
	return true, nil
}

func (s *MemStore) Release(_ context.Context, id types.ID, version int, entry *HistoryEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return false, ErrNotFound
	}
	if o.Status != StatusInProgress || o.StatusVersion != version {
		return false, nil
	}
	o.OperatorID = nil
	o.TakenBy = nil
	o.TakenAt = nil
	o.Status = StatusPending
	o.StatusVersion++
	o.StartDate = nil
	o.CompletionDate = nil
	s.appendEntry(entry)
	return true, nil
}

func (s *MemStore) UpdateStatus(_ context.Context, id types.ID, from, to Status, version int, stamp StatusStamp, entry *HistoryEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return false, ErrNotFound
	}
	if o.Status != from || o.StatusVersion != version {
		return false, nil
	}
	o.Status = to
	o.StatusVersion++
	if stamp.StartDate != nil {
		t := *stamp.StartDate
		o.StartDate = &t
	}
	if stamp.CompletionDate != nil {
		t := *stamp.CompletionDate
		o.CompletionDate = &t
	}
	if stamp.FinalCost != nil {
		m := *stamp.FinalCost
		o.FinalCost = &m
	}
	s.appendEntry(entry)
	return true, nil
}

func (s *MemStore) History(_ context.Context, orderID types.ID) ([]HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.history[orderID]
	out := make([]HistoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// VehicleOf satisfies the checklist gate's order lookup.
func (s *MemStore) VehicleOf(_ context.Context, orderID types.ID) (types.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return "", ErrNotFound
	}
	return o.VehicleID, nil
}

func (s *MemStore) appendEntry(entry *HistoryEntry) {
	s.nextID++
	e := *entry
	e.ID = s.nextID
	s.history[entry.OrderID] = append(s.history[entry.OrderID], e)
}

func cloneOrder(o *ServiceOrder) *ServiceOrder {
	cp := *o
	cp.OperatorID = copyID(o.OperatorID)
	cp.TakenBy = copyID(o.TakenBy)
	cp.TakenAt = copyTime(o.TakenAt)
	cp.StartDate = copyTime(o.StartDate)
	cp.CompletionDate = copyTime(o.CompletionDate)
	cp.EstimatedCost = copyMoney(o.EstimatedCost)
	cp.FinalCost = copyMoney(o.FinalCost)
	return &cp
}

func copyID(v *types.ID) *types.ID {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func copyMoney(v *types.Money) *types.Money {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
