// README: Vehicle service: registration and ownership lookups.
package vehicle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"revline/internal/types"
)

var (
	ErrNotFound   = errors.New("vehicle not found")
	ErrBadRequest = errors.New("bad request")
)

type Store interface {
	Create(ctx context.Context, v *Vehicle) error
	Get(ctx context.Context, id types.ID) (*Vehicle, error)
	ListByClient(ctx context.Context, clientID types.ID) ([]*Vehicle, error)
	ListAll(ctx context.Context) ([]*Vehicle, error)
	CreateType(ctx context.Context, t *Type) error
	GetType(ctx context.Context, id types.ID) (*Type, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type CreateCommand struct {
	ClientID types.ID
	TypeID   types.ID
	Plate    string
	Make     string
	Model    string
	Year     int
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Vehicle, error) {
	if cmd.ClientID == "" || cmd.TypeID == "" || cmd.Plate == "" {
		return nil, fmt.Errorf("%w: client_id, type_id and plate are required", ErrBadRequest)
	}
	if _, err := s.store.GetType(ctx, cmd.TypeID); err != nil {
		return nil, err
	}
	v := &Vehicle{
		ID:        types.NewID(),
		ClientID:  cmd.ClientID,
		TypeID:    cmd.TypeID,
		Plate:     cmd.Plate,
		Make:      cmd.Make,
		Model:     cmd.Model,
		Year:      cmd.Year,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByClient(ctx context.Context, clientID types.ID) ([]*Vehicle, error) {
	return s.store.ListByClient(ctx, clientID)
}

func (s *Service) ListAll(ctx context.Context) ([]*Vehicle, error) {
	return s.store.ListAll(ctx)
}

func (s *Service) CreateType(ctx context.Context, name string) (*Type, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrBadRequest)
	}
	t := &Type{ID: types.NewID(), Name: name}
	if err := s.store.CreateType(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// VehicleOwner satisfies the order engine's ownership lookup.
func (s *Service) VehicleOwner(ctx context.Context, vehicleID types.ID) (types.ID, error) {
	v, err := s.store.Get(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	return v.ClientID, nil
}

// IDsOwnedBy feeds the visibility filter's vehicle clause for clients.
func (s *Service) IDsOwnedBy(ctx context.Context, clientID types.ID) ([]types.ID, error) {
	vs, err := s.store.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(vs))
	for i, v := range vs {
		ids[i] = v.ID
	}
	return ids, nil
}

// TypeOf satisfies the checklist gate's vehicle-type lookup.
func (s *Service) TypeOf(ctx context.Context, vehicleID types.ID) (types.ID, error) {
	v, err := s.store.Get(ctx, vehicleID)
	if err != nil {
		return "", err
	}
	return v.TypeID, nil
}
