// README: Checklist service: template management, instantiation, completion.
package checklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"revline/internal/types"
)

var (
	ErrNotFound   = errors.New("checklist item not found")
	ErrBadRequest = errors.New("bad request")
)

type Store interface {
	CreateItem(ctx context.Context, it *Item) error
	RequiredForVehicleType(ctx context.Context, typeID types.ID) ([]Item, error)
	RowsForOrder(ctx context.Context, orderID types.ID) ([]OrderItem, error)
	InsertRows(ctx context.Context, rows []OrderItem) error
	CompleteRow(ctx context.Context, orderID, itemID, by types.ID, notes string, at time.Time) (bool, error)
}

// OrderInfo resolves an order to its vehicle. Implemented by the order store.
type OrderInfo interface {
	VehicleOf(ctx context.Context, orderID types.ID) (types.ID, error)
}

// VehicleInfo resolves a vehicle to its type. Implemented by the vehicle service.
type VehicleInfo interface {
	TypeOf(ctx context.Context, vehicleID types.ID) (types.ID, error)
}

type Service struct {
	store    Store
	orders   OrderInfo
	vehicles VehicleInfo
}

func NewService(store Store, orders OrderInfo, vehicles VehicleInfo) *Service {
	return &Service{store: store, orders: orders, vehicles: vehicles}
}

type CreateItemCommand struct {
	VehicleTypeID types.ID
	Name          string
	Category      string
	SortOrder     int
	IsRequired    bool
}

func (s *Service) CreateItem(ctx context.Context, cmd CreateItemCommand) (*Item, error) {
	if cmd.VehicleTypeID == "" || cmd.Name == "" {
		return nil, fmt.Errorf("%w: vehicle_type_id and name are required", ErrBadRequest)
	}
	it := &Item{
		ID:            types.NewID(),
		VehicleTypeID: cmd.VehicleTypeID,
		Name:          cmd.Name,
		Category:      cmd.Category,
		SortOrder:     cmd.SortOrder,
		IsRequired:    cmd.IsRequired,
	}
	if err := s.store.CreateItem(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// InstantiateForOrder materializes one row per required item of the
// vehicle's type. Called once by the engine right after order creation.
func (s *Service) InstantiateForOrder(ctx context.Context, orderID, vehicleID types.ID) error {
	typeID, err := s.vehicles.TypeOf(ctx, vehicleID)
	if err != nil {
		return err
	}
	required, err := s.store.RequiredForVehicleType(ctx, typeID)
	if err != nil {
		return err
	}
	if len(required) == 0 {
		return nil
	}
	rows := make([]OrderItem, len(required))
	for i, it := range required {
		rows[i] = OrderItem{
			ID:      types.NewID(),
			OrderID: orderID,
			ItemID:  it.ID,
		}
	}
	return s.store.InsertRows(ctx, rows)
}

func (s *Service) RowsForOrder(ctx context.Context, orderID types.ID) ([]OrderItem, error) {
	return s.store.RowsForOrder(ctx, orderID)
}

func (s *Service) CompleteItem(ctx context.Context, orderID, itemID, by types.ID, notes string) error {
	ok, err := s.store.CompleteRow(ctx, orderID, itemID, by, notes, time.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
