// README: Completion gate; pure read-only verdict over checklist state.
package checklist

import (
	"context"
	"fmt"

	"revline/internal/types"
)

// Validate reports whether every required item for the order's vehicle type
// has a completed row. It never mutates anything and is safe to call
// repeatedly (used for gating and for "can I complete this" UI checks).
func (s *Service) Validate(ctx context.Context, orderID types.ID) (Result, error) {
	vehicleID, err := s.orders.VehicleOf(ctx, orderID)
	if err != nil {
		return Result{}, err
	}
	typeID, err := s.vehicles.TypeOf(ctx, vehicleID)
	if err != nil {
		return Result{}, err
	}
	required, err := s.store.RequiredForVehicleType(ctx, typeID)
	if err != nil {
		return Result{}, err
	}
	rows, err := s.store.RowsForOrder(ctx, orderID)
	if err != nil {
		return Result{}, err
	}

	byItem := make(map[types.ID]OrderItem, len(rows))
	for _, r := range rows {
		byItem[r.ItemID] = r
	}

	res := Result{MissingItems: []string{}, Errors: []string{}}
	for _, it := range required {
		row, ok := byItem[it.ID]
		if !ok {
			res.MissingItems = append(res.MissingItems, it.Name)
			continue
		}
		if !row.IsCompleted {
			res.Errors = append(res.Errors, fmt.Sprintf("item %q is not completed", it.Name))
		}
	}
	res.IsValid = len(res.MissingItems) == 0 && len(res.Errors) == 0
	return res, nil
}
