// README: Checklist templates per vehicle type and per-order completion rows.
package checklist

import (
	"time"

	"revline/internal/types"
)

// Item is a template step scoped to a vehicle type.
type Item struct {
	ID            types.ID
	VehicleTypeID types.ID
	Name          string
	Category      string
	SortOrder     int
	IsRequired    bool
}

// OrderItem is one (order, item) pairing; created when an order's checklist
// is instantiated, completed by an operator as work progresses.
type OrderItem struct {
	ID          types.ID
	OrderID     types.ID
	ItemID      types.ID
	IsCompleted bool
	CompletedBy *types.ID
	CompletedAt *time.Time
	Notes       string
}

// Result is the gate's verdict. IsValid is true iff both lists are empty.
type Result struct {
	IsValid      bool     `json:"is_valid"`
	MissingItems []string `json:"missing_items"`
	Errors       []string `json:"errors"`
}
