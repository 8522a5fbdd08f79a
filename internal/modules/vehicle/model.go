// README: Vehicles and vehicle types.
package vehicle

import (
	"time"

	"revline/internal/types"
)

// Type groups vehicles that share a required checklist (sedan, truck, ...).
type Type struct {
	ID   types.ID
	Name string
}

type Vehicle struct {
	ID        types.ID
	ClientID  types.ID
	TypeID    types.ID
	Plate     string
	Make      string
	Model     string
	Year      int
	CreatedAt time.Time
}
