// README: Role-scoped read visibility for service orders.
package order

import (
	"fmt"

	"revline/internal/modules/identity"
	"revline/internal/types"
)

// Caller is the explicit identity threaded into every engine call. The
// engine never reads ambient request state.
type Caller struct {
	ID   types.ID
	Role identity.Role
}

// StatusActive is a query alias for clients meaning pending or in_progress.
const StatusActive = "active"

// Scope is the storage-level restriction computed from a caller's role.
// OperatorID is an equality clause. ClientID and VehicleIDs together form
// one OR clause: client_id = ClientID OR vehicle_id IN VehicleIDs.
type Scope struct {
	OperatorID *types.ID
	ClientID   *types.ID
	VehicleIDs []types.ID
	Statuses   []Status
	Limit      int
}

// ScopeFor computes the read scope for a caller. Unrecognized roles fail
// closed to the caller's own client records, never the unrestricted view.
func ScopeFor(caller Caller, statusFilter string, ownedVehicles []types.ID, limit int) (Scope, error) {
	sc := Scope{Limit: limit}

	isClient := caller.Role == identity.RoleClient
	switch {
	case statusFilter == "":
		// no status restriction
	case isClient && statusFilter == StatusActive:
		sc.Statuses = []Status{StatusPending, StatusInProgress}
	default:
		st, ok := ParseStatus(statusFilter)
		if !ok {
			return Scope{}, fmt.Errorf("%w: unknown status %q", ErrValidation, statusFilter)
		}
		sc.Statuses = []Status{st}
	}

	switch caller.Role {
	case identity.RoleAdmin, identity.RoleSuperAdmin:
		// unrestricted
	case identity.RoleOperator:
		id := caller.ID
		sc.OperatorID = &id
	case identity.RoleClient:
		id := caller.ID
		sc.ClientID = &id
		if len(ownedVehicles) > 0 {
			sc.VehicleIDs = ownedVehicles
		}
	default:
		id := caller.ID
		sc.ClientID = &id
	}
	return sc, nil
}

// canRead reports whether a caller may see one specific order. ownerOf
// resolves a vehicle's owning client and is only consulted for clients.
func (s *Service) canRead(caller Caller, o *ServiceOrder, vehicleOwner types.ID) bool {
	switch caller.Role {
	case identity.RoleAdmin, identity.RoleSuperAdmin:
		return true
	case identity.RoleOperator:
		return o.OperatorID != nil && *o.OperatorID == caller.ID
	case identity.RoleClient:
		return o.ClientID == caller.ID || vehicleOwner == caller.ID
	default:
		return o.ClientID == caller.ID
	}
}
