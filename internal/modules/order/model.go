// README: Service order aggregate, status machine, and history entries.
package order

import (
	"time"

	"revline/internal/types"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBilled     Status = "billed"
	StatusClosed     Status = "closed"
)

// ParseStatus accepts only stored status values; "active" is a query-side
// alias handled by the visibility filter, never a stored status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusCompleted, StatusBilled, StatusClosed:
		return Status(s), true
	}
	return "", false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func ParsePriority(s string) (Priority, bool) {
	switch Priority(s) {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return Priority(s), true
	}
	return "", false
}

type ServiceOrder struct {
	ID             types.ID
	OrderNumber    string
	ClientID       types.ID
	VehicleID      types.ID
	OperatorID     *types.ID
	TakenBy        *types.ID
	TakenAt        *time.Time
	Status         Status
	StatusVersion  int
	Priority       Priority
	Description    string
	EstimatedCost  *types.Money
	FinalCost      *types.Money
	CreatedAt      time.Time
	StartDate      *time.Time
	CompletionDate *time.Time
}

// Operator action tags recorded on history entries.
const (
	ActionTake     = "take"
	ActionRelease  = "release"
	ActionComplete = "complete"
)

// HistoryEntry is an immutable audit record; one per successful transition.
type HistoryEntry struct {
	ID             int64
	OrderID        types.ID
	PreviousStatus Status
	NewStatus      Status
	ChangedBy      types.ID
	ChangedAt      time.Time
	Notes          string
	OperatorAction string
}

// AllowedTransitions represents the order state flow as code. The only
// backward edge, in_progress → pending, is reserved for the release action.
var AllowedTransitions = map[Status][]Status{
	StatusPending:    {StatusInProgress},
	StatusInProgress: {StatusCompleted, StatusPending},
	StatusCompleted:  {StatusBilled},
	StatusBilled:     {StatusClosed},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
