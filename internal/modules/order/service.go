// README: Lifecycle engine; the sole authority for service order status.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"revline/internal/modules/checklist"
	"revline/internal/modules/identity"
	"revline/internal/types"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrForbidden         = errors.New("forbidden")
	ErrAlreadyAssigned   = errors.New("order already assigned")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("order state conflict")
)

// ChecklistError rejects a completion transition with the gate's detail so
// the caller can render exactly which items are missing or incomplete.
type ChecklistError struct {
	MissingItems []string
	Errors       []string
}

func (e *ChecklistError) Error() string {
	return fmt.Sprintf("checklist incomplete: %d missing, %d not completed",
		len(e.MissingItems), len(e.Errors))
}

func (e *ChecklistError) Unwrap() error { return ErrInvalidTransition }

// StatusStamp carries the side fields a transition sets alongside status.
type StatusStamp struct {
	StartDate      *time.Time
	CompletionDate *time.Time
	FinalCost      *types.Money
}

// Store persists orders and their history. Take, Release and UpdateStatus
// are compare-and-set: they apply the mutation and append the history entry
// in one transaction iff the order still matches (status, version) — and,
// for Take, still has no operator. They return false when the guard fails.
type Store interface {
	Create(ctx context.Context, o *ServiceOrder) error
	Get(ctx context.Context, id types.ID) (*ServiceOrder, error)
	List(ctx context.Context, sc Scope) ([]*ServiceOrder, error)
	Take(ctx context.Context, id types.ID, operatorID types.ID, version int, now time.Time, entry *HistoryEntry) (bool, error)
	Release(ctx context.Context, id types.ID, version int, entry *HistoryEntry) (bool, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, stamp StatusStamp, entry *HistoryEntry) (bool, error)
	History(ctx context.Context, orderID types.ID) ([]HistoryEntry, error)
}

// Gate is the checklist verdict consulted before a completion transition.
type Gate interface {
	Validate(ctx context.Context, orderID types.ID) (checklist.Result, error)
}

// Instantiator materializes an order's checklist rows after creation.
type Instantiator interface {
	InstantiateForOrder(ctx context.Context, orderID, vehicleID types.ID) error
}

// Ownership answers vehicle-ownership questions for creation checks and
// the client visibility clause.
type Ownership interface {
	VehicleOwner(ctx context.Context, vehicleID types.ID) (types.ID, error)
	IDsOwnedBy(ctx context.Context, clientID types.ID) ([]types.ID, error)
}

// StatusChange is published after every successful transition.
type StatusChange struct {
	OrderID     types.ID  `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	From        Status    `json:"from"`
	To          Status    `json:"to"`
	ChangedBy   types.ID  `json:"changed_by"`
	Action      string    `json:"action,omitempty"`
	At          time.Time `json:"at"`
}

// Notifier delivery is best-effort; a failure never fails the transition.
type Notifier interface {
	StatusChanged(ctx context.Context, evt StatusChange) error
}

type Service struct {
	store      Store
	gate       Gate
	checklists Instantiator
	vehicles   Ownership
	notifier   Notifier
	log        *logrus.Logger
	seq        atomic.Int64
}

func NewService(store Store, gate Gate, checklists Instantiator, vehicles Ownership, notifier Notifier, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		store:      store,
		gate:       gate,
		checklists: checklists,
		vehicles:   vehicles,
		notifier:   notifier,
		log:        log,
	}
}

type CreateCommand struct {
	ClientID      types.ID
	VehicleID     types.ID
	Description   string
	Priority      Priority
	EstimatedCost *types.Money
	CreatedBy     types.ID
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*ServiceOrder, error) {
	if cmd.ClientID == "" || cmd.VehicleID == "" || strings.TrimSpace(cmd.Description) == "" {
		return nil, fmt.Errorf("%w: client_id, vehicle_id and description are required", ErrValidation)
	}
	if cmd.Priority == "" {
		cmd.Priority = PriorityNormal
	}
	if _, ok := ParsePriority(string(cmd.Priority)); !ok {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, cmd.Priority)
	}
	owner, err := s.vehicles.VehicleOwner(ctx, cmd.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: vehicle %s", ErrNotFound, cmd.VehicleID)
	}
	if owner != cmd.ClientID {
		return nil, fmt.Errorf("%w: vehicle does not belong to client", ErrValidation)
	}

	now := time.Now().UTC()
	o := &ServiceOrder{
		ID:            types.NewID(),
		OrderNumber:   s.nextOrderNumber(now),
		ClientID:      cmd.ClientID,
		VehicleID:     cmd.VehicleID,
		Status:        StatusPending,
		StatusVersion: 0,
		Priority:      cmd.Priority,
		Description:   cmd.Description,
		EstimatedCost: cmd.EstimatedCost,
		CreatedAt:     now,
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}
	if s.checklists != nil {
		// A failed instantiation is recoverable: the gate reports the items
		// as missing and blocks completion until the rows exist.
		if err := s.checklists.InstantiateForOrder(ctx, o.ID, o.VehicleID); err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).
				Warn("checklist instantiation failed")
		}
	}
	return o, nil
}

// Take assigns a pending, unassigned order to an operator. The unassigned
// check is re-applied atomically in the store; losing the race reports
// AlreadyAssigned, same as finding the order assigned up front.
func (s *Service) Take(ctx context.Context, orderID, operatorID types.ID) error {
	if operatorID == "" {
		return fmt.Errorf("%w: operator id is required", ErrValidation)
	}
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if o.OperatorID != nil {
		return ErrAlreadyAssigned
	}
	if o.Status != StatusPending {
		return fmt.Errorf("%w: cannot take order in status %s", ErrInvalidTransition, o.Status)
	}
	now := time.Now().UTC()
	entry := &HistoryEntry{
		OrderID:        o.ID,
		PreviousStatus: o.Status,
		NewStatus:      StatusInProgress,
		ChangedBy:      operatorID,
		ChangedAt:      now,
		OperatorAction: ActionTake,
	}
	ok, err := s.store.Take(ctx, o.ID, operatorID, o.StatusVersion, now, entry)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyAssigned
	}
	s.notify(ctx, StatusChange{
		OrderID: o.ID, OrderNumber: o.OrderNumber,
		From: o.Status, To: StatusInProgress,
		ChangedBy: operatorID, Action: ActionTake, At: now,
	})
	return nil
}

// Release puts an order back in the pool. Only the assigned operator may
// release, and a reason is mandatory.
func (s *Service) Release(ctx context.Context, orderID, operatorID types.ID, notes string) error {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if o.OperatorID == nil || *o.OperatorID != operatorID {
		return fmt.Errorf("%w: only the assigned operator may release", ErrForbidden)
	}
	if strings.TrimSpace(notes) == "" {
		return fmt.Errorf("%w: release requires a reason", ErrValidation)
	}
	if o.Status != StatusInProgress {
		return fmt.Errorf("%w: cannot release order in status %s", ErrInvalidTransition, o.Status)
	}
	now := time.Now().UTC()
	entry := &HistoryEntry{
		OrderID:        o.ID,
		PreviousStatus: o.Status,
		NewStatus:      StatusPending,
		ChangedBy:      operatorID,
		ChangedAt:      now,
		Notes:          notes,
		OperatorAction: ActionRelease,
	}
	ok, err := s.store.Release(ctx, o.ID, o.StatusVersion, entry)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.notify(ctx, StatusChange{
		OrderID: o.ID, OrderNumber: o.OrderNumber,
		From: o.Status, To: StatusPending,
		ChangedBy: operatorID, Action: ActionRelease, At: now,
	})
	return nil
}

type ChangeStatusCommand struct {
	OrderID   types.ID
	NewStatus Status
	CallerID  types.ID
	Notes     string
	FinalCost *types.Money
}

// ChangeStatus applies a general forward transition. Completion is gated on
// the checklist; moving back to pending is reserved for Release.
func (s *Service) ChangeStatus(ctx context.Context, cmd ChangeStatusCommand) error {
	if _, ok := ParseStatus(string(cmd.NewStatus)); !ok {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, cmd.NewStatus)
	}
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	if o.Status == cmd.NewStatus {
		return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, o.Status)
	}
	if cmd.NewStatus == StatusPending {
		return fmt.Errorf("%w: use release to return an order to pending", ErrInvalidTransition)
	}
	if !CanTransition(o.Status, cmd.NewStatus) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, o.Status, cmd.NewStatus)
	}
	if cmd.NewStatus == StatusCompleted {
		res, err := s.gate.Validate(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("checklist validation: %w", err)
		}
		if !res.IsValid {
			return &ChecklistError{MissingItems: res.MissingItems, Errors: res.Errors}
		}
	}

	now := time.Now().UTC()
	var stamp StatusStamp
	var action string
	switch cmd.NewStatus {
	case StatusInProgress:
		// admin-forced start without a take
		if o.StartDate == nil {
			stamp.StartDate = &now
		}
	case StatusCompleted:
		stamp.CompletionDate = &now
		action = ActionComplete
	case StatusBilled:
		stamp.FinalCost = cmd.FinalCost
	}

	entry := &HistoryEntry{
		OrderID:        o.ID,
		PreviousStatus: o.Status,
		NewStatus:      cmd.NewStatus,
		ChangedBy:      cmd.CallerID,
		ChangedAt:      now,
		Notes:          cmd.Notes,
		OperatorAction: action,
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, cmd.NewStatus, o.StatusVersion, stamp, entry)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.notify(ctx, StatusChange{
		OrderID: o.ID, OrderNumber: o.OrderNumber,
		From: o.Status, To: cmd.NewStatus,
		ChangedBy: cmd.CallerID, Action: action, At: now,
	})
	return nil
}

// Get fetches one order within the caller's visibility; out-of-scope orders
// are indistinguishable from missing ones.
func (s *Service) Get(ctx context.Context, caller Caller, id types.ID) (*ServiceOrder, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var vehicleOwner types.ID
	if caller.Role == identity.RoleClient {
		vehicleOwner, _ = s.vehicles.VehicleOwner(ctx, o.VehicleID)
	}
	if !s.canRead(caller, o, vehicleOwner) {
		return nil, ErrNotFound
	}
	return o, nil
}

// List returns the caller-visible orders, newest first.
func (s *Service) List(ctx context.Context, caller Caller, statusFilter string, limit int) ([]*ServiceOrder, error) {
	var owned []types.ID
	if caller.Role == identity.RoleClient {
		var err error
		owned, err = s.vehicles.IDsOwnedBy(ctx, caller.ID)
		if err != nil {
			return nil, err
		}
	}
	sc, err := ScopeFor(caller, statusFilter, owned, limit)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, sc)
}

// History returns the audit trail, oldest first, for a visible order.
func (s *Service) History(ctx context.Context, caller Caller, orderID types.ID) ([]HistoryEntry, error) {
	if _, err := s.Get(ctx, caller, orderID); err != nil {
		return nil, err
	}
	return s.store.History(ctx, orderID)
}

func (s *Service) notify(ctx context.Context, evt StatusChange) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.StatusChanged(ctx, evt); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"order_id": evt.OrderID,
			"to":       evt.To,
		}).Warn("status change notification failed")
	}
}

// Order numbers embed creation time and a process-local sequence.
func (s *Service) nextOrderNumber(now time.Time) string {
	return fmt.Sprintf("SO-%d-%06d", now.UnixMilli(), s.seq.Add(1))
}
