// README: Order store backed by PostgreSQL; CAS transitions pair the order
// update and the history insert in one transaction.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"revline/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const orderCols = `id, order_number, client_id, vehicle_id, operator_id, taken_by, taken_at,
	status, status_version, priority, description,
	estimated_cost, final_cost, created_at, start_date, completion_date`

func (s *PGStore) Create(ctx context.Context, o *ServiceOrder) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO service_orders (`+orderCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		string(o.ID), o.OrderNumber, string(o.ClientID), string(o.VehicleID),
		idPtr(o.OperatorID), idPtr(o.TakenBy), o.TakenAt,
		string(o.Status), o.StatusVersion, string(o.Priority), o.Description,
		moneyPtr(o.EstimatedCost), moneyPtr(o.FinalCost),
		o.CreatedAt, o.StartDate, o.CompletionDate,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*ServiceOrder, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orderCols+` FROM service_orders WHERE id = $1`, string(id))
	return scanOrder(row)
}

func (s *PGStore) List(ctx context.Context, sc Scope) ([]*ServiceOrder, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if sc.OperatorID != nil {
		where = append(where, "operator_id = "+arg(string(*sc.OperatorID)))
	}
	if sc.ClientID != nil {
		if len(sc.VehicleIDs) > 0 {
			ids := make([]string, len(sc.VehicleIDs))
			for i, v := range sc.VehicleIDs {
				ids[i] = string(v)
			}
			where = append(where, fmt.Sprintf("(client_id = %s OR vehicle_id = ANY(%s))",
				arg(string(*sc.ClientID)), arg(ids)))
		} else {
			where = append(where, "client_id = "+arg(string(*sc.ClientID)))
		}
	}
	if len(sc.Statuses) > 0 {
		sts := make([]string, len(sc.Statuses))
		for i, st := range sc.Statuses {
			sts[i] = string(st)
		}
		where = append(where, "status = ANY("+arg(sts)+")")
	}

	q := `SELECT ` + orderCols + ` FROM service_orders`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"
	if sc.Limit > 0 {
		q += " LIMIT " + arg(sc.Limit)
	}

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ServiceOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PGStore) Take(ctx context.Context, id types.ID, operatorID types.ID, version int, now time.Time, entry *HistoryEntry) (bool, error) {
	return s.transition(ctx, entry, `
		UPDATE service_orders
		SET operator_id = $2,
		    taken_by = $2,
		    taken_at = $3,
		    status = 'in_progress',
		    status_version = status_version + 1,
		    start_date = COALESCE(start_date, $3)
		WHERE id = $1 AND operator_id IS NULL AND status = 'pending' AND status_version = $4`,
		string(id), string(operatorID), now, version,
	)
}

func (s *PGStore) Release(ctx context.Context, id types.ID, version int, entry *HistoryEntry) (bool, error) {
	return s.transition(ctx, entry, `
		UPDATE service_orders
		SET operator_id = NULL,
		    taken_by = NULL,
		    taken_at = NULL,
		    status = 'pending',
		    status_version = status_version + 1,
		    start_date = NULL,
		    completion_date = NULL
		WHERE id = $1 AND status = 'in_progress' AND status_version = $2`,
		string(id), version,
	)
}

func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, stamp StatusStamp, entry *HistoryEntry) (bool, error) {
	return s.transition(ctx, entry, `
		UPDATE service_orders
		SET status = $2,
		    status_version = status_version + 1,
		    start_date = COALESCE($5, start_date),
		    completion_date = COALESCE($6, completion_date),
		    final_cost = COALESCE($7, final_cost)
		WHERE id = $1 AND status = $3 AND status_version = $4`,
		string(id), string(to), string(from), version,
		stamp.StartDate, stamp.CompletionDate, moneyPtr(stamp.FinalCost),
	)
}

// transition runs the guarded UPDATE and the history INSERT in one
// transaction; either both land or neither does.
func (s *PGStore) transition(ctx context.Context, entry *HistoryEntry, updateSQL string, args ...any) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, updateSQL, args...)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (order_id, previous_status, new_status, changed_by, changed_at, notes, operator_action)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(entry.OrderID), string(entry.PreviousStatus), string(entry.NewStatus),
		string(entry.ChangedBy), entry.ChangedAt, entry.Notes, entry.OperatorAction,
	); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (s *PGStore) History(ctx context.Context, orderID types.ID) ([]HistoryEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, previous_status, new_status, changed_by, changed_at, notes, operator_action
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY changed_at, id`, string(orderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.PreviousStatus, &e.NewStatus,
			&e.ChangedBy, &e.ChangedAt, &e.Notes, &e.OperatorAction); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// VehicleOf satisfies the checklist gate's order lookup.
func (s *PGStore) VehicleOf(ctx context.Context, orderID types.ID) (types.ID, error) {
	var vehicleID string
	err := s.db.QueryRow(ctx, `SELECT vehicle_id FROM service_orders WHERE id = $1`, string(orderID)).
		Scan(&vehicleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return types.ID(vehicleID), nil
}

func scanOrder(row pgx.Row) (*ServiceOrder, error) {
	var (
		o                 ServiceOrder
		operatorID, taken *string
		estimated, final  *int64
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.ClientID, &o.VehicleID, &operatorID, &taken, &o.TakenAt,
		&o.Status, &o.StatusVersion, &o.Priority, &o.Description,
		&estimated, &final, &o.CreatedAt, &o.StartDate, &o.CompletionDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if operatorID != nil {
		id := types.ID(*operatorID)
		o.OperatorID = &id
	}
	if taken != nil {
		id := types.ID(*taken)
		o.TakenBy = &id
	}
	if estimated != nil {
		o.EstimatedCost = &types.Money{Amount: *estimated, Currency: defaultCurrency}
	}
	if final != nil {
		o.FinalCost = &types.Money{Amount: *final, Currency: defaultCurrency}
	}
	return &o, nil
}

const defaultCurrency = "EUR"

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func moneyPtr(v *types.Money) *int64 {
	if v == nil {
		return nil
	}
	n := v.Amount
	return &n
}
