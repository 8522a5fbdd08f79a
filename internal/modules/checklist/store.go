// README: Checklist store backed by PostgreSQL.
package checklist

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"revline/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) CreateItem(ctx context.Context, it *Item) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO checklist_items (id, vehicle_type_id, name, category, sort_order, is_required)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(it.ID), string(it.VehicleTypeID), it.Name, it.Category, it.SortOrder, it.IsRequired,
	)
	return err
}

func (s *PGStore) RequiredForVehicleType(ctx context.Context, typeID types.ID) ([]Item, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, vehicle_type_id, name, category, sort_order, is_required
		FROM checklist_items
		WHERE vehicle_type_id = $1 AND is_required
		ORDER BY sort_order`, string(typeID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.VehicleTypeID, &it.Name, &it.Category, &it.SortOrder, &it.IsRequired); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *PGStore) RowsForOrder(ctx context.Context, orderID types.ID) ([]OrderItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, item_id, is_completed, completed_by, completed_at, notes
		FROM service_order_checklists
		WHERE order_id = $1`, string(orderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var r OrderItem
		var by *string
		if err := rows.Scan(&r.ID, &r.OrderID, &r.ItemID, &r.IsCompleted, &by, &r.CompletedAt, &r.Notes); err != nil {
			return nil, err
		}
		if by != nil {
			id := types.ID(*by)
			r.CompletedBy = &id
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PGStore) InsertRows(ctx context.Context, rows []OrderItem) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	for _, r := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO service_order_checklists (id, order_id, item_id, is_completed, notes)
			VALUES ($1, $2, $3, false, '')`,
			string(r.ID), string(r.OrderID), string(r.ItemID),
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PGStore) CompleteRow(ctx context.Context, orderID, itemID, by types.ID, notes string, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE service_order_checklists
		SET is_completed = true, completed_by = $3, completed_at = $4, notes = $5
		WHERE order_id = $1 AND item_id = $2`,
		string(orderID), string(itemID), string(by), at, notes,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
