// README: Vehicle store backed by PostgreSQL.
package vehicle

import (
	"context"
	"errors"

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

const vehicleCols = `id, client_id, type_id, plate, make, model, year, created_at`

func (s *PGStore) Create(ctx context.Context, v *Vehicle) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO vehicles (`+vehicleCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(v.ID), string(v.ClientID), string(v.TypeID),
		v.Plate, v.Make, v.Model, v.Year, v.CreatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	row := s.db.QueryRow(ctx, `SELECT `+vehicleCols+` FROM vehicles WHERE id = $1`, string(id))
	return scanVehicle(row)
}

func (s *PGStore) ListByClient(ctx context.Context, clientID types.ID) ([]*Vehicle, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+vehicleCols+` FROM vehicles
		WHERE client_id = $1 ORDER BY created_at DESC`, string(clientID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func (s *PGStore) ListAll(ctx context.Context) ([]*Vehicle, error) {
	rows, err := s.db.Query(ctx, `SELECT `+vehicleCols+` FROM vehicles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func (s *PGStore) CreateType(ctx context.Context, t *Type) error {
	_, err := s.db.Exec(ctx, `INSERT INTO vehicle_types (id, name) VALUES ($1, $2)`,
		string(t.ID), t.Name)
	return err
}

func (s *PGStore) GetType(ctx context.Context, id types.ID) (*Type, error) {
	var t Type
	err := s.db.QueryRow(ctx, `SELECT id, name FROM vehicle_types WHERE id = $1`, string(id)).
		Scan(&t.ID, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	var v Vehicle
	err := row.Scan(&v.ID, &v.ClientID, &v.TypeID, &v.Plate, &v.Make, &v.Model, &v.Year, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVehicles(rows pgx.Rows) ([]*Vehicle, error) {
	var out []*Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.ClientID, &v.TypeID, &v.Plate, &v.Make, &v.Model, &v.Year, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}
