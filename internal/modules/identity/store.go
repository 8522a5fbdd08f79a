// README: User store backed by PostgreSQL.
package identity

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

func (s *PGStore) CreateUser(ctx context.Context, u *User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(u.ID), u.Username, u.Email, u.PasswordHash, string(u.Role), u.Active, u.CreatedAt,
	)
	return err
}

func (s *PGStore) UserByUsername(ctx context.Context, username string) (*User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, role, active, created_at
		FROM users WHERE username = $1`, username))
}

func (s *PGStore) UserByID(ctx context.Context, id types.ID) (*User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, role, active, created_at
		FROM users WHERE id = $1`, string(id)))
}

func (s *PGStore) scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.Active, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}
