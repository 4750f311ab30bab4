package auth

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stationhub/stationhub/internal/platform/db"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userQuery = `SELECT u.id, u.username, u.email, COALESCE(u.phone_number, ''), u.password_hash,
	r.id, r.name, COALESCE(r.description, ''), u.created_at, u.updated_at
	FROM users u JOIN roles r ON r.id = u.role_id`

// FindByUsername fetches a user by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (User, error) {
	return r.one(ctx, "auth: find by username", userQuery+` WHERE u.username = $1`, username)
}

// FindByID fetches a user by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (User, error) {
	return r.one(ctx, "auth: find by id", userQuery+` WHERE u.id = $1`, id)
}

func (r *PGRepository) one(ctx context.Context, op, query string, args ...any) (User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return User{}, db.MapError(op, err)
	}
	user, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (User, error) {
		var u User
		err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PhoneNumber, &u.PasswordHash,
			&u.RoleID, &u.RoleName, &u.RoleDescription, &u.CreatedAt, &u.UpdatedAt)
		return u, err
	})
	return user, db.MapError(op, err)
}

var _ Repository = (*PGRepository)(nil)
