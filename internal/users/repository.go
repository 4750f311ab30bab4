package users

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stationhub/stationhub/internal/platform/db"
	"github.com/stationhub/stationhub/internal/rbac"
	"github.com/stationhub/stationhub/internal/shared"
)

// Repository defines user persistence.
type Repository interface {
	WithTx(ctx context.Context, opts pgx.TxOptions, fn func(context.Context, TxRepository) error) error
	ListUsers(ctx context.Context, filter ListFilter) ([]User, int, error)
	GetUser(ctx context.Context, id int64) (User, error)
}

// TxRepository exposes user writes that must share one transaction.
type TxRepository interface {
	InsertUser(ctx context.Context, u NewUser) (int64, error)
	UpdateUser(ctx context.Context, id int64, changes UserChanges) error
	DeleteUser(ctx context.Context, id int64) error
	LockUser(ctx context.Context, id int64) (User, error)
	LockAdmins(ctx context.Context) (int, error)
	GetRole(ctx context.Context, id int64) (rbac.Role, error)
	CountPermissions(ctx context.Context, ids []int64) (int, error)
	ReplaceUserPermissions(ctx context.Context, userID int64, overrides []rbac.Override) error
	RecordAudit(ctx context.Context, log shared.AuditLog) error
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// WithTx runs fn inside a transaction started with opts.
func (r *PGRepository) WithTx(ctx context.Context, opts pgx.TxOptions, fn func(context.Context, TxRepository) error) error {
	return db.WithTxOptions(ctx, r.pool, opts, func(tx pgx.Tx) error {
		return fn(ctx, &pgTx{tx: tx, TxRepository: rbac.NewTxRepository(tx)})
	})
}

const userColumns = `u.id, u.username, u.email, COALESCE(u.phone_number, ''), u.role_id, r.name, u.created_at, u.updated_at`

// ListUsers returns a page of users and the total match count.
func (r *PGRepository) ListUsers(ctx context.Context, filter ListFilter) ([]User, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, "(u.username ILIKE $1 OR u.email ILIKE $1)")
	}
	if filter.RoleID > 0 {
		args = append(args, filter.RoleID)
		where = append(where, "u.role_id = $"+strconv.Itoa(len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users u WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, db.MapError("users: count", err)
	}
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := `SELECT ` + userColumns + ` FROM users u JOIN roles r ON r.id = u.role_id WHERE ` + cond +
		` ORDER BY u.id LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.MapError("users: list", err)
	}
	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, 0, db.MapError("users: list", err)
	}
	return users, total, nil
}

// GetUser fetches a user by id.
func (r *PGRepository) GetUser(ctx context.Context, id int64) (User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users u JOIN roles r ON r.id = u.role_id WHERE u.id = $1`, id)
	if err != nil {
		return User{}, db.MapError("users: get", err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	return u, db.MapError("users: get", err)
}

type pgTx struct {
	tx pgx.Tx
	rbac.TxRepository
}

func (t *pgTx) InsertUser(ctx context.Context, u NewUser) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO users (username, email, password_hash, phone_number, role_id)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5) RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.PhoneNumber, u.RoleID).Scan(&id)
	return id, db.MapError("users: insert", err)
}

func (t *pgTx) UpdateUser(ctx context.Context, id int64, c UserChanges) error {
	tag, err := t.tx.Exec(ctx, `UPDATE users SET
		username = COALESCE($2, username),
		email = COALESCE($3, email),
		phone_number = COALESCE($4, phone_number),
		password_hash = COALESCE($5, password_hash),
		role_id = COALESCE($6, role_id),
		updated_at = NOW()
		WHERE id = $1`, id, c.Username, c.Email, c.PhoneNumber, c.PasswordHash, c.RoleID)
	if err != nil {
		return db.MapError("users: update", err)
	}
	if tag.RowsAffected() == 0 {
		return db.MapError("users: update", pgx.ErrNoRows)
	}
	return nil
}

func (t *pgTx) DeleteUser(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return db.MapError("users: delete", err)
	}
	if tag.RowsAffected() == 0 {
		return db.MapError("users: delete", pgx.ErrNoRows)
	}
	return nil
}

func (t *pgTx) LockUser(ctx context.Context, id int64) (User, error) {
	rows, err := t.tx.Query(ctx, `SELECT `+userColumns+` FROM users u JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1 FOR UPDATE OF u`, id)
	if err != nil {
		return User{}, db.MapError("users: lock", err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	return u, db.MapError("users: lock", err)
}

// LockAdmins locks every admin-role user row and returns how many there are.
// FOR UPDATE cannot be combined with an aggregate, so rows are counted here.
func (t *pgTx) LockAdmins(ctx context.Context) (int, error) {
	rows, err := t.tx.Query(ctx, `SELECT u.id FROM users u JOIN roles r ON r.id = u.role_id
		WHERE r.name = $1 FOR UPDATE OF u`, shared.RoleAdmin)
	if err != nil {
		return 0, db.MapError("users: lock admins", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return 0, db.MapError("users: lock admins", err)
	}
	return len(ids), nil
}

func scanUser(row pgx.CollectableRow) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PhoneNumber, &u.RoleID, &u.RoleName, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

var (
	_ Repository   = (*PGRepository)(nil)
	_ TxRepository = (*pgTx)(nil)
)
