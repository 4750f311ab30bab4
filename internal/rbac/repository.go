package rbac

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stationhub/stationhub/internal/platform/db"
	"github.com/stationhub/stationhub/internal/shared"
)

// Repository defines persistence operations for roles, permissions and their
// associations.
type Repository interface {
	WithTx(ctx context.Context, opts pgx.TxOptions, fn func(context.Context, TxRepository) error) error

	ListPermissions(ctx context.Context) ([]Permission, error)
	GetPermission(ctx context.Context, id int64) (Permission, error)
	CreatePermission(ctx context.Context, input PermissionInput) (Permission, error)
	UpdatePermission(ctx context.Context, id int64, input PermissionInput) (Permission, error)
	DeletePermission(ctx context.Context, id int64) error
}

// TxRepository exposes the statements that must run inside one transaction.
type TxRepository interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	LockRole(ctx context.Context, id int64) (Role, error)
	LockUser(ctx context.Context, userID int64) error
	UserRole(ctx context.Context, userID int64) (Role, error)
	RolePermissions(ctx context.Context, roleID int64) ([]Permission, error)
	UserOverrides(ctx context.Context, userID int64) ([]UserPermission, error)
	CountPermissions(ctx context.Context, ids []int64) (int, error)

	ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
	ReplaceUserPermissions(ctx context.Context, userID int64, overrides []Override) error
	RecordAudit(ctx context.Context, log shared.AuditLog) error

	AcquireSeedLock(ctx context.Context) error
	CountRoles(ctx context.Context) (int, error)
	InsertRole(ctx context.Context, name, description string) (Role, error)
	EnsurePermission(ctx context.Context, input PermissionInput) (Permission, error)
	UserExists(ctx context.Context, username string) (bool, error)
	InsertUser(ctx context.Context, roleID int64, account AdminAccount) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// WithTx runs fn inside a transaction started with opts.
func (r *PGRepository) WithTx(ctx context.Context, opts pgx.TxOptions, fn func(context.Context, TxRepository) error) error {
	return db.WithTxOptions(ctx, r.pool, opts, func(tx pgx.Tx) error {
		return fn(ctx, &pgTx{tx: tx})
	})
}

const permissionColumns = `id, name, resource, action, COALESCE(description, '')`

// ListPermissions returns all permissions ordered by name.
func (r *PGRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+permissionColumns+` FROM permissions ORDER BY name`)
	if err != nil {
		return nil, db.MapError("rbac: list permissions", err)
	}
	perms, err := pgx.CollectRows(rows, scanPermission)
	return perms, db.MapError("rbac: list permissions", err)
}

// GetPermission fetches a permission by ID.
func (r *PGRepository) GetPermission(ctx context.Context, id int64) (Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE id = $1`, id)
	if err != nil {
		return Permission{}, db.MapError("rbac: get permission", err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPermission)
	return p, db.MapError("rbac: get permission", err)
}

// CreatePermission inserts a new permission.
func (r *PGRepository) CreatePermission(ctx context.Context, input PermissionInput) (Permission, error) {
	rows, err := r.pool.Query(ctx, `INSERT INTO permissions (name, resource, action, description)
		VALUES ($1, $2, $3, $4) RETURNING `+permissionColumns,
		input.Name, input.Resource, input.Action, input.Description)
	if err != nil {
		return Permission{}, db.MapError("rbac: create permission", err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPermission)
	return p, db.MapError("rbac: create permission", err)
}

// UpdatePermission updates an existing permission.
func (r *PGRepository) UpdatePermission(ctx context.Context, id int64, input PermissionInput) (Permission, error) {
	rows, err := r.pool.Query(ctx, `UPDATE permissions
		SET name = $2, resource = $3, action = $4, description = $5, updated_at = NOW()
		WHERE id = $1 RETURNING `+permissionColumns,
		id, input.Name, input.Resource, input.Action, input.Description)
	if err != nil {
		return Permission{}, db.MapError("rbac: update permission", err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPermission)
	return p, db.MapError("rbac: update permission", err)
}

// DeletePermission removes a permission; role and user associations cascade.
func (r *PGRepository) DeletePermission(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return db.MapError("rbac: delete permission", err)
	}
	if tag.RowsAffected() == 0 {
		return db.MapError("rbac: delete permission", pgx.ErrNoRows)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

// NewTxRepository binds the RBAC statements to a transaction owned by another
// package, so user writes and override writes commit together.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &pgTx{tx: tx}
}

const roleColumns = `id, name, COALESCE(description, ''), created_at, updated_at`

func (t *pgTx) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := t.tx.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY id`)
	if err != nil {
		return nil, db.MapError("rbac: list roles", err)
	}
	roles, err := pgx.CollectRows(rows, scanRole)
	return roles, db.MapError("rbac: list roles", err)
}

func (t *pgTx) GetRole(ctx context.Context, id int64) (Role, error) {
	return t.oneRole(ctx, "rbac: get role", `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
}

func (t *pgTx) LockRole(ctx context.Context, id int64) (Role, error) {
	return t.oneRole(ctx, "rbac: lock role", `SELECT `+roleColumns+` FROM roles WHERE id = $1 FOR UPDATE`, id)
}

func (t *pgTx) UserRole(ctx context.Context, userID int64) (Role, error) {
	return t.oneRole(ctx, "rbac: user role", `SELECT r.id, r.name, COALESCE(r.description, ''), r.created_at, r.updated_at
		FROM users u JOIN roles r ON r.id = u.role_id WHERE u.id = $1`, userID)
}

func (t *pgTx) oneRole(ctx context.Context, op, query string, args ...any) (Role, error) {
	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return Role{}, db.MapError(op, err)
	}
	role, err := pgx.CollectExactlyOneRow(rows, scanRole)
	return role, db.MapError(op, err)
}

func (t *pgTx) LockUser(ctx context.Context, userID int64) error {
	var id int64
	err := t.tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	return db.MapError("rbac: lock user", err)
}

func (t *pgTx) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	rows, err := t.tx.Query(ctx, `SELECT p.id, p.name, p.resource, p.action, COALESCE(p.description, '')
		FROM role_permissions rp JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1 ORDER BY p.id`, roleID)
	if err != nil {
		return nil, db.MapError("rbac: role permissions", err)
	}
	perms, err := pgx.CollectRows(rows, scanPermission)
	return perms, db.MapError("rbac: role permissions", err)
}

func (t *pgTx) UserOverrides(ctx context.Context, userID int64) ([]UserPermission, error) {
	rows, err := t.tx.Query(ctx, `SELECT p.id, p.name, p.resource, p.action, COALESCE(p.description, ''), up.override
		FROM user_permissions up JOIN permissions p ON p.id = up.permission_id
		WHERE up.user_id = $1 ORDER BY p.id`, userID)
	if err != nil {
		return nil, db.MapError("rbac: user overrides", err)
	}
	overrides, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (UserPermission, error) {
		var up UserPermission
		err := row.Scan(&up.ID, &up.Name, &up.Resource, &up.Action, &up.Description, &up.Override)
		return up, err
	})
	return overrides, db.MapError("rbac: user overrides", err)
}

func (t *pgTx) CountPermissions(ctx context.Context, ids []int64) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM permissions WHERE id = ANY($1)`, ids).Scan(&n)
	return n, db.MapError("rbac: count permissions", err)
}

func (t *pgTx) ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return db.MapError("rbac: clear role permissions", err)
	}
	if len(permissionIDs) == 0 {
		return nil
	}
	_, err := t.tx.Exec(ctx, `INSERT INTO role_permissions (role_id, permission_id)
		SELECT $1, unnest($2::bigint[])`, roleID, permissionIDs)
	return db.MapError("rbac: insert role permissions", err)
}

func (t *pgTx) ReplaceUserPermissions(ctx context.Context, userID int64, overrides []Override) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, userID); err != nil {
		return db.MapError("rbac: clear user permissions", err)
	}
	if len(overrides) == 0 {
		return nil
	}
	ids := make([]int64, len(overrides))
	grants := make([]bool, len(overrides))
	for i, o := range overrides {
		ids[i] = o.PermissionID
		grants[i] = o.Grant
	}
	_, err := t.tx.Exec(ctx, `INSERT INTO user_permissions (user_id, permission_id, override)
		SELECT $1, pid, grant_flag FROM unnest($2::bigint[], $3::boolean[]) AS o(pid, grant_flag)`, userID, ids, grants)
	return db.MapError("rbac: insert user permissions", err)
}

func (t *pgTx) RecordAudit(ctx context.Context, log shared.AuditLog) error {
	return db.MapError("rbac: audit", shared.RecordAudit(ctx, t.tx, log))
}

// seedLockKey identifies the advisory lock serialising first-boot seeding.
const seedLockKey int64 = 0x73746e687562

func (t *pgTx) AcquireSeedLock(ctx context.Context) error {
	_, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, seedLockKey)
	return db.MapError("rbac: seed lock", err)
}

func (t *pgTx) CountRoles(ctx context.Context) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM roles`).Scan(&n)
	return n, db.MapError("rbac: count roles", err)
}

func (t *pgTx) InsertRole(ctx context.Context, name, description string) (Role, error) {
	return t.oneRole(ctx, "rbac: insert role", `INSERT INTO roles (name, description) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING `+roleColumns, name, description)
}

func (t *pgTx) EnsurePermission(ctx context.Context, input PermissionInput) (Permission, error) {
	rows, err := t.tx.Query(ctx, `INSERT INTO permissions (name, resource, action, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING `+permissionColumns,
		input.Name, input.Resource, input.Action, input.Description)
	if err != nil {
		return Permission{}, db.MapError("rbac: ensure permission", err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPermission)
	return p, db.MapError("rbac: ensure permission", err)
}

func (t *pgTx) UserExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, db.MapError("rbac: user exists", err)
}

func (t *pgTx) InsertUser(ctx context.Context, roleID int64, account AdminAccount) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO users (username, email, password_hash, phone_number, role_id)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5) RETURNING id`,
		account.Username, strings.ToLower(account.Email), account.PasswordHash, account.PhoneNumber, roleID).Scan(&id)
	return id, db.MapError("rbac: insert user", err)
}

func scanPermission(row pgx.CollectableRow) (Permission, error) {
	var p Permission
	err := row.Scan(&p.ID, &p.Name, &p.Resource, &p.Action, &p.Description)
	return p, err
}

func scanRole(row pgx.CollectableRow) (Role, error) {
	var r Role
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

var (
	_ Repository   = (*PGRepository)(nil)
	_ TxRepository = (*pgTx)(nil)
)
