package users

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationhub/stationhub/internal/platform/db"
	"github.com/stationhub/stationhub/internal/rbac"
	"github.com/stationhub/stationhub/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type storedUser struct {
	User
	PasswordHash string
}

type mockRepository struct {
	users       map[int64]storedUser
	roles       map[int64]rbac.Role
	permissions map[int64]bool
	overrides   map[int64][]rbac.Override
	audits      []shared.AuditLog
	nextID      int64
	txOpts      []pgx.TxOptions

	// Error injection
	serializationFailures int
	insertError           error
	auditError            error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users: make(map[int64]storedUser),
		roles: map[int64]rbac.Role{
			1: {ID: 1, Name: shared.RoleAdmin},
			2: {ID: 2, Name: shared.RoleDirector},
			3: {ID: 3, Name: shared.RoleManager},
		},
		permissions: map[int64]bool{10: true, 11: true},
		overrides:   make(map[int64][]rbac.Override),
		nextID:      100,
	}
}

func (m *mockRepository) addUser(id, roleID int64, username string) {
	m.users[id] = storedUser{User: User{ID: id, Username: username, RoleID: roleID, RoleName: m.roles[roleID].Name}, PasswordHash: "old-hash"}
}

// WithTx applies fn to a staged copy and commits it only on success.
func (m *mockRepository) WithTx(ctx context.Context, opts pgx.TxOptions, fn func(context.Context, TxRepository) error) error {
	m.txOpts = append(m.txOpts, opts)
	tx := &mockTx{mock: m, users: make(map[int64]storedUser), overrides: make(map[int64][]rbac.Override)}
	for k, v := range m.users {
		tx.users[k] = v
	}
	for k, v := range m.overrides {
		tx.overrides[k] = v
	}
	tx.nextID = m.nextID
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if m.serializationFailures > 0 {
		m.serializationFailures--
		return fmt.Errorf("commit: %w: %w", shared.ErrInternal, db.ErrSerialization)
	}
	m.users = tx.users
	m.overrides = tx.overrides
	m.audits = append(m.audits, tx.audits...)
	m.nextID = tx.nextID
	return nil
}

func (m *mockRepository) ListUsers(ctx context.Context, filter ListFilter) ([]User, int, error) {
	var out []User
	for _, u := range m.users {
		if filter.Search != "" && !strings.Contains(u.Username, filter.Search) {
			continue
		}
		out = append(out, u.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return out[start:end], total, nil
}

func (m *mockRepository) GetUser(ctx context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u.User, nil
}

type mockTx struct {
	mock      *mockRepository
	users     map[int64]storedUser
	overrides map[int64][]rbac.Override
	audits    []shared.AuditLog
	nextID    int64
}

func (t *mockTx) InsertUser(ctx context.Context, u NewUser) (int64, error) {
	if t.mock.insertError != nil {
		return 0, t.mock.insertError
	}
	for _, existing := range t.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return 0, shared.ErrConflict
		}
	}
	t.nextID++
	t.users[t.nextID] = storedUser{
		User:         User{ID: t.nextID, Username: u.Username, Email: u.Email, PhoneNumber: u.PhoneNumber, RoleID: u.RoleID, RoleName: t.mock.roles[u.RoleID].Name},
		PasswordHash: u.PasswordHash,
	}
	return t.nextID, nil
}

func (t *mockTx) UpdateUser(ctx context.Context, id int64, c UserChanges) error {
	u, ok := t.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	if c.Username != nil {
		u.Username = *c.Username
	}
	if c.Email != nil {
		u.Email = *c.Email
	}
	if c.PhoneNumber != nil {
		u.PhoneNumber = *c.PhoneNumber
	}
	if c.PasswordHash != nil {
		u.PasswordHash = *c.PasswordHash
	}
	if c.RoleID != nil {
		u.RoleID = *c.RoleID
		u.RoleName = t.mock.roles[*c.RoleID].Name
	}
	t.users[id] = u
	return nil
}

func (t *mockTx) DeleteUser(ctx context.Context, id int64) error {
	if _, ok := t.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(t.users, id)
	delete(t.overrides, id)
	return nil
}

func (t *mockTx) LockUser(ctx context.Context, id int64) (User, error) {
	u, ok := t.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u.User, nil
}

func (t *mockTx) LockAdmins(ctx context.Context) (int, error) {
	n := 0
	for _, u := range t.users {
		if u.RoleName == shared.RoleAdmin {
			n++
		}
	}
	return n, nil
}

func (t *mockTx) GetRole(ctx context.Context, id int64) (rbac.Role, error) {
	r, ok := t.mock.roles[id]
	if !ok {
		return rbac.Role{}, shared.ErrNotFound
	}
	return r, nil
}

func (t *mockTx) CountPermissions(ctx context.Context, ids []int64) (int, error) {
	n := 0
	for _, id := range ids {
		if t.mock.permissions[id] {
			n++
		}
	}
	return n, nil
}

func (t *mockTx) ReplaceUserPermissions(ctx context.Context, userID int64, overrides []rbac.Override) error {
	t.overrides[userID] = overrides
	return nil
}

func (t *mockTx) RecordAudit(ctx context.Context, log shared.AuditLog) error {
	if t.mock.auditError != nil {
		return t.mock.auditError
	}
	t.audits = append(t.audits, log)
	return nil
}

type fakeHasher struct {
	calls int
}

func (f *fakeHasher) Hash(password string) (string, error) {
	f.calls++
	return "hashed:" + password, nil
}

func newTestService(repo *mockRepository) (*Service, *fakeHasher) {
	hasher := &fakeHasher{}
	return NewService(repo, hasher, slog.New(slog.NewTextHandler(io.Discard, nil))), hasher
}

// ============================================================================
// DELETE / LAST ADMIN
// ============================================================================

func TestDeleteUser_LastAdminRefused(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(1, 1, "admin")
	svc, _ := newTestService(repo)

	err := svc.DeleteUser(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrLastAdmin)
	assert.ErrorIs(t, err, shared.ErrPolicyViolation)
	assert.Contains(t, repo.users, int64(1))
	assert.Equal(t, db.Serializable, repo.txOpts[0])
}

func TestDeleteUser_OneOfTwoAdmins(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(1, 1, "admin")
	repo.addUser(2, 1, "admin2")
	svc, _ := newTestService(repo)
	ctx := shared.ContextWithPrincipal(context.Background(), shared.Principal{UserID: 1})

	require.NoError(t, svc.DeleteUser(ctx, 2))
	assert.NotContains(t, repo.users, int64(2))
	require.Len(t, repo.audits, 1)
	assert.Equal(t, int64(1), repo.audits[0].ActorID)
	assert.Equal(t, "users.delete", repo.audits[0].Action)

	err := svc.DeleteUser(ctx, 1)
	assert.ErrorIs(t, err, shared.ErrLastAdmin)
}

func TestDeleteUser_NonAdminWithSingleAdmin(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(1, 1, "admin")
	repo.addUser(5, 3, "manager1")
	svc, _ := newTestService(repo)

	require.NoError(t, svc.DeleteUser(context.Background(), 5))
	assert.NotContains(t, repo.users, int64(5))
}

func TestDeleteUser_NotFound(t *testing.T) {
	svc, _ := newTestService(newMockRepository())

	err := svc.DeleteUser(context.Background(), 404)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteUser_RetriesSerializationFailure(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(1, 1, "admin")
	repo.addUser(2, 1, "admin2")
	repo.serializationFailures = 1
	svc, _ := newTestService(repo)

	require.NoError(t, svc.DeleteUser(context.Background(), 2))
	assert.Len(t, repo.txOpts, 2)
	assert.NotContains(t, repo.users, int64(2))
}

func TestDeleteUser_GivesUpAfterRepeatedSerializationFailures(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(1, 1, "admin")
	repo.addUser(2, 1, "admin2")
	repo.serializationFailures = serializableAttempts
	svc, _ := newTestService(repo)

	err := svc.DeleteUser(context.Background(), 2)
	assert.ErrorIs(t, err, shared.ErrInternal)
	assert.Contains(t, repo.users, int64(2))
}

func TestDeleteUser_AuditFailureRollsBack(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(5, 3, "manager1")
	repo.auditError = errors.New("audit insert failed")
	svc, _ := newTestService(repo)

	require.Error(t, svc.DeleteUser(context.Background(), 5))
	assert.Contains(t, repo.users, int64(5))
}

// ============================================================================
// CREATE / UPDATE
// ============================================================================

func TestCreateUser_WithOverrides(t *testing.T) {
	repo := newMockRepository()
	svc, hasher := newTestService(repo)

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: " newmanager ",
		Email:    "New@Example.com",
		Password: "secret123",
		RoleID:   3,
		Permissions: []rbac.Override{
			{PermissionID: 10, Grant: true},
			{PermissionID: 11, Grant: true},
			{PermissionID: 11, Grant: false},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "newmanager", user.Username)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, shared.RoleManager, user.RoleName)
	assert.Equal(t, 1, hasher.calls)
	assert.Equal(t, "hashed:secret123", repo.users[user.ID].PasswordHash)
	assert.Equal(t, []rbac.Override{{PermissionID: 10, Grant: true}, {PermissionID: 11, Grant: false}}, repo.overrides[user.ID])
}

func TestCreateUser_UnknownRole(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestService(repo)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{Username: "x1", Email: "x@example.com", Password: "secret123", RoleID: 9})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, repo.users)
}

func TestCreateUser_UnknownPermissionRollsBack(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestService(repo)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "x1", Email: "x@example.com", Password: "secret123", RoleID: 3,
		Permissions: []rbac.Override{{PermissionID: 999, Grant: true}},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, repo.users)
}

func TestCreateUser_Conflict(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(5, 3, "manager1")
	svc, _ := newTestService(repo)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{Username: "manager1", Email: "m@example.com", Password: "secret123", RoleID: 3})
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestUpdateUser_PasswordOnlyWhenSupplied(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(5, 3, "manager1")
	svc, hasher := newTestService(repo)

	_, err := svc.UpdateUser(context.Background(), 5, UpdateUserRequest{PhoneNumber: "+62811"})
	require.NoError(t, err)
	assert.Equal(t, 0, hasher.calls)
	assert.Equal(t, "old-hash", repo.users[5].PasswordHash)
	assert.Equal(t, "+62811", repo.users[5].PhoneNumber)

	_, err = svc.UpdateUser(context.Background(), 5, UpdateUserRequest{Password: "brand-new-pass"})
	require.NoError(t, err)
	assert.Equal(t, 1, hasher.calls)
	assert.Equal(t, "hashed:brand-new-pass", repo.users[5].PasswordHash)
}

func TestUpdateUser_LastAdminDemotionRefused(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(1, 1, "admin")
	svc, _ := newTestService(repo)

	_, err := svc.UpdateUser(context.Background(), 1, UpdateUserRequest{RoleID: 3})
	assert.ErrorIs(t, err, shared.ErrLastAdminDemotion)
	assert.Equal(t, int64(1), repo.users[1].RoleID)
}

func TestUpdateUser_DemotionWithAnotherAdmin(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(1, 1, "admin")
	repo.addUser(2, 1, "admin2")
	svc, _ := newTestService(repo)

	user, err := svc.UpdateUser(context.Background(), 2, UpdateUserRequest{RoleID: 2})
	require.NoError(t, err)
	assert.Equal(t, shared.RoleDirector, user.RoleName)
}

func TestUpdateUser_NotFound(t *testing.T) {
	svc, _ := newTestService(newMockRepository())

	_, err := svc.UpdateUser(context.Background(), 404, UpdateUserRequest{Username: "ghost"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListUsers_Pagination(t *testing.T) {
	repo := newMockRepository()
	for i := int64(1); i <= 5; i++ {
		repo.addUser(i, 3, fmt.Sprintf("user%d", i))
	}
	svc, _ := newTestService(repo)

	page, err := svc.ListUsers(context.Background(), ListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	assert.Equal(t, int64(3), page.Users[0].ID)
	assert.Equal(t, 5, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)

	empty, err := svc.ListUsers(context.Background(), ListFilter{Search: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, empty.Users)
	assert.Empty(t, empty.Users)
}
