package users

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationhub/stationhub/internal/rbac"
	"github.com/stationhub/stationhub/internal/shared"
)

type staticResolver struct {
	set rbac.EffectiveSet
}

func (s staticResolver) ResolvePermissions(ctx context.Context, userID int64) (rbac.EffectiveSet, error) {
	return s.set, nil
}

type stubPermissions struct {
	replacedIDs       []int64
	replacedOverrides []rbac.Override
}

func (s *stubPermissions) UserOverrides(ctx context.Context, userID int64) ([]rbac.UserPermission, error) {
	if userID == 404 {
		return nil, shared.ErrNotFound
	}
	return nil, nil
}

func (s *stubPermissions) ReplaceUserPermissions(ctx context.Context, userID int64, ids []int64) ([]rbac.UserPermission, error) {
	s.replacedIDs = ids
	return []rbac.UserPermission{{Permission: rbac.Permission{ID: 10}, Override: true}}, nil
}

func (s *stubPermissions) ReplaceUserOverrides(ctx context.Context, userID int64, overrides []rbac.Override) ([]rbac.UserPermission, error) {
	s.replacedOverrides = overrides
	return nil, nil
}

func newUsersRouter(t *testing.T, repo *mockRepository, set rbac.EffectiveSet) (http.Handler, *stubPermissions) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, _ := newTestService(repo)
	perms := &stubPermissions{}
	mw := rbac.Middleware{Resolver: staticResolver{set: set}, Logger: logger}
	h := NewHandler(logger, svc, perms, mw)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithPrincipal(req.Context(), shared.Principal{UserID: 1, RoleName: shared.RoleAdmin})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/api/users", h.MountRoutes)
	return r, perms
}

func fullAccess() rbac.EffectiveSet {
	return rbac.Resolve([]rbac.Permission{{ID: 1, Resource: shared.ResourceAdmin, Action: shared.ActionManage}}, nil)
}

func TestHandler_DeleteLastAdminConflict(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(1, 1, "admin")
	router, _ := newUsersRouter(t, repo, fullAccess())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/users/1", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Cannot delete the last admin user")
}

func TestHandler_DeleteRequiresPermission(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(5, 3, "manager1")
	readOnly := rbac.Resolve([]rbac.Permission{{ID: 2, Resource: shared.ResourceUsers, Action: shared.ActionRead}}, nil)
	router, _ := newUsersRouter(t, repo, readOnly)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/users/5", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, repo.users, int64(5))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/5", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_CreateUser(t *testing.T) {
	repo := newMockRepository()
	router, _ := newUsersRouter(t, repo, fullAccess())

	body := `{"username":"director1","email":"d1@example.com","password":"secret123","roleId":2,"permissions":[{"permissionId":10,"override":true}]}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "director1", user.Username)
	assert.NotContains(t, w.Body.String(), "secret123")
	assert.NotContains(t, w.Body.String(), "hashed")
}

func TestHandler_CreateUserValidation(t *testing.T) {
	router, _ := newUsersRouter(t, newMockRepository(), fullAccess())

	body := `{"username":"d","email":"not-an-email","password":"short","roleId":0}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, w.Code)
	for _, field := range []string{"username", "email", "password", "roleId"} {
		assert.Contains(t, w.Body.String(), field)
	}
}

func TestHandler_ReplacePermissions(t *testing.T) {
	router, perms := newUsersRouter(t, newMockRepository(), fullAccess())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/users/5/permissions", strings.NewReader(`{"permissions":[10,11]}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{10, 11}, perms.replacedIDs)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/users/5/permissions", strings.NewReader(`{"overrides":[{"permissionId":10,"override":false}]}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []rbac.Override{{PermissionID: 10, Grant: false}}, perms.replacedOverrides)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandler_GetPermissionsUnknownUser(t *testing.T) {
	router, _ := newUsersRouter(t, newMockRepository(), fullAccess())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/404/permissions", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func directorAccess() rbac.EffectiveSet {
	return rbac.Resolve([]rbac.Permission{
		{ID: 2, Resource: shared.ResourceUsers, Action: shared.ActionCreate},
		{ID: 3, Resource: shared.ResourceUsers, Action: shared.ActionRead},
		{ID: 4, Resource: shared.ResourceUsers, Action: shared.ActionUpdate},
	}, nil)
}

func TestHandler_UpdateRoleChangeRequiresPermissionsGrant(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(5, 3, "manager1")
	router, _ := newUsersRouter(t, repo, directorAccess())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/users/5", strings.NewReader(`{"roleId":1}`)))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, int64(3), repo.users[5].RoleID)
	assert.Empty(t, repo.audits)
}

func TestHandler_UpdateSameRoleAllowedWithoutPermissionsGrant(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(5, 3, "manager1")
	router, _ := newUsersRouter(t, repo, directorAccess())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/users/5", strings.NewReader(`{"roleId":3,"email":"m1@example.com"}`)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "m1@example.com", repo.users[5].Email)
}

func TestHandler_UpdateRoleChangeWithPermissionsGrant(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(5, 3, "manager1")
	router, _ := newUsersRouter(t, repo, fullAccess())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/users/5", strings.NewReader(`{"roleId":2}`)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(2), repo.users[5].RoleID)
}

func TestHandler_CreateWithOverridesRequiresPermissionsGrant(t *testing.T) {
	repo := newMockRepository()
	router, _ := newUsersRouter(t, repo, directorAccess())

	body := `{"username":"manager2","email":"m2@example.com","password":"secret123","roleId":3,"permissions":[{"permissionId":10,"override":true}]}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body)))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, repo.users)
	assert.Empty(t, repo.overrides)
}

func TestHandler_CreateWithoutOverridesAllowedForDirector(t *testing.T) {
	repo := newMockRepository()
	router, _ := newUsersRouter(t, repo, directorAccess())

	body := `{"username":"manager2","email":"m2@example.com","password":"secret123","roleId":3}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, repo.users, 1)
}
