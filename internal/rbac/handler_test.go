package rbac

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationhub/stationhub/internal/shared"
)

func newTestRouter(t *testing.T, repo *mockRepository, set EffectiveSet) http.Handler {
	t.Helper()
	svc := NewService(repo, discardLogger())
	mw := Middleware{Resolver: &stubResolver{sets: map[int64]EffectiveSet{1: set}}, Logger: discardLogger()}
	h := NewHandler(discardLogger(), svc, mw)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithPrincipal(req.Context(), shared.Principal{UserID: 1})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/roles", h.MountRoleRoutes)
	r.Route("/permissions", h.MountPermissionRoutes)
	return r
}

func adminSet() EffectiveSet {
	return Resolve([]Permission{{ID: 900, Resource: shared.ResourceAdmin, Action: shared.ActionManage}}, nil)
}

func TestHandler_ReplaceRolePermissions(t *testing.T) {
	repo := newManagerFixture()
	router := newTestRouter(t, repo, adminSet())

	req := httptest.NewRequest(http.MethodPut, "/roles/3/permissions", strings.NewReader(`{"permissions":[1,3]}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var role Role
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &role))
	assert.Len(t, role.Permissions, 2)
	assert.Equal(t, []int64{1, 3}, repo.state.rolePerms[3])
}

func TestHandler_ReplaceRolePermissionsForbidden(t *testing.T) {
	repo := newManagerFixture()
	router := newTestRouter(t, repo, Resolve(managerBaseline(), nil))

	req := httptest.NewRequest(http.MethodPut, "/roles/3/permissions", strings.NewReader(`{"permissions":[3]}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, []int64{1, 2}, repo.state.rolePerms[3])
}

func TestHandler_ReplaceRolePermissionsUnknownPermission(t *testing.T) {
	router := newTestRouter(t, newManagerFixture(), adminSet())

	req := httptest.NewRequest(http.MethodPut, "/roles/3/permissions", strings.NewReader(`{"permissions":[404]}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ListRoles(t *testing.T) {
	router := newTestRouter(t, newManagerFixture(), Resolve(managerBaseline(), nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/roles", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var roles []Role
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roles))
	require.Len(t, roles, 1)
	assert.Equal(t, "manager", roles[0].Name)
}

func TestHandler_CreatePermission(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(t, repo, adminSet())

	body := `{"name":"export_reports","resource":"reports","action":"export","description":"Can export"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/permissions", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, repo.state.permissions, 1)
}

func TestHandler_CreatePermissionValidation(t *testing.T) {
	router := newTestRouter(t, newMockRepository(), adminSet())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/permissions", strings.NewReader(`{"name":"x"}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "resource")
}

func TestHandler_CreatePermissionConflict(t *testing.T) {
	router := newTestRouter(t, newManagerFixture(), adminSet())

	body := `{"name":"dup","resource":"stations","action":"read"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/permissions", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_DeletePermission(t *testing.T) {
	repo := newManagerFixture()
	router := newTestRouter(t, repo, adminSet())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/permissions/2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, repo.state.permissions, int64(2))
}

func TestHandler_BadID(t *testing.T) {
	router := newTestRouter(t, newManagerFixture(), adminSet())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/permissions/abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
