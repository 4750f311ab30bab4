package stations

import (
	"context"
	"encoding/json"
	"errors"
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
	core "github.com/stationhub/stationhub/internal/shared"
)

type stubResolver struct {
	set rbac.EffectiveSet
	err error
}

func (s stubResolver) ResolvePermissions(ctx context.Context, userID int64) (rbac.EffectiveSet, error) {
	return s.set, s.err
}

func newRouter(repo *mockRepository, resolver stubResolver) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, NewService(repo), rbac.Middleware{Resolver: resolver, Logger: logger})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := core.ContextWithPrincipal(req.Context(), core.Principal{UserID: 9, RoleName: "manager"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/api/stations", h.MountRoutes)
	return r
}

func stationGrants(actions ...string) stubResolver {
	perms := make([]rbac.Permission, 0, len(actions))
	for i, a := range actions {
		perms = append(perms, rbac.Permission{ID: int64(i + 1), Resource: core.ResourceStations, Action: a})
	}
	return stubResolver{set: rbac.Resolve(perms, nil)}
}

func TestHandler_ListFiltersByCompany(t *testing.T) {
	repo := newMockRepository()
	repo.stations[1] = Station{ID: 1, Name: "A", CompanyID: 1}
	repo.stations[2] = Station{ID: 2, Name: "B", CompanyID: 2}
	router := newRouter(repo, stationGrants(core.ActionRead))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stations?companyId=2", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items []Station `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "B", body.Items[0].Name)
}

func TestHandler_CreateWithUpdateOnlyIsForbidden(t *testing.T) {
	router := newRouter(newMockRepository(), stationGrants(core.ActionUpdate))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/stations",
		strings.NewReader(`{"name":"A","companyId":1,"tin":"1","street":"x","cityId":1}`)))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_CreateMissingFields(t *testing.T) {
	router := newRouter(newMockRepository(), stationGrants(core.ActionCreate))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/stations", strings.NewReader(`{"name":"A"}`)))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"tin"`)
	assert.Contains(t, w.Body.String(), `"cityId"`)
}

func TestHandler_ResolverFailureIsInternal(t *testing.T) {
	router := newRouter(newMockRepository(), stubResolver{err: errors.New("db down")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stations/1", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
