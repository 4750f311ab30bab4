package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stationhub/stationhub/internal/audit"
	"github.com/stationhub/stationhub/internal/auth"
	"github.com/stationhub/stationhub/internal/masterdata/companies"
	"github.com/stationhub/stationhub/internal/masterdata/locations"
	"github.com/stationhub/stationhub/internal/masterdata/stations"
	"github.com/stationhub/stationhub/internal/observability"
	"github.com/stationhub/stationhub/internal/platform/httpx"
	"github.com/stationhub/stationhub/internal/rbac"
	"github.com/stationhub/stationhub/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Pool             *pgxpool.Pool
	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	RBACHandler      *rbac.Handler
	CompaniesHandler *companies.Handler
	StationsHandler  *stations.Handler
	LocationsHandler *locations.Handler
	AuditHandler     *audit.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}
	if params.Config == nil || !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", healthHandler(params))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	loginLimit := LoginLimiter(params.Config)
	params.AuthHandler.ThrottleLogin(loginLimit)
	authn := params.AuthHandler.Authenticate

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", params.AuthHandler.MountRoutes)

		api.Route("/users", func(u chi.Router) {
			u.With(loginLimit).Post("/login", params.AuthHandler.Login)
			u.Group(func(p chi.Router) {
				p.Use(authn)
				p.Get("/me", params.AuthHandler.Me)
				if params.UsersHandler != nil {
					params.UsersHandler.MountRoutes(p)
				}
			})
		})

		api.Group(func(p chi.Router) {
			p.Use(authn)
			if params.RBACHandler != nil {
				p.Route("/roles", params.RBACHandler.MountRoleRoutes)
				p.Route("/permissions", params.RBACHandler.MountPermissionRoutes)
			}
			if params.CompaniesHandler != nil {
				p.Route("/companies", params.CompaniesHandler.MountRoutes)
			}
			if params.StationsHandler != nil {
				p.Route("/stations", params.StationsHandler.MountRoutes)
			}
			if params.LocationsHandler != nil {
				p.Route("/locations", params.LocationsHandler.MountRoutes)
			}
			if params.AuditHandler != nil {
				p.Route("/audit", params.AuditHandler.MountRoutes)
			}
		})
	})

	return r
}

func healthHandler(params RouterParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if params.Pool != nil {
			if err := params.Pool.Ping(r.Context()); err != nil {
				params.Logger.Warn("health check: postgres unreachable", slog.Any("error", err))
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
