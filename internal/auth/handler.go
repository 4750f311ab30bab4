package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stationhub/stationhub/internal/platform/httpx"
	"github.com/stationhub/stationhub/internal/rbac"
	"github.com/stationhub/stationhub/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	resolver  rbac.Resolver
	validator *httpx.Validator
	throttle  []func(http.Handler) http.Handler
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, resolver rbac.Resolver) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, resolver: resolver, validator: httpx.NewValidator()}
}

// ThrottleLogin installs mw in front of the login route mounted by MountRoutes.
func (h *Handler) ThrottleLogin(mw func(http.Handler) http.Handler) {
	h.throttle = append(h.throttle, mw)
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.throttle...).Post("/login", h.Login)
	r.With(h.Authenticate).Post("/logout", h.logout)
	r.With(h.Authenticate).Get("/profile", h.Me)
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// Login exchanges credentials for a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := h.validator.Struct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, "login", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// Me returns the caller's profile with effective permissions.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrTokenInvalid)
		return
	}
	set, err := rbac.EffectiveFromContext(r.Context(), h.resolver)
	if err != nil {
		h.fail(w, "profile", err)
		return
	}
	profile, err := h.service.Profile(r.Context(), p.UserID, set)
	if err != nil {
		h.fail(w, "profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrTokenInvalid)
		return
	}
	if err := h.service.Logout(r.Context(), p); err != nil {
		h.fail(w, "logout", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
