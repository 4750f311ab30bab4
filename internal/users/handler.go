package users

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stationhub/stationhub/internal/platform/httpx"
	"github.com/stationhub/stationhub/internal/rbac"
	"github.com/stationhub/stationhub/internal/shared"
)

// PermissionManager reads and replaces per-user overrides.
type PermissionManager interface {
	UserOverrides(ctx context.Context, userID int64) ([]rbac.UserPermission, error)
	ReplaceUserPermissions(ctx context.Context, userID int64, permissionIDs []int64) ([]rbac.UserPermission, error)
	ReplaceUserOverrides(ctx context.Context, userID int64, overrides []rbac.Override) ([]rbac.UserPermission, error)
}

// Handler manages user management endpoints.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	permissions PermissionManager
	rbac        rbac.Middleware
	validator   *httpx.Validator
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, permissions PermissionManager, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, permissions: permissions, rbac: rbac, validator: httpx.NewValidator()}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(shared.ResourceUsers, shared.ActionRead)).Get("/", h.listUsers)
	r.With(h.rbac.Require(shared.ResourceUsers, shared.ActionCreate)).Post("/", h.createUser)
	r.With(h.rbac.Require(shared.ResourceUsers, shared.ActionRead)).Get("/{id}", h.getUser)
	r.With(h.rbac.Require(shared.ResourceUsers, shared.ActionUpdate)).Put("/{id}", h.updateUser)
	r.With(h.rbac.Require(shared.ResourceUsers, shared.ActionDelete)).Delete("/{id}", h.deleteUser)
	r.With(h.rbac.Require(shared.ResourcePermissions, shared.ActionRead)).Get("/{id}/permissions", h.getPermissions)
	r.With(h.rbac.Require(shared.ResourcePermissions, shared.ActionUpdate)).Put("/{id}/permissions", h.replacePermissions)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Search: q.Get("search")}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.RoleID, _ = strconv.ParseInt(q.Get("roleId"), 10, 64)

	page, err := h.service.ListUsers(r.Context(), filter)
	if err != nil {
		h.fail(w, "list users", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.fail(w, "get user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := h.validator.Struct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	if len(req.Permissions) > 0 {
		if err := h.authorizeGrants(r.Context()); err != nil {
			h.fail(w, "create user", err)
			return
		}
	}
	user, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		h.fail(w, "create user", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := h.validator.Struct(req); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	if req.RoleID > 0 {
		current, err := h.service.GetUser(r.Context(), id)
		if err != nil {
			h.fail(w, "update user", err)
			return
		}
		if current.RoleID != req.RoleID {
			if err := h.authorizeGrants(r.Context()); err != nil {
				h.fail(w, "update user", err)
				return
			}
		}
	}
	user, err := h.service.UpdateUser(r.Context(), id, req)
	if err != nil {
		h.fail(w, "update user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		h.fail(w, "delete user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (h *Handler) getPermissions(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	overrides, err := h.permissions.UserOverrides(r.Context(), id)
	if err != nil {
		h.fail(w, "user permissions", err)
		return
	}
	if overrides == nil {
		overrides = []rbac.UserPermission{}
	}
	httpx.JSON(w, http.StatusOK, overrides)
}

func (h *Handler) replacePermissions(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req PermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	var overrides []rbac.UserPermission
	if req.Overrides != nil {
		overrides, err = h.permissions.ReplaceUserOverrides(r.Context(), id, req.Overrides)
	} else {
		overrides, err = h.permissions.ReplaceUserPermissions(r.Context(), id, req.Permissions)
	}
	if err != nil {
		h.fail(w, "replace user permissions", err)
		return
	}
	if overrides == nil {
		overrides = []rbac.UserPermission{}
	}
	httpx.JSON(w, http.StatusOK, overrides)
}

// authorizeGrants checks that the caller may assign roles or permission
// overrides, which the users routes alone do not cover.
func (h *Handler) authorizeGrants(ctx context.Context) error {
	set, err := rbac.EffectiveFromContext(ctx, h.rbac.Resolver)
	if err != nil {
		return err
	}
	allowed := rbac.Authorize(set, shared.ResourcePermissions, shared.ActionUpdate)
	if h.rbac.Metrics != nil {
		h.rbac.Metrics.ObserveAuthz(shared.ResourcePermissions, shared.ActionUpdate, allowed)
	}
	if !allowed {
		p, _ := shared.PrincipalFromContext(ctx)
		h.logger.Warn("role or permission assignment denied",
			slog.Int64("user_id", p.UserID),
			slog.String("resource", shared.ResourcePermissions),
			slog.String("action", shared.ActionUpdate))
		return fmt.Errorf("users: assign role or permissions: %w", shared.ErrPermissionDenied)
	}
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
