package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stationhub/stationhub/internal/platform/httpx"
	"github.com/stationhub/stationhub/internal/shared"
)

// Handler exposes role and permission management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      Middleware
	validator *httpx.Validator
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: httpx.NewValidator()}
}

// MountRoleRoutes registers role routes.
func (h *Handler) MountRoleRoutes(r chi.Router) {
	r.Get("/", h.listRoles)
	r.Get("/{id}", h.getRole)
	r.With(h.rbac.Require(shared.ResourcePermissions, shared.ActionUpdate)).Put("/{id}/permissions", h.replaceRolePermissions)
}

// MountPermissionRoutes registers permission catalog routes.
func (h *Handler) MountPermissionRoutes(r chi.Router) {
	r.With(h.rbac.Require(shared.ResourcePermissions, shared.ActionRead)).Get("/", h.listPermissions)
	r.With(h.rbac.Require(shared.ResourcePermissions, shared.ActionRead)).Get("/{id}", h.getPermission)
	r.With(h.rbac.Require(shared.ResourcePermissions, shared.ActionCreate)).Post("/", h.createPermission)
	r.With(h.rbac.Require(shared.ResourcePermissions, shared.ActionUpdate)).Put("/{id}", h.updatePermission)
	r.With(h.rbac.Require(shared.ResourcePermissions, shared.ActionDelete)).Delete("/{id}", h.deletePermission)
}

// PermissionIDsRequest is the body of replace-permission endpoints.
type PermissionIDsRequest struct {
	Permissions []int64 `json:"permissions"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.fail(w, "list roles", err)
		return
	}
	httpx.JSON(w, http.StatusOK, roles)
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		h.fail(w, "get role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) replaceRolePermissions(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req PermissionIDsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.ReplaceRolePermissions(r.Context(), id, req.Permissions)
	if err != nil {
		h.fail(w, "replace role permissions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.fail(w, "list permissions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}

func (h *Handler) getPermission(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	perm, err := h.service.GetPermission(r.Context(), id)
	if err != nil {
		h.fail(w, "get permission", err)
		return
	}
	httpx.JSON(w, http.StatusOK, perm)
}

func (h *Handler) createPermission(w http.ResponseWriter, r *http.Request) {
	var input PermissionInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := h.validator.Struct(input); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}
	perm, err := h.service.CreatePermission(r.Context(), input)
	if err != nil {
		h.fail(w, "create permission", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, perm)
}

func (h *Handler) updatePermission(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var input PermissionInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	perm, err := h.service.UpdatePermission(r.Context(), id, input)
	if err != nil {
		h.fail(w, "update permission", err)
		return
	}
	httpx.JSON(w, http.StatusOK, perm)
}

func (h *Handler) deletePermission(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeletePermission(r.Context(), id); err != nil {
		h.fail(w, "delete permission", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Permission deleted successfully"})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
