package companies

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stationhub/stationhub/internal/masterdata/shared"
	"github.com/stationhub/stationhub/internal/platform/httpx"
	"github.com/stationhub/stationhub/internal/rbac"
	core "github.com/stationhub/stationhub/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *httpx.Validator
}

func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: httpx.NewValidator()}
}

// MountRoutes registers company endpoints guarded by companies:* permissions.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(core.ResourceCompanies, core.ActionRead)).Get("/", h.List)
	r.With(h.rbac.Require(core.ResourceCompanies, core.ActionRead)).Get("/{id}", h.Show)
	r.With(h.rbac.Require(core.ResourceCompanies, core.ActionCreate)).Post("/", h.Create)
	r.With(h.rbac.Require(core.ResourceCompanies, core.ActionUpdate)).Put("/{id}", h.Update)
	r.With(h.rbac.Require(core.ResourceCompanies, core.ActionDelete)).Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r)
	companies, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		shared.Fail(h.logger, w, "list companies", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewPage(companies, filters, total))
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	company, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.Fail(h.logger, w, "get company", err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if !h.decode(w, r, &in) {
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		shared.Fail(h.logger, w, "create company", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in UpdateInput
	if !h.decode(w, r, &in) {
		return
	}
	updated, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		shared.Fail(h.logger, w, "update company", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		shared.Fail(h.logger, w, "delete company", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Company deleted successfully"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.RespondError(w, err)
		return false
	}
	if fields := h.validator.Struct(dst); fields != nil {
		httpx.ValidationProblem(w, fields)
		return false
	}
	return true
}
