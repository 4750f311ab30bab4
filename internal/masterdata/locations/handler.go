package locations

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stationhub/stationhub/internal/masterdata/shared"
	"github.com/stationhub/stationhub/internal/platform/httpx"
	"github.com/stationhub/stationhub/internal/rbac"
	core "github.com/stationhub/stationhub/internal/shared"
)

// Handler serves the location endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *httpx.Validator
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: httpx.NewValidator()}
}

// guard admits the pair on resource, or locations:manage which covers all three.
func (h *Handler) guard(resource, action string) func(http.Handler) http.Handler {
	return h.rbac.RequireAny(
		rbac.Requirement{Resource: resource, Action: action},
		rbac.Requirement{Resource: core.ResourceLocations, Action: core.ActionManage},
	)
}

// MountRoutes registers /countries, /regions and /cities.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/countries", func(r chi.Router) {
		r.With(h.guard(core.ResourceCountries, core.ActionRead)).Get("/", h.listCountries)
		r.With(h.guard(core.ResourceCountries, core.ActionRead)).Get("/{id}", h.getCountry)
		r.With(h.guard(core.ResourceCountries, core.ActionCreate)).Post("/", h.createCountry)
		r.With(h.guard(core.ResourceCountries, core.ActionUpdate)).Put("/{id}", h.updateCountry)
		r.With(h.guard(core.ResourceCountries, core.ActionDelete)).Delete("/{id}", h.deleteCountry)
	})
	r.Route("/regions", func(r chi.Router) {
		r.With(h.guard(core.ResourceRegions, core.ActionRead)).Get("/", h.listRegions)
		r.With(h.guard(core.ResourceRegions, core.ActionRead)).Get("/{id}", h.getRegion)
		r.With(h.guard(core.ResourceRegions, core.ActionCreate)).Post("/", h.createRegion)
		r.With(h.guard(core.ResourceRegions, core.ActionUpdate)).Put("/{id}", h.updateRegion)
		r.With(h.guard(core.ResourceRegions, core.ActionDelete)).Delete("/{id}", h.deleteRegion)
	})
	r.Route("/cities", func(r chi.Router) {
		r.With(h.guard(core.ResourceCities, core.ActionRead)).Get("/", h.listCities)
		r.With(h.guard(core.ResourceCities, core.ActionRead)).Get("/{id}", h.getCity)
		r.With(h.guard(core.ResourceCities, core.ActionCreate)).Post("/", h.createCity)
		r.With(h.guard(core.ResourceCities, core.ActionUpdate)).Put("/{id}", h.updateCity)
		r.With(h.guard(core.ResourceCities, core.ActionDelete)).Delete("/{id}", h.deleteCity)
	})
}

func (h *Handler) listCountries(w http.ResponseWriter, r *http.Request) {
	f := shared.ParseListFilters(r)
	items, total, err := h.service.ListCountries(r.Context(), f)
	if err != nil {
		shared.Fail(h.logger, w, "list countries", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewPage(items, f, total))
}

func (h *Handler) getCountry(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.GetCountry(r.Context(), id)
	if err != nil {
		shared.Fail(h.logger, w, "get country", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) createCountry(w http.ResponseWriter, r *http.Request) {
	var in CountryInput
	if !h.decode(w, r, &in) {
		return
	}
	c, err := h.service.CreateCountry(r.Context(), in)
	if err != nil {
		shared.Fail(h.logger, w, "create country", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) updateCountry(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in CountryInput
	if !h.decode(w, r, &in) {
		return
	}
	c, err := h.service.UpdateCountry(r.Context(), id, in)
	if err != nil {
		shared.Fail(h.logger, w, "update country", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) deleteCountry(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "country", h.service.DeleteCountry)
}

func (h *Handler) listRegions(w http.ResponseWriter, r *http.Request) {
	f := shared.ParseListFilters(r)
	items, total, err := h.service.ListRegions(r.Context(), f)
	if err != nil {
		shared.Fail(h.logger, w, "list regions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewPage(items, f, total))
}

func (h *Handler) getRegion(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	g, err := h.service.GetRegion(r.Context(), id)
	if err != nil {
		shared.Fail(h.logger, w, "get region", err)
		return
	}
	httpx.JSON(w, http.StatusOK, g)
}

func (h *Handler) createRegion(w http.ResponseWriter, r *http.Request) {
	var in RegionInput
	if !h.decode(w, r, &in) {
		return
	}
	g, err := h.service.CreateRegion(r.Context(), in)
	if err != nil {
		shared.Fail(h.logger, w, "create region", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, g)
}

func (h *Handler) updateRegion(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in RegionInput
	if !h.decode(w, r, &in) {
		return
	}
	g, err := h.service.UpdateRegion(r.Context(), id, in)
	if err != nil {
		shared.Fail(h.logger, w, "update region", err)
		return
	}
	httpx.JSON(w, http.StatusOK, g)
}

func (h *Handler) deleteRegion(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "region", h.service.DeleteRegion)
}

func (h *Handler) listCities(w http.ResponseWriter, r *http.Request) {
	f := shared.ParseListFilters(r)
	items, total, err := h.service.ListCities(r.Context(), f)
	if err != nil {
		shared.Fail(h.logger, w, "list cities", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewPage(items, f, total))
}

func (h *Handler) getCity(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.GetCity(r.Context(), id)
	if err != nil {
		shared.Fail(h.logger, w, "get city", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) createCity(w http.ResponseWriter, r *http.Request) {
	var in CityInput
	if !h.decode(w, r, &in) {
		return
	}
	c, err := h.service.CreateCity(r.Context(), in)
	if err != nil {
		shared.Fail(h.logger, w, "create city", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) updateCity(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in CityInput
	if !h.decode(w, r, &in) {
		return
	}
	c, err := h.service.UpdateCity(r.Context(), id, in)
	if err != nil {
		shared.Fail(h.logger, w, "update city", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) deleteCity(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "city", h.service.DeleteCity)
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

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, entity string, del func(ctx context.Context, id int64) error) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := del(r.Context(), id); err != nil {
		shared.Fail(h.logger, w, "delete "+entity, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": entity + " deleted"})
}
