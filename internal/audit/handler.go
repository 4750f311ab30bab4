package audit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/stationhub/stationhub/internal/platform/httpx"
	"github.com/stationhub/stationhub/internal/rbac"
	"github.com/stationhub/stationhub/internal/shared"
)

const (
	exportRateLimit  = 10
	exportRateWindow = time.Minute
	defaultDateRange = 7 * 24 * time.Hour
	maxDateRange     = 90 * 24 * time.Hour
)

// Handler serves the audit timeline to administrators.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
	now     func() time.Time
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, now: time.Now}
}

// MountRoutes registers the timeline and its CSV export.
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(exportRateLimit, exportRateWindow,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "export rate limit reached")
		}),
	)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.ResourceAdmin, shared.ActionManage))
		r.Get("/", h.timeline)
		r.With(limiter).Get("/export.csv", h.export)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if p, ok := shared.PrincipalFromContext(r.Context()); ok {
		return "user:" + strconv.FormatInt(p.UserID, 10), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.fail(w, "audit timeline", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.fail(w, "audit export", err)
		return
	}
	body, err := WriteCSV(rows)
	if err != nil {
		h.fail(w, "audit export", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="audit-%s.csv"`, h.now().UTC().Format("20060102")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) parseFilters(r *http.Request) (TimelineFilters, error) {
	q := r.URL.Query()
	now := h.now().UTC()
	filters := TimelineFilters{
		To:     now,
		From:   now.Add(-defaultDateRange),
		Entity: strings.TrimSpace(q.Get("entity")),
		Action: strings.TrimSpace(q.Get("action")),
	}
	var err error
	if v := q.Get("from"); v != "" {
		if filters.From, err = parseTime(v); err != nil {
			return filters, fmt.Errorf("%w: from: %v", shared.ErrValidation, err)
		}
	}
	if v := q.Get("to"); v != "" {
		if filters.To, err = parseTime(v); err != nil {
			return filters, fmt.Errorf("%w: to: %v", shared.ErrValidation, err)
		}
	}
	if !filters.To.After(filters.From) {
		return filters, fmt.Errorf("%w: from must be before to", shared.ErrValidation)
	}
	if filters.To.Sub(filters.From) > maxDateRange {
		return filters, fmt.Errorf("%w: date range exceeds 90 days", shared.ErrValidation)
	}
	if v := q.Get("actorId"); v != "" {
		if filters.ActorID, err = strconv.ParseInt(v, 10, 64); err != nil || filters.ActorID <= 0 {
			return filters, fmt.Errorf("%w: actorId must be a positive integer", shared.ErrValidation)
		}
	}
	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.PageSize, _ = strconv.Atoi(q.Get("pageSize"))
	return filters, nil
}

// parseTime accepts RFC 3339 timestamps or plain dates.
func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, v)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
