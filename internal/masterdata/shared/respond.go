package shared

import (
	"log/slog"
	"net/http"

	"github.com/stationhub/stationhub/internal/platform/httpx"
	core "github.com/stationhub/stationhub/internal/shared"
)

// Page is the JSON envelope of list endpoints.
type Page[T any] struct {
	Items      []T             `json:"items"`
	Pagination core.Pagination `json:"pagination"`
}

// NewPage wraps items with pagination metadata.
func NewPage[T any](items []T, f ListFilters, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Pagination: core.NewPagination(f.Page, f.Limit, total)}
}

// Fail logs server-side failures and writes the problem response.
func Fail(logger *slog.Logger, w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) >= http.StatusInternalServerError {
		logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
