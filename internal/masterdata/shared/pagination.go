package shared

import (
	"net/http"
	"strconv"
	"strings"
)

// ListFilters represents standard list page filters
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string

	// Entity specific filters
	CountryID int64
	RegionID  int64
	CompanyID int64
}

// ParseListFilters reads paging, sorting and parent filters from the query string.
func ParseListFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	f := ListFilters{
		Search:  strings.TrimSpace(q.Get("search")),
		SortBy:  q.Get("sort"),
		SortDir: strings.ToLower(q.Get("dir")),
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.CountryID, _ = strconv.ParseInt(q.Get("countryId"), 10, 64)
	f.RegionID, _ = strconv.ParseInt(q.Get("regionId"), 10, 64)
	f.CompanyID, _ = strconv.ParseInt(q.Get("companyId"), 10, 64)
	return f.Normalize()
}

// Normalize clamps paging values into range.
func (f ListFilters) Normalize() ListFilters {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.SortDir != SortDesc {
		f.SortDir = SortAsc
	}
	return f
}

// Offset returns the row offset for the current page.
func (f ListFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// OrderBy maps the requested sort key onto a whitelisted column.
func (f ListFilters) OrderBy(columns map[string]string, fallback string) string {
	col, ok := columns[f.SortBy]
	if !ok {
		col = fallback
	}
	if f.SortDir == SortDesc {
		return col + " DESC"
	}
	return col + " ASC"
}
