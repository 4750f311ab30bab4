package audit

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
	// maxExportRows bounds a single CSV export.
	maxExportRows = 10000
)

// Service serves the audit timeline.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page. It fetches one extra row to learn whether a
// next page exists.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	filters = normalize(filters)
	pageSize := filters.PageSize
	page := filters.Page
	rows, err := s.repo.Timeline(ctx, Window{Filters: filters, Offset: (page - 1) * pageSize, Limit: pageSize + 1})
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	if rows == nil {
		rows = []TimelineRow{}
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns every matching row up to maxExportRows.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("audit: repository not configured")
	}
	return s.repo.Timeline(ctx, Window{Filters: normalize(filters), Limit: maxExportRows})
}

func normalize(f TimelineFilters) TimelineFilters {
	if f.PageSize <= 0 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	f.Entity = strings.TrimSpace(f.Entity)
	f.Action = strings.TrimSpace(f.Action)
	return f
}
