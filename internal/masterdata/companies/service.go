package companies

import (
	"context"
	"fmt"

	"github.com/stationhub/stationhub/internal/masterdata/shared"
	core "github.com/stationhub/stationhub/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error) {
	return s.repo.List(ctx, filters.Normalize())
}

func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	if id <= 0 {
		return Company{}, invalidID()
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Company, error) {
	in, err := normalizeCreate(in)
	if err != nil {
		return Company{}, err
	}
	return s.repo.Create(ctx, in)
}

// Update leaves absent fields untouched.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Company, error) {
	if id <= 0 {
		return Company{}, invalidID()
	}
	in, err := normalizeUpdate(in)
	if err != nil {
		return Company{}, err
	}
	return s.repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalidID()
	}
	return s.repo.Delete(ctx, id)
}

func invalidID() error {
	return fmt.Errorf("companies: %w: invalid company id", core.ErrValidation)
}
