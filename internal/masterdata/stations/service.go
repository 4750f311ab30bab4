package stations

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Station, int, error) {
	return s.repo.List(ctx, filters.Normalize())
}

func (s *Service) Get(ctx context.Context, id int64) (Station, error) {
	if id <= 0 {
		return Station{}, invalidID()
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Station, error) {
	in, err := normalizeCreate(in)
	if err != nil {
		return Station{}, err
	}
	return s.repo.Create(ctx, in)
}

// Update leaves absent fields untouched.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Station, error) {
	if id <= 0 {
		return Station{}, invalidID()
	}
	in, err := normalizeUpdate(in)
	if err != nil {
		return Station{}, err
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
	return fmt.Errorf("stations: %w: invalid station id", core.ErrValidation)
}
