package locations

import (
	"context"
	"fmt"
	"strings"

	"github.com/stationhub/stationhub/internal/masterdata/shared"
	core "github.com/stationhub/stationhub/internal/shared"
)

// Service applies location rules on top of the repository.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListCountries(ctx context.Context, f shared.ListFilters) ([]Country, int, error) {
	return s.repo.ListCountries(ctx, f.Normalize())
}

func (s *Service) GetCountry(ctx context.Context, id int64) (Country, error) {
	return s.repo.GetCountry(ctx, id)
}

func (s *Service) CreateCountry(ctx context.Context, in CountryInput) (Country, error) {
	in, err := normalizeCountry(in)
	if err != nil {
		return Country{}, err
	}
	return s.repo.CreateCountry(ctx, in)
}

func (s *Service) UpdateCountry(ctx context.Context, id int64, in CountryInput) (Country, error) {
	in, err := normalizeCountry(in)
	if err != nil {
		return Country{}, err
	}
	return s.repo.UpdateCountry(ctx, id, in)
}

func (s *Service) DeleteCountry(ctx context.Context, id int64) error {
	return s.repo.DeleteCountry(ctx, id)
}

func (s *Service) ListRegions(ctx context.Context, f shared.ListFilters) ([]Region, int, error) {
	return s.repo.ListRegions(ctx, f.Normalize())
}

func (s *Service) GetRegion(ctx context.Context, id int64) (Region, error) {
	return s.repo.GetRegion(ctx, id)
}

func (s *Service) CreateRegion(ctx context.Context, in RegionInput) (Region, error) {
	if in.Name = strings.TrimSpace(in.Name); in.Name == "" {
		return Region{}, requiredName("region")
	}
	return s.repo.CreateRegion(ctx, in)
}

func (s *Service) UpdateRegion(ctx context.Context, id int64, in RegionInput) (Region, error) {
	if in.Name = strings.TrimSpace(in.Name); in.Name == "" {
		return Region{}, requiredName("region")
	}
	return s.repo.UpdateRegion(ctx, id, in)
}

func (s *Service) DeleteRegion(ctx context.Context, id int64) error {
	return s.repo.DeleteRegion(ctx, id)
}

func (s *Service) ListCities(ctx context.Context, f shared.ListFilters) ([]City, int, error) {
	return s.repo.ListCities(ctx, f.Normalize())
}

func (s *Service) GetCity(ctx context.Context, id int64) (City, error) {
	return s.repo.GetCity(ctx, id)
}

func (s *Service) CreateCity(ctx context.Context, in CityInput) (City, error) {
	if in.Name = strings.TrimSpace(in.Name); in.Name == "" {
		return City{}, requiredName("city")
	}
	return s.repo.CreateCity(ctx, in)
}

func (s *Service) UpdateCity(ctx context.Context, id int64, in CityInput) (City, error) {
	if in.Name = strings.TrimSpace(in.Name); in.Name == "" {
		return City{}, requiredName("city")
	}
	return s.repo.UpdateCity(ctx, id, in)
}

func (s *Service) DeleteCity(ctx context.Context, id int64) error {
	return s.repo.DeleteCity(ctx, id)
}

func normalizeCountry(in CountryInput) (CountryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	if in.Name == "" {
		return in, requiredName("country")
	}
	if len(in.Code) != 2 {
		return in, fmt.Errorf("locations: %w: country code must be two letters", core.ErrValidation)
	}
	return in, nil
}

func requiredName(entity string) error {
	return fmt.Errorf("locations: %w: %s name is required", core.ErrValidation, entity)
}
