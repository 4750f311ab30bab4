package locations

import (
	"context"
	"strings"

	"github.com/stationhub/stationhub/internal/masterdata/shared"
	core "github.com/stationhub/stationhub/internal/shared"
)

type memoryRepository struct {
	countries map[int64]Country
	regions   map[int64]Region
	cities    map[int64]City
	nextID    int64
	listErr   error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		countries: map[int64]Country{},
		regions:   map[int64]Region{},
		cities:    map[int64]City{},
	}
}

func (m *memoryRepository) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryRepository) ListCountries(ctx context.Context, f shared.ListFilters) ([]Country, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var out []Country
	for _, c := range m.countries {
		if f.Search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepository) GetCountry(ctx context.Context, id int64) (Country, error) {
	c, ok := m.countries[id]
	if !ok {
		return Country{}, core.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepository) CreateCountry(ctx context.Context, in CountryInput) (Country, error) {
	for _, c := range m.countries {
		if c.Code == in.Code {
			return Country{}, core.ErrConflict
		}
	}
	c := Country{ID: m.id(), Name: in.Name, Code: in.Code}
	m.countries[c.ID] = c
	return c, nil
}

func (m *memoryRepository) UpdateCountry(ctx context.Context, id int64, in CountryInput) (Country, error) {
	c, ok := m.countries[id]
	if !ok {
		return Country{}, core.ErrNotFound
	}
	c.Name, c.Code = in.Name, in.Code
	m.countries[id] = c
	return c, nil
}

func (m *memoryRepository) DeleteCountry(ctx context.Context, id int64) error {
	if _, ok := m.countries[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.countries, id)
	return nil
}

func (m *memoryRepository) ListRegions(ctx context.Context, f shared.ListFilters) ([]Region, int, error) {
	var out []Region
	for _, r := range m.regions {
		if f.CountryID == 0 || r.CountryID == f.CountryID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepository) GetRegion(ctx context.Context, id int64) (Region, error) {
	r, ok := m.regions[id]
	if !ok {
		return Region{}, core.ErrNotFound
	}
	return r, nil
}

func (m *memoryRepository) CreateRegion(ctx context.Context, in RegionInput) (Region, error) {
	if _, ok := m.countries[in.CountryID]; !ok {
		return Region{}, core.ErrNotFound
	}
	r := Region{ID: m.id(), Name: in.Name, CountryID: in.CountryID}
	m.regions[r.ID] = r
	return r, nil
}

func (m *memoryRepository) UpdateRegion(ctx context.Context, id int64, in RegionInput) (Region, error) {
	r, ok := m.regions[id]
	if !ok {
		return Region{}, core.ErrNotFound
	}
	r.Name, r.CountryID = in.Name, in.CountryID
	m.regions[id] = r
	return r, nil
}

func (m *memoryRepository) DeleteRegion(ctx context.Context, id int64) error {
	if _, ok := m.regions[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.regions, id)
	return nil
}

func (m *memoryRepository) ListCities(ctx context.Context, f shared.ListFilters) ([]City, int, error) {
	var out []City
	for _, c := range m.cities {
		if f.RegionID == 0 || c.RegionID == f.RegionID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepository) GetCity(ctx context.Context, id int64) (City, error) {
	c, ok := m.cities[id]
	if !ok {
		return City{}, core.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepository) CreateCity(ctx context.Context, in CityInput) (City, error) {
	if _, ok := m.regions[in.RegionID]; !ok {
		return City{}, core.ErrNotFound
	}
	c := City{ID: m.id(), Name: in.Name, RegionID: in.RegionID}
	m.cities[c.ID] = c
	return c, nil
}

func (m *memoryRepository) UpdateCity(ctx context.Context, id int64, in CityInput) (City, error) {
	c, ok := m.cities[id]
	if !ok {
		return City{}, core.ErrNotFound
	}
	c.Name, c.RegionID = in.Name, in.RegionID
	m.cities[id] = c
	return c, nil
}

func (m *memoryRepository) DeleteCity(ctx context.Context, id int64) error {
	if _, ok := m.cities[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.cities, id)
	return nil
}
