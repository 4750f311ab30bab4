package stations

import (
	"context"

	"github.com/stationhub/stationhub/internal/masterdata/shared"
	core "github.com/stationhub/stationhub/internal/shared"
)

type mockRepository struct {
	stations  map[int64]Station
	companies map[int64]string
	cities    map[int64]string
	nextID    int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		stations:  map[int64]Station{},
		companies: map[int64]string{1: "Pertamina", 2: "Shell"},
		cities:    map[int64]string{1: "Denpasar"},
	}
}

func (m *mockRepository) List(ctx context.Context, filters shared.ListFilters) ([]Station, int, error) {
	var out []Station
	for _, s := range m.stations {
		if filters.CompanyID == 0 || s.CompanyID == filters.CompanyID {
			out = append(out, s)
		}
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Station, error) {
	s, ok := m.stations[id]
	if !ok {
		return Station{}, core.ErrNotFound
	}
	return s, nil
}

func (m *mockRepository) check(s Station) error {
	if _, ok := m.companies[s.CompanyID]; !ok {
		return core.ErrNotFound
	}
	if _, ok := m.cities[s.CityID]; !ok {
		return core.ErrNotFound
	}
	for _, other := range m.stations {
		if other.ID == s.ID {
			continue
		}
		if other.TIN == s.TIN {
			return core.ErrConflict
		}
		if s.DomainURL != nil && other.DomainURL != nil && *s.DomainURL == *other.DomainURL {
			return core.ErrConflict
		}
	}
	return nil
}

func (m *mockRepository) Create(ctx context.Context, in CreateInput) (Station, error) {
	s := Station{
		ID: m.nextID + 1, Name: in.Name, CompanyID: in.CompanyID, ManagerID: in.ManagerID,
		TIN: in.TIN, DomainURL: in.DomainURL, Street: in.Street, CityID: in.CityID,
	}
	if err := m.check(s); err != nil {
		return Station{}, err
	}
	m.nextID++
	s.Company = CompanyRef{ID: s.CompanyID, Name: m.companies[s.CompanyID]}
	s.City = CityRef{ID: s.CityID, Name: m.cities[s.CityID]}
	m.stations[s.ID] = s
	return s, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, in UpdateInput) (Station, error) {
	s, ok := m.stations[id]
	if !ok {
		return Station{}, core.ErrNotFound
	}
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.CompanyID != nil {
		s.CompanyID = *in.CompanyID
	}
	if in.ManagerID != nil {
		s.ManagerID = in.ManagerID
	}
	if in.TIN != nil {
		s.TIN = *in.TIN
	}
	if in.DomainURL != nil {
		s.DomainURL = in.DomainURL
	}
	if in.Street != nil {
		s.Street = *in.Street
	}
	if in.CityID != nil {
		s.CityID = *in.CityID
	}
	if err := m.check(s); err != nil {
		return Station{}, err
	}
	m.stations[id] = s
	return s, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.stations[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.stations, id)
	return nil
}
