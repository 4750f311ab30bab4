package companies

import (
	"context"

	"github.com/stationhub/stationhub/internal/masterdata/shared"
	core "github.com/stationhub/stationhub/internal/shared"
)

type mockRepository struct {
	companies map[int64]Company
	countries map[int64]CountryRef
	nextID    int64
	lastList  shared.ListFilters
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		companies: map[int64]Company{},
		countries: map[int64]CountryRef{1: {ID: 1, Name: "Indonesia", Code: "ID"}},
	}
}

func (m *mockRepository) List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error) {
	m.lastList = filters
	var out []Company
	for _, c := range m.companies {
		if filters.CountryID == 0 || c.CountryID == filters.CountryID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return Company{}, core.ErrNotFound
	}
	return c, nil
}

func (m *mockRepository) unique(id int64, name, email string) error {
	for _, c := range m.companies {
		if c.ID != id && (c.Name == name || c.Email == email) {
			return core.ErrConflict
		}
	}
	return nil
}

func (m *mockRepository) Create(ctx context.Context, in CreateInput) (Company, error) {
	country, ok := m.countries[in.CountryID]
	if !ok {
		return Company{}, core.ErrNotFound
	}
	if err := m.unique(0, in.Name, in.Email); err != nil {
		return Company{}, err
	}
	m.nextID++
	c := Company{ID: m.nextID, Name: in.Name, Email: in.Email, CountryID: in.CountryID, Country: country, DirectorID: in.DirectorID}
	m.companies[c.ID] = c
	return c, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, in UpdateInput) (Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return Company{}, core.ErrNotFound
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Email != nil {
		c.Email = *in.Email
	}
	if in.CountryID != nil {
		c.CountryID = *in.CountryID
	}
	if in.DirectorID != nil {
		c.DirectorID = in.DirectorID
	}
	if err := m.unique(id, c.Name, c.Email); err != nil {
		return Company{}, err
	}
	m.companies[id] = c
	return c, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.companies[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.companies, id)
	return nil
}
