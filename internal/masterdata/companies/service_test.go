package companies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationhub/stationhub/internal/masterdata/shared"
	core "github.com/stationhub/stationhub/internal/shared"
)

func TestCreateNormalizesNameAndEmail(t *testing.T) {
	svc := NewService(newMockRepository())

	c, err := svc.Create(context.Background(), CreateInput{Name: "  Pertamina ", Email: " Ops@Pertamina.ID ", CountryID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Pertamina", c.Name)
	assert.Equal(t, "ops@pertamina.id", c.Email)
	assert.Equal(t, "ID", c.Country.Code)
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "A", Email: "ops@a.id", CountryID: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "B", Email: "OPS@a.id", CountryID: 1})
	assert.ErrorIs(t, err, core.ErrConflict)
}

func TestCreateUnknownCountry(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), CreateInput{Name: "A", Email: "a@a.id", CountryID: 9})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateKeepsAbsentFields(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()
	director := int64(5)

	created, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@a.id", CountryID: 1, DirectorID: &director})
	require.NoError(t, err)

	name := " Renamed "
	updated, err := svc.Update(ctx, created.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "a@a.id", updated.Email)
	require.NotNil(t, updated.DirectorID)
	assert.Equal(t, int64(5), *updated.DirectorID)
}

func TestUpdateRejectsBlankName(t *testing.T) {
	svc := NewService(newMockRepository())
	blank := "  "

	_, err := svc.Update(context.Background(), 1, UpdateInput{Name: &blank})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestInvalidIDs(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.Get(ctx, 0)
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.ErrorIs(t, svc.Delete(ctx, -1), core.ErrValidation)
}

func TestListNormalizesFilters(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, _, err := svc.List(context.Background(), shared.ListFilters{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, shared.MaxLimit, repo.lastList.Limit)
	assert.Equal(t, 1, repo.lastList.Page)
}
