package locations

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stationhub/stationhub/internal/masterdata/shared"
)

// Repository persists countries, regions and cities.
type Repository interface {
	ListCountries(ctx context.Context, f shared.ListFilters) ([]Country, int, error)
	GetCountry(ctx context.Context, id int64) (Country, error)
	CreateCountry(ctx context.Context, in CountryInput) (Country, error)
	UpdateCountry(ctx context.Context, id int64, in CountryInput) (Country, error)
	DeleteCountry(ctx context.Context, id int64) error

	ListRegions(ctx context.Context, f shared.ListFilters) ([]Region, int, error)
	GetRegion(ctx context.Context, id int64) (Region, error)
	CreateRegion(ctx context.Context, in RegionInput) (Region, error)
	UpdateRegion(ctx context.Context, id int64, in RegionInput) (Region, error)
	DeleteRegion(ctx context.Context, id int64) error

	ListCities(ctx context.Context, f shared.ListFilters) ([]City, int, error)
	GetCity(ctx context.Context, id int64) (City, error)
	CreateCity(ctx context.Context, in CityInput) (City, error)
	UpdateCity(ctx context.Context, id int64, in CityInput) (City, error)
	DeleteCity(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

var sortColumns = map[string]string{"name": "name", "created_at": "created_at", "id": "id"}

func table(name, columns string) shared.Table {
	return shared.Table{From: name, Columns: columns, Sort: sortColumns, DefaultSort: "name"}
}

const countryColumns = `id, name, code, created_at, updated_at`

func scanCountry(row pgx.CollectableRow) (Country, error) {
	var c Country
	err := row.Scan(&c.ID, &c.Name, &c.Code, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) ListCountries(ctx context.Context, f shared.ListFilters) ([]Country, int, error) {
	var w shared.Where
	if f.Search != "" {
		w.Add("(name ILIKE ? OR code ILIKE ?)", "%"+f.Search+"%", "%"+f.Search+"%")
	}
	return shared.List(ctx, r.pool, "locations: list countries", table("countries", countryColumns), &w, f, scanCountry)
}

func (r *repository) GetCountry(ctx context.Context, id int64) (Country, error) {
	return shared.One(ctx, r.pool, "locations: get country", `SELECT `+countryColumns+` FROM countries WHERE id = $1`, scanCountry, id)
}

func (r *repository) CreateCountry(ctx context.Context, in CountryInput) (Country, error) {
	return shared.One(ctx, r.pool, "locations: create country", `INSERT INTO countries (name, code) VALUES ($1, $2) RETURNING `+countryColumns, scanCountry, in.Name, in.Code)
}

func (r *repository) UpdateCountry(ctx context.Context, id int64, in CountryInput) (Country, error) {
	return shared.One(ctx, r.pool, "locations: update country", `UPDATE countries SET name = $2, code = $3, updated_at = NOW()
		WHERE id = $1 RETURNING `+countryColumns, scanCountry, id, in.Name, in.Code)
}

func (r *repository) DeleteCountry(ctx context.Context, id int64) error {
	return shared.Exec(ctx, r.pool, "locations: delete country", `DELETE FROM countries WHERE id = $1`, id)
}

const regionColumns = `id, name, country_id, created_at, updated_at`

func scanRegion(row pgx.CollectableRow) (Region, error) {
	var g Region
	err := row.Scan(&g.ID, &g.Name, &g.CountryID, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (r *repository) ListRegions(ctx context.Context, f shared.ListFilters) ([]Region, int, error) {
	var w shared.Where
	if f.Search != "" {
		w.Add("name ILIKE ?", "%"+f.Search+"%")
	}
	if f.CountryID > 0 {
		w.Add("country_id = ?", f.CountryID)
	}
	return shared.List(ctx, r.pool, "locations: list regions", table("regions", regionColumns), &w, f, scanRegion)
}

func (r *repository) GetRegion(ctx context.Context, id int64) (Region, error) {
	return shared.One(ctx, r.pool, "locations: get region", `SELECT `+regionColumns+` FROM regions WHERE id = $1`, scanRegion, id)
}

func (r *repository) CreateRegion(ctx context.Context, in RegionInput) (Region, error) {
	return shared.One(ctx, r.pool, "locations: create region", `INSERT INTO regions (name, country_id) VALUES ($1, $2) RETURNING `+regionColumns, scanRegion, in.Name, in.CountryID)
}

func (r *repository) UpdateRegion(ctx context.Context, id int64, in RegionInput) (Region, error) {
	return shared.One(ctx, r.pool, "locations: update region", `UPDATE regions SET name = $2, country_id = $3, updated_at = NOW()
		WHERE id = $1 RETURNING `+regionColumns, scanRegion, id, in.Name, in.CountryID)
}

func (r *repository) DeleteRegion(ctx context.Context, id int64) error {
	return shared.Exec(ctx, r.pool, "locations: delete region", `DELETE FROM regions WHERE id = $1`, id)
}

const cityColumns = `id, name, region_id, created_at, updated_at`

func scanCity(row pgx.CollectableRow) (City, error) {
	var c City
	err := row.Scan(&c.ID, &c.Name, &c.RegionID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) ListCities(ctx context.Context, f shared.ListFilters) ([]City, int, error) {
	var w shared.Where
	if f.Search != "" {
		w.Add("name ILIKE ?", "%"+f.Search+"%")
	}
	if f.RegionID > 0 {
		w.Add("region_id = ?", f.RegionID)
	}
	return shared.List(ctx, r.pool, "locations: list cities", table("cities", cityColumns), &w, f, scanCity)
}

func (r *repository) GetCity(ctx context.Context, id int64) (City, error) {
	return shared.One(ctx, r.pool, "locations: get city", `SELECT `+cityColumns+` FROM cities WHERE id = $1`, scanCity, id)
}

func (r *repository) CreateCity(ctx context.Context, in CityInput) (City, error) {
	return shared.One(ctx, r.pool, "locations: create city", `INSERT INTO cities (name, region_id) VALUES ($1, $2) RETURNING `+cityColumns, scanCity, in.Name, in.RegionID)
}

func (r *repository) UpdateCity(ctx context.Context, id int64, in CityInput) (City, error) {
	return shared.One(ctx, r.pool, "locations: update city", `UPDATE cities SET name = $2, region_id = $3, updated_at = NOW()
		WHERE id = $1 RETURNING `+cityColumns, scanCity, id, in.Name, in.RegionID)
}

func (r *repository) DeleteCity(ctx context.Context, id int64) error {
	return shared.Exec(ctx, r.pool, "locations: delete city", `DELETE FROM cities WHERE id = $1`, id)
}
