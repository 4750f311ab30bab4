package stations

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stationhub/stationhub/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Station, int, error)
	Get(ctx context.Context, id int64) (Station, error)
	Create(ctx context.Context, in CreateInput) (Station, error)
	Update(ctx context.Context, id int64, in UpdateInput) (Station, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const (
	stationColumns = `s.id, s.name, s.company_id, c.name, s.manager_id, m.username, m.email,
		s.tin, s.domain_url, s.street, s.city_id, ci.name, s.created_at, s.updated_at`
	stationJoins = ` JOIN companies c ON c.id = s.company_id
		JOIN cities ci ON ci.id = s.city_id
		LEFT JOIN users m ON m.id = s.manager_id`
)

var stationTable = shared.Table{
	From:    "stations s" + stationJoins,
	Columns: stationColumns,
	Sort: map[string]string{
		"name":       "s.name",
		"tin":        "s.tin",
		"created_at": "s.created_at",
		"id":         "s.id",
	},
	DefaultSort: "s.name",
}

func scanStation(row pgx.CollectableRow) (Station, error) {
	var (
		s                        Station
		managerName, managerMail *string
	)
	err := row.Scan(&s.ID, &s.Name, &s.CompanyID, &s.Company.Name, &s.ManagerID, &managerName, &managerMail,
		&s.TIN, &s.DomainURL, &s.Street, &s.CityID, &s.City.Name, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Station{}, err
	}
	s.Company.ID = s.CompanyID
	s.City.ID = s.CityID
	if s.ManagerID != nil && managerName != nil {
		s.Manager = &ManagerRef{ID: *s.ManagerID, Username: *managerName}
		if managerMail != nil {
			s.Manager.Email = *managerMail
		}
	}
	return s, nil
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Station, int, error) {
	var w shared.Where
	if filters.Search != "" {
		w.Add("(s.name ILIKE ? OR s.tin ILIKE ? OR s.street ILIKE ?)",
			"%"+filters.Search+"%", "%"+filters.Search+"%", "%"+filters.Search+"%")
	}
	if filters.CompanyID > 0 {
		w.Add("s.company_id = ?", filters.CompanyID)
	}
	if filters.RegionID > 0 {
		w.Add("ci.region_id = ?", filters.RegionID)
	}
	return shared.List(ctx, r.pool, "stations: list", stationTable, &w, filters, scanStation)
}

func (r *repository) Get(ctx context.Context, id int64) (Station, error) {
	return shared.One(ctx, r.pool, "stations: get",
		`SELECT `+stationColumns+` FROM stations s`+stationJoins+` WHERE s.id = $1`, scanStation, id)
}

func (r *repository) Create(ctx context.Context, in CreateInput) (Station, error) {
	return shared.One(ctx, r.pool, "stations: create",
		`WITH s AS (
			INSERT INTO stations (name, company_id, manager_id, tin, domain_url, street, city_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING *
		)
		SELECT `+stationColumns+` FROM s`+stationJoins,
		scanStation, in.Name, in.CompanyID, in.ManagerID, in.TIN, in.DomainURL, in.Street, in.CityID)
}

func (r *repository) Update(ctx context.Context, id int64, in UpdateInput) (Station, error) {
	return shared.One(ctx, r.pool, "stations: update",
		`WITH s AS (
			UPDATE stations SET
				name = COALESCE($2, name),
				company_id = COALESCE($3, company_id),
				manager_id = COALESCE($4, manager_id),
				tin = COALESCE($5, tin),
				domain_url = COALESCE($6, domain_url),
				street = COALESCE($7, street),
				city_id = COALESCE($8, city_id),
				updated_at = NOW()
			WHERE id = $1 RETURNING *
		)
		SELECT `+stationColumns+` FROM s`+stationJoins,
		scanStation, id, in.Name, in.CompanyID, in.ManagerID, in.TIN, in.DomainURL, in.Street, in.CityID)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return shared.Exec(ctx, r.pool, "stations: delete", `DELETE FROM stations WHERE id = $1`, id)
}
