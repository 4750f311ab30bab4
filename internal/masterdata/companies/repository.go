package companies

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stationhub/stationhub/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error)
	Get(ctx context.Context, id int64) (Company, error)
	Create(ctx context.Context, in CreateInput) (Company, error)
	Update(ctx context.Context, id int64, in UpdateInput) (Company, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const (
	companyColumns = `c.id, c.name, c.email, c.country_id, co.name, co.code,
		c.director_id, d.username, d.email, c.created_at, c.updated_at`
	companyJoins = ` c JOIN countries co ON co.id = c.country_id LEFT JOIN users d ON d.id = c.director_id`
)

var companyTable = shared.Table{
	From:    "companies" + companyJoins,
	Columns: companyColumns,
	Sort: map[string]string{
		"name":       "c.name",
		"email":      "c.email",
		"created_at": "c.created_at",
		"id":         "c.id",
	},
	DefaultSort: "c.name",
}

func scanCompany(row pgx.CollectableRow) (Company, error) {
	var (
		c                          Company
		directorName, directorMail *string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.CountryID, &c.Country.Name, &c.Country.Code,
		&c.DirectorID, &directorName, &directorMail, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Company{}, err
	}
	c.Country.ID = c.CountryID
	if c.DirectorID != nil && directorName != nil {
		c.Director = &DirectorRef{ID: *c.DirectorID, Username: *directorName, Email: deref(directorMail)}
	}
	return c, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// List uses dynamic filters over the joined company view.
func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error) {
	var w shared.Where
	if filters.Search != "" {
		w.Add("(c.name ILIKE ? OR c.email ILIKE ?)", "%"+filters.Search+"%", "%"+filters.Search+"%")
	}
	if filters.CountryID > 0 {
		w.Add("c.country_id = ?", filters.CountryID)
	}
	return shared.List(ctx, r.pool, "companies: list", companyTable, &w, filters, scanCompany)
}

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	return shared.One(ctx, r.pool, "companies: get",
		`SELECT `+companyColumns+` FROM companies`+companyJoins+` WHERE c.id = $1`, scanCompany, id)
}

// Create inserts and reads back the joined row in one statement.
func (r *repository) Create(ctx context.Context, in CreateInput) (Company, error) {
	return shared.One(ctx, r.pool, "companies: create",
		`WITH c AS (
			INSERT INTO companies (name, email, country_id, director_id) VALUES ($1, $2, $3, $4) RETURNING *
		)
		SELECT `+companyColumns+` FROM c JOIN countries co ON co.id = c.country_id LEFT JOIN users d ON d.id = c.director_id`,
		scanCompany, in.Name, in.Email, in.CountryID, in.DirectorID)
}

func (r *repository) Update(ctx context.Context, id int64, in UpdateInput) (Company, error) {
	return shared.One(ctx, r.pool, "companies: update",
		`WITH c AS (
			UPDATE companies SET
				name = COALESCE($2, name),
				email = COALESCE($3, email),
				country_id = COALESCE($4, country_id),
				director_id = COALESCE($5, director_id),
				updated_at = NOW()
			WHERE id = $1 RETURNING *
		)
		SELECT `+companyColumns+` FROM c JOIN countries co ON co.id = c.country_id LEFT JOIN users d ON d.id = c.director_id`,
		scanCompany, id, in.Name, in.Email, in.CountryID, in.DirectorID)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return shared.Exec(ctx, r.pool, "companies: delete", `DELETE FROM companies WHERE id = $1`, id)
}
