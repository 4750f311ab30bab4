package shared

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stationhub/stationhub/internal/platform/db"
)

// Querier is the subset of pgxpool.Pool and pgx.Tx used by master data stores.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Table describes the source of a paged listing.
type Table struct {
	// From is the FROM clause body, joins included.
	From        string
	Columns     string
	Sort        map[string]string
	DefaultSort string
}

// List counts and pages the rows of t matching where.
func List[T any](ctx context.Context, q Querier, op string, t Table, where *Where, f ListFilters, scan pgx.RowToFunc[T]) ([]T, int, error) {
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM `+t.From+where.SQL(), where.Args...).Scan(&total); err != nil {
		return nil, 0, db.MapError(op, err)
	}
	suffix, args := where.Page(f)
	rows, err := q.Query(ctx, `SELECT `+t.Columns+` FROM `+t.From+where.SQL()+` ORDER BY `+f.OrderBy(t.Sort, t.DefaultSort)+suffix, args...)
	if err != nil {
		return nil, 0, db.MapError(op, err)
	}
	items, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, 0, db.MapError(op, err)
	}
	return items, total, nil
}

// One runs query and expects exactly one row.
func One[T any](ctx context.Context, q Querier, op, query string, scan pgx.RowToFunc[T], args ...any) (T, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		var zero T
		return zero, db.MapError(op, err)
	}
	item, err := pgx.CollectExactlyOneRow(rows, scan)
	return item, db.MapError(op, err)
}

// Exec runs a statement that must touch at least one row.
func Exec(ctx context.Context, q Querier, op, query string, args ...any) error {
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return db.MapError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return db.MapError(op, pgx.ErrNoRows)
	}
	return nil
}
