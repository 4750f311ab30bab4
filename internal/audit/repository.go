package audit

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	mdshared "github.com/stationhub/stationhub/internal/masterdata/shared"
	"github.com/stationhub/stationhub/internal/platform/db"
)

// Window selects rows newest first. Limit 0 returns every match.
type Window struct {
	Filters TimelineFilters
	Offset  int
	Limit   int
}

// Repository reads audit_logs.
type Repository interface {
	Timeline(ctx context.Context, w Window) ([]TimelineRow, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Timeline(ctx context.Context, w Window) ([]TimelineRow, error) {
	var where mdshared.Where
	f := w.Filters
	if !f.From.IsZero() {
		where.Add("a.occurred_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		where.Add("a.occurred_at < ?", f.To)
	}
	if f.ActorID > 0 {
		where.Add("a.actor_id = ?", f.ActorID)
	}
	if f.Entity != "" {
		where.Add("a.entity = ?", f.Entity)
	}
	if f.Action != "" {
		where.Add("a.action = ?", f.Action)
	}
	query := `SELECT a.id, a.occurred_at, a.actor_id, COALESCE(u.username, ''), a.action, a.entity, a.entity_id, a.meta
		FROM audit_logs a LEFT JOIN users u ON u.id = a.actor_id` + where.SQL() + ` ORDER BY a.occurred_at DESC, a.id DESC`
	args := where.Args
	if w.Limit > 0 {
		args = append(args, w.Limit, w.Offset)
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.MapError("audit: timeline", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TimelineRow, error) {
		var t TimelineRow
		err := row.Scan(&t.ID, &t.At, &t.ActorID, &t.Actor, &t.Action, &t.Entity, &t.EntityID, &t.Meta)
		return t, err
	})
	return out, db.MapError("audit: timeline", err)
}
