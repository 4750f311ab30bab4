package shared

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// AuditLog represents a record stored in audit_logs.
type AuditLog struct {
	ActorID  int64
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// NewAuditLog builds an entry for the entity with numeric id, attributed to
// the principal in ctx. ActorID stays zero for unauthenticated callers such as the seed.
func NewAuditLog(ctx context.Context, action, entity string, id int64, meta map[string]any) AuditLog {
	var actor int64
	if p, ok := PrincipalFromContext(ctx); ok {
		actor = p.UserID
	}
	return AuditLog{ActorID: actor, Action: action, Entity: entity, EntityID: strconv.FormatInt(id, 10), Meta: meta}
}

// Execer is satisfied by *pgxpool.Pool and pgx.Tx so audit rows can share the
// caller's transaction.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RecordAudit persists the log entry on the supplied connection or transaction.
func RecordAudit(ctx context.Context, db Execer, log AuditLog) error {
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	var at *time.Time
	if !log.At.IsZero() {
		at = &log.At
	}
	_, err = db.Exec(ctx, `INSERT INTO audit_logs (actor_id, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`, log.ActorID, log.Action, log.Entity, log.EntityID, metaJSON, at)
	return err
}
