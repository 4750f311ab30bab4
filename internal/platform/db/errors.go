package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stationhub/stationhub/internal/shared"
)

// PostgreSQL SQLSTATE codes the repositories translate.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
)

// ErrSerialization signals that a serializable transaction lost a race.
var ErrSerialization = errors.New("platform/db: serialization failure")

// MapError translates driver errors into the shared error taxonomy. Errors
// that do not match a known case are wrapped with shared.ErrInternal.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, shared.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, shared.ErrConflict, pgErr.ConstraintName)
		case codeForeignKeyViolation:
			// Deleting a parent that children still point at reports the same
			// code as inserting a child whose parent is missing.
			if strings.Contains(pgErr.Detail, "is still referenced") {
				return fmt.Errorf("%s: %w: still referenced by %s", op, shared.ErrConflict, pgErr.TableName)
			}
			return fmt.Errorf("%s: referenced row: %w", op, shared.ErrNotFound)
		case codeSerializationFailure:
			return fmt.Errorf("%s: %w: %w", op, shared.ErrInternal, ErrSerialization)
		}
	}
	if isTaxonomy(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, shared.ErrInternal, err)
}

func isTaxonomy(err error) bool {
	for _, target := range []error{
		shared.ErrNotFound,
		shared.ErrConflict,
		shared.ErrValidation,
		shared.ErrPolicyViolation,
		shared.ErrInvalidCredentials,
		shared.ErrTokenInvalid,
		shared.ErrPermissionDenied,
		shared.ErrInternal,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
