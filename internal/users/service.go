package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stationhub/stationhub/internal/platform/db"
	"github.com/stationhub/stationhub/internal/rbac"
	"github.com/stationhub/stationhub/internal/shared"
)

// PasswordHasher hashes plaintext passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// serializableAttempts bounds retries of a guarded write that lost a
// serialization race.
const serializableAttempts = 3

// Service handles user business logic.
type Service struct {
	repo   Repository
	hasher PasswordHasher
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo Repository, hasher PasswordHasher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, hasher: hasher, logger: logger}
}

// ListUsers returns one page of users.
func (s *Service) ListUsers(ctx context.Context, filter ListFilter) (UserPage, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	users, total, err := s.repo.ListUsers(ctx, filter)
	if err != nil {
		return UserPage{}, err
	}
	if users == nil {
		users = []User{}
	}
	return UserPage{Users: users, Pagination: shared.NewPagination(filter.Page, filter.Limit, total)}, nil
}

// GetUser fetches a user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser inserts a user and its initial overrides in one transaction.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return User{}, fmt.Errorf("users: create: %w: %w", shared.ErrInternal, err)
	}
	overrides := rbac.LastFlagWins(req.Permissions)
	input := NewUser{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		PasswordHash: hash,
		RoleID:       req.RoleID,
	}
	var id int64
	err = s.repo.WithTx(ctx, db.ReadWrite, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetRole(ctx, input.RoleID); err != nil {
			return fmt.Errorf("role %d: %w", input.RoleID, err)
		}
		if err := permissionsExist(ctx, tx, overrides); err != nil {
			return err
		}
		var err error
		if id, err = tx.InsertUser(ctx, input); err != nil {
			return err
		}
		if len(overrides) > 0 {
			if err := tx.ReplaceUserPermissions(ctx, id, overrides); err != nil {
				return err
			}
		}
		return tx.RecordAudit(ctx, shared.NewAuditLog(ctx, "users.create", "user", id, map[string]any{"role_id": input.RoleID, "overrides": len(overrides)}))
	})
	if err != nil {
		return User{}, fmt.Errorf("users: create: %w", err)
	}
	s.logger.Info("user created", slog.Int64("user_id", id), slog.Int64("role_id", input.RoleID))
	return s.repo.GetUser(ctx, id)
}

// UpdateUser applies the supplied changes. The password is re-hashed only
// when a new one is given; moving the last admin to another role is refused.
func (s *Service) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (User, error) {
	var changes UserChanges
	if v := strings.TrimSpace(req.Username); v != "" {
		changes.Username = &v
	}
	if v := strings.ToLower(strings.TrimSpace(req.Email)); v != "" {
		changes.Email = &v
	}
	if v := strings.TrimSpace(req.PhoneNumber); v != "" {
		changes.PhoneNumber = &v
	}
	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return User{}, fmt.Errorf("users: update: %w: %w", shared.ErrInternal, err)
		}
		changes.PasswordHash = &hash
	}
	if req.RoleID > 0 {
		changes.RoleID = &req.RoleID
	}

	err := s.guarded(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.LockUser(ctx, id)
		if err != nil {
			return err
		}
		if changes.RoleID != nil && *changes.RoleID != current.RoleID {
			role, err := tx.GetRole(ctx, *changes.RoleID)
			if err != nil {
				return fmt.Errorf("role %d: %w", *changes.RoleID, err)
			}
			if current.RoleName == shared.RoleAdmin && role.Name != shared.RoleAdmin {
				if err := ensureOtherAdmin(ctx, tx, shared.ErrLastAdminDemotion); err != nil {
					return err
				}
			}
		}
		if err := tx.UpdateUser(ctx, id, changes); err != nil {
			return err
		}
		return tx.RecordAudit(ctx, shared.NewAuditLog(ctx, "users.update", "user", id, map[string]any{
			"password_changed": changes.PasswordHash != nil,
			"role_changed":     changes.RoleID != nil,
		}))
	})
	if err != nil {
		return User{}, fmt.Errorf("users: update %d: %w", id, err)
	}
	return s.repo.GetUser(ctx, id)
}

// DeleteUser removes a user. Deleting the only remaining admin-role user
// fails with shared.ErrLastAdmin. The count and the delete run in one
// serializable transaction holding row locks on every admin user, so two
// concurrent deletions cannot both pass the check.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	err := s.guarded(ctx, func(ctx context.Context, tx TxRepository) error {
		user, err := tx.LockUser(ctx, id)
		if err != nil {
			return err
		}
		if user.RoleName == shared.RoleAdmin {
			if err := ensureOtherAdmin(ctx, tx, shared.ErrLastAdmin); err != nil {
				return err
			}
		}
		if err := tx.DeleteUser(ctx, id); err != nil {
			return err
		}
		return tx.RecordAudit(ctx, shared.NewAuditLog(ctx, "users.delete", "user", id, map[string]any{"username": user.Username, "role": user.RoleName}))
	})
	if err != nil {
		if errors.Is(err, shared.ErrPolicyViolation) {
			s.logger.Warn("last admin deletion refused", slog.Int64("user_id", id))
		}
		return fmt.Errorf("users: delete %d: %w", id, err)
	}
	s.logger.Info("user deleted", slog.Int64("user_id", id))
	return nil
}

// guarded runs fn in a serializable transaction, retrying lost races.
func (s *Service) guarded(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	var err error
	for attempt := 1; attempt <= serializableAttempts; attempt++ {
		err = s.repo.WithTx(ctx, db.Serializable, fn)
		if !errors.Is(err, db.ErrSerialization) {
			return err
		}
		s.logger.Debug("serializable retry", slog.Int("attempt", attempt))
	}
	return err
}

func ensureOtherAdmin(ctx context.Context, tx TxRepository, violation error) error {
	n, err := tx.LockAdmins(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return violation
	}
	return nil
}

func permissionsExist(ctx context.Context, tx TxRepository, overrides []rbac.Override) error {
	if len(overrides) == 0 {
		return nil
	}
	ids := make([]int64, len(overrides))
	for i, o := range overrides {
		ids[i] = o.PermissionID
	}
	n, err := tx.CountPermissions(ctx, ids)
	if err != nil {
		return err
	}
	if n != len(ids) {
		return fmt.Errorf("%d of %d permissions: %w", len(ids)-n, len(ids), shared.ErrNotFound)
	}
	return nil
}
