package rbac

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/stationhub/stationhub/internal/platform/db"
	"github.com/stationhub/stationhub/internal/shared"
)

// Service orchestrates RBAC operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service backed by the provided repository.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// LoadGrants reads the user's role baseline and overrides from one snapshot.
func (s *Service) LoadGrants(ctx context.Context, userID int64) (Grants, error) {
	var g Grants
	err := s.repo.WithTx(ctx, db.Snapshot, func(ctx context.Context, tx TxRepository) error {
		role, err := tx.UserRole(ctx, userID)
		if err != nil {
			return err
		}
		baseline, err := tx.RolePermissions(ctx, role.ID)
		if err != nil {
			return err
		}
		overrides, err := tx.UserOverrides(ctx, userID)
		if err != nil {
			return err
		}
		g = Grants{UserID: userID, RoleID: role.ID, RoleName: role.Name, Baseline: baseline, Overrides: overrides}
		return nil
	})
	if err != nil {
		return Grants{}, fmt.Errorf("rbac: load grants for user %d: %w", userID, err)
	}
	return g, nil
}

// ResolvePermissions returns the effective permission set of a user.
func (s *Service) ResolvePermissions(ctx context.Context, userID int64) (EffectiveSet, error) {
	g, err := s.LoadGrants(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Resolve(g.Baseline, g.Overrides), nil
}

// ListRoles returns all roles with their baseline permissions.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	err := s.repo.WithTx(ctx, db.Snapshot, func(ctx context.Context, tx TxRepository) error {
		var err error
		roles, err = tx.ListRoles(ctx)
		if err != nil {
			return err
		}
		for i := range roles {
			if roles[i].Permissions, err = tx.RolePermissions(ctx, roles[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
	return roles, err
}

// GetRole fetches a role with its baseline permissions.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	var role Role
	err := s.repo.WithTx(ctx, db.Snapshot, func(ctx context.Context, tx TxRepository) error {
		var err error
		if role, err = tx.GetRole(ctx, id); err != nil {
			return err
		}
		role.Permissions, err = tx.RolePermissions(ctx, id)
		return err
	})
	return role, err
}

// ReplaceRolePermissions atomically swaps the baseline of a role for
// permissionIDs. Concurrent resolvers observe either the old or the new set.
func (s *Service) ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) (Role, error) {
	ids := uniqueIDs(permissionIDs)
	var role Role
	err := s.repo.WithTx(ctx, db.ReadWrite, func(ctx context.Context, tx TxRepository) error {
		var err error
		if role, err = tx.LockRole(ctx, roleID); err != nil {
			return err
		}
		if err := ensurePermissionsExist(ctx, tx, ids); err != nil {
			return err
		}
		if err := tx.ReplaceRolePermissions(ctx, roleID, ids); err != nil {
			return err
		}
		if err := tx.RecordAudit(ctx, shared.NewAuditLog(ctx, "rbac.role_permissions.replace", "role", roleID, map[string]any{"permission_ids": ids})); err != nil {
			return err
		}
		role.Permissions, err = tx.RolePermissions(ctx, roleID)
		return err
	})
	if err != nil {
		return Role{}, fmt.Errorf("rbac: replace role %d permissions: %w", roleID, err)
	}
	s.logger.Info("role permissions replaced", slog.Int64("role_id", roleID), slog.Int("count", len(ids)))
	return role, nil
}

// ReplaceUserPermissions replaces every override of a user with grants for
// permissionIDs. An empty list clears all overrides.
func (s *Service) ReplaceUserPermissions(ctx context.Context, userID int64, permissionIDs []int64) ([]UserPermission, error) {
	ids := uniqueIDs(permissionIDs)
	overrides := make([]Override, len(ids))
	for i, id := range ids {
		overrides[i] = Override{PermissionID: id, Grant: true}
	}
	return s.ReplaceUserOverrides(ctx, userID, overrides)
}

// ReplaceUserOverrides replaces every override of a user, allowing explicit
// denies. A permission listed twice keeps its last flag.
func (s *Service) ReplaceUserOverrides(ctx context.Context, userID int64, overrides []Override) ([]UserPermission, error) {
	overrides = LastFlagWins(overrides)
	ids := make([]int64, len(overrides))
	for i, o := range overrides {
		ids[i] = o.PermissionID
	}
	var out []UserPermission
	err := s.repo.WithTx(ctx, db.ReadWrite, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		if err := ensurePermissionsExist(ctx, tx, ids); err != nil {
			return err
		}
		if err := tx.ReplaceUserPermissions(ctx, userID, overrides); err != nil {
			return err
		}
		if err := tx.RecordAudit(ctx, shared.NewAuditLog(ctx, "rbac.user_permissions.replace", "user", userID, map[string]any{"overrides": overrides})); err != nil {
			return err
		}
		var err error
		out, err = tx.UserOverrides(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("rbac: replace user %d permissions: %w", userID, err)
	}
	s.logger.Info("user permissions replaced", slog.Int64("user_id", userID), slog.Int("count", len(overrides)))
	return out, nil
}

// UserOverrides lists the raw override rows of a user.
func (s *Service) UserOverrides(ctx context.Context, userID int64) ([]UserPermission, error) {
	var out []UserPermission
	err := s.repo.WithTx(ctx, db.Snapshot, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.UserRole(ctx, userID); err != nil {
			return err
		}
		var err error
		out, err = tx.UserOverrides(ctx, userID)
		return err
	})
	return out, err
}

// ListPermissions returns the permission catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// GetPermission fetches a permission by ID.
func (s *Service) GetPermission(ctx context.Context, id int64) (Permission, error) {
	return s.repo.GetPermission(ctx, id)
}

// CreatePermission extends the catalog at runtime.
func (s *Service) CreatePermission(ctx context.Context, input PermissionInput) (Permission, error) {
	input, err := normalizePermissionInput(input)
	if err != nil {
		return Permission{}, err
	}
	return s.repo.CreatePermission(ctx, input)
}

// UpdatePermission edits a permission. Empty fields keep their current value.
func (s *Service) UpdatePermission(ctx context.Context, id int64, input PermissionInput) (Permission, error) {
	current, err := s.repo.GetPermission(ctx, id)
	if err != nil {
		return Permission{}, err
	}
	if strings.TrimSpace(input.Name) == "" {
		input.Name = current.Name
	}
	if strings.TrimSpace(input.Resource) == "" {
		input.Resource = current.Resource
	}
	if strings.TrimSpace(input.Action) == "" {
		input.Action = current.Action
	}
	if strings.TrimSpace(input.Description) == "" {
		input.Description = current.Description
	}
	input, err = normalizePermissionInput(input)
	if err != nil {
		return Permission{}, err
	}
	return s.repo.UpdatePermission(ctx, id, input)
}

// DeletePermission removes a permission and its associations.
func (s *Service) DeletePermission(ctx context.Context, id int64) error {
	return s.repo.DeletePermission(ctx, id)
}

func normalizePermissionInput(input PermissionInput) (PermissionInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Resource = normalizeTag(input.Resource)
	input.Action = normalizeTag(input.Action)
	input.Description = strings.TrimSpace(input.Description)
	if input.Name == "" || input.Resource == "" || input.Action == "" {
		return PermissionInput{}, fmt.Errorf("rbac: %w: name, resource and action are required", shared.ErrValidation)
	}
	return input, nil
}

func ensurePermissionsExist(ctx context.Context, tx TxRepository, ids []int64) error {
	if len(ids) == 0 {
		return nil
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

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LastFlagWins collapses repeated permission ids to one override, keeping the
// flag of the last occurrence. The result is ordered by permission id.
func LastFlagWins(in []Override) []Override {
	last := make(map[int64]bool, len(in))
	for _, o := range in {
		last[o.PermissionID] = o.Grant
	}
	out := make([]Override, 0, len(last))
	for id, grant := range last {
		out = append(out, Override{PermissionID: id, Grant: grant})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PermissionID < out[j].PermissionID })
	return out
}
