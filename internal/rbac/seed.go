package rbac

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stationhub/stationhub/internal/platform/db"
	"github.com/stationhub/stationhub/internal/shared"
)

// Seed creates the default roles, the permission catalog, the role baselines
// and, when admin is non-nil, the default administrator. It runs under an
// advisory lock and does nothing once any role exists, so repeated or
// concurrent calls are safe. The returned flag reports whether data was written.
func (s *Service) Seed(ctx context.Context, admin *AdminAccount) (bool, error) {
	seeded := false
	err := s.repo.WithTx(ctx, db.ReadWrite, func(ctx context.Context, tx TxRepository) error {
		if err := tx.AcquireSeedLock(ctx); err != nil {
			return err
		}
		n, err := tx.CountRoles(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		byPair := make(map[Pair]int64)
		var all []int64
		for _, def := range DefaultCatalog() {
			def, err := normalizePermissionInput(def)
			if err != nil {
				return err
			}
			p, err := tx.EnsurePermission(ctx, def)
			if err != nil {
				return err
			}
			byPair[Pair{Resource: p.Resource, Action: p.Action}] = p.ID
			all = append(all, p.ID)
		}

		roleIDs := make(map[string]int64)
		for _, def := range DefaultRoles() {
			role, err := tx.InsertRole(ctx, def.Name, def.Description)
			if err != nil {
				return err
			}
			roleIDs[def.Name] = role.ID
			ids := make([]int64, 0, len(def.Grants))
			for _, g := range def.Grants {
				id, ok := byPair[g]
				if !ok {
					return fmt.Errorf("rbac: seed role %s: unknown permission %s:%s", def.Name, g.Resource, g.Action)
				}
				ids = append(ids, id)
			}
			if err := tx.ReplaceRolePermissions(ctx, role.ID, uniqueIDs(ids)); err != nil {
				return err
			}
		}

		if admin != nil {
			exists, err := tx.UserExists(ctx, admin.Username)
			if err != nil {
				return err
			}
			if !exists {
				userID, err := tx.InsertUser(ctx, roleIDs[shared.RoleAdmin], *admin)
				if err != nil {
					return err
				}
				grants := make([]Override, len(all))
				for i, id := range all {
					grants[i] = Override{PermissionID: id, Grant: true}
				}
				if err := tx.ReplaceUserPermissions(ctx, userID, grants); err != nil {
					return err
				}
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rbac: seed defaults: %w", err)
	}
	if seeded {
		s.logger.Info("default roles and permissions seeded", slog.Int("permissions", len(DefaultCatalog())))
	} else {
		s.logger.Debug("seed skipped, roles already present")
	}
	return seeded, nil
}
