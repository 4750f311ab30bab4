package rbac

import "sort"

// EffectiveSet is the resolved permission set of a user, keyed by permission id.
type EffectiveSet map[int64]Permission

// Resolve merges the role baseline with per-user overrides. The baseline is
// copied first; overrides are applied afterwards regardless of row order, so a
// grant always adds and a deny always removes.
func Resolve(baseline []Permission, overrides []UserPermission) EffectiveSet {
	set := make(EffectiveSet, len(baseline)+len(overrides))
	for _, p := range baseline {
		set[p.ID] = p
	}
	for _, o := range overrides {
		if o.Override {
			set[o.ID] = o.Permission
		}
	}
	// Denies run in a separate pass so a grant row for the same id later in
	// the slice cannot resurrect a denied permission. The unique index on
	// (user_id, permission_id) keeps that case out of real data anyway.
	for _, o := range overrides {
		if !o.Override {
			delete(set, o.ID)
		}
	}
	return set
}

// Has reports whether the set contains the permission id.
func (s EffectiveSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// List returns the permissions ordered by resource, action and id.
func (s EffectiveSet) List() []Permission {
	out := make([]Permission, 0, len(s))
	for _, p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		if out[i].Action != out[j].Action {
			return out[i].Action < out[j].Action
		}
		return out[i].ID < out[j].ID
	})
	return out
}
