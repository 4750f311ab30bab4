package rbac

import "github.com/stationhub/stationhub/internal/shared"

// Authorize decides whether set satisfies the required (resource, action)
// pair. A permission matches when it names the pair exactly, when it grants
// ActionManage on the resource, or when it is the global (admin, manage)
// wildcard. Stored tags are normalised on write; only the requirement is
// normalised here.
func Authorize(set EffectiveSet, resource, action string) bool {
	resource = normalizeTag(resource)
	action = normalizeTag(action)
	for _, p := range set {
		if allows(p, resource, action) {
			return true
		}
	}
	return false
}

func allows(p Permission, resource, action string) bool {
	if p.Resource == shared.ResourceAdmin && p.Action == shared.ActionManage {
		return true
	}
	if p.Resource != resource {
		return false
	}
	return p.Action == action || p.Action == shared.ActionManage
}
