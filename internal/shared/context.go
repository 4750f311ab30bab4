package shared

import (
	"context"
	"time"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID    int64
	RoleID    int64
	RoleName  string
	TokenID   string
	ExpiresAt time.Time
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
