package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/stationhub/stationhub/internal/platform/httpx"
	"github.com/stationhub/stationhub/internal/shared"
)

// Resolver computes the effective permission set of a user.
type Resolver interface {
	ResolvePermissions(ctx context.Context, userID int64) (EffectiveSet, error)
}

// DecisionRecorder observes authorization outcomes.
type DecisionRecorder interface {
	ObserveAuthz(resource, action string, allowed bool)
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Resolver Resolver
	Logger   *slog.Logger
	Metrics  DecisionRecorder
}

// Requirement is a (resource, action) pair a route demands.
type Requirement struct {
	Resource string
	Action   string
}

// Require guards a route with a single (resource, action) requirement.
func (m Middleware) Require(resource, action string) func(http.Handler) http.Handler {
	return m.RequireAny(Requirement{Resource: resource, Action: action})
}

// RequireAny allows the request when any requirement is satisfied.
func (m Middleware) RequireAny(reqs ...Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(reqs) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrTokenInvalid)
				return
			}
			ctx, set, err := m.effective(r.Context(), principal.UserID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					// The token outlived its user.
					httpx.RespondError(w, shared.ErrTokenInvalid)
					return
				}
				m.logger().Error("rbac resolve permissions", slog.Int64("user_id", principal.UserID), slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}
			for _, req := range reqs {
				allowed := Authorize(set, req.Resource, req.Action)
				if m.Metrics != nil {
					m.Metrics.ObserveAuthz(req.Resource, req.Action, allowed)
				}
				if allowed {
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
			m.logger().Warn("permission denied",
				slog.Int64("user_id", principal.UserID),
				slog.String("role", principal.RoleName),
				slog.Any("required", reqs),
			)
			httpx.RespondError(w, shared.ErrPermissionDenied)
		})
	}
}

// effective returns the request-scoped effective set, resolving it once.
func (m Middleware) effective(ctx context.Context, userID int64) (context.Context, EffectiveSet, error) {
	if memo, ok := ctx.Value(effectiveKey{}).(*effectiveMemo); ok && memo.userID == userID {
		set, err := memo.get(ctx, m.Resolver)
		return ctx, set, err
	}
	memo := &effectiveMemo{userID: userID}
	ctx = context.WithValue(ctx, effectiveKey{}, memo)
	set, err := memo.get(ctx, m.Resolver)
	return ctx, set, err
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

type effectiveKey struct{}

type effectiveMemo struct {
	userID int64
	once   sync.Once
	set    EffectiveSet
	err    error
}

func (e *effectiveMemo) get(ctx context.Context, r Resolver) (EffectiveSet, error) {
	e.once.Do(func() {
		e.set, e.err = r.ResolvePermissions(ctx, e.userID)
	})
	return e.set, e.err
}

// WithRequestCache installs an empty per-request memo so that every Require
// in the chain and the handler share one resolution.
func WithRequestCache(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, effectiveKey{}, &effectiveMemo{userID: userID})
}

// EffectiveFromContext resolves (or reuses) the caller's effective set.
func EffectiveFromContext(ctx context.Context, r Resolver) (EffectiveSet, error) {
	p, ok := shared.PrincipalFromContext(ctx)
	if !ok {
		return nil, shared.ErrTokenInvalid
	}
	if memo, ok := ctx.Value(effectiveKey{}).(*effectiveMemo); ok && memo.userID == p.UserID {
		return memo.get(ctx, r)
	}
	return r.ResolvePermissions(ctx, p.UserID)
}
