package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/stationhub/stationhub/internal/platform/httpx"
	"github.com/stationhub/stationhub/internal/rbac"
	"github.com/stationhub/stationhub/internal/shared"
)

// Authenticate verifies the bearer token and attaches the principal together
// with a per-request permission cache.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, shared.ErrTokenInvalid)
			return
		}
		user, claims, err := h.service.VerifyToken(r.Context(), token)
		if err != nil {
			if httpx.StatusFor(err) >= http.StatusInternalServerError {
				h.logger.Error("verify token", slog.Any("error", err))
			} else {
				h.logger.Debug("token rejected", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), Principal(user, claims))
		ctx = rbac.WithRequestCache(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
