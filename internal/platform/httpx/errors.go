// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/stationhub/stationhub/internal/shared"
)

// StatusFor maps a domain error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, shared.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrPolicyViolation), errors.Is(err, shared.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807. Internal
// errors are masked; callers log the full error before responding.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	Problem(w, status, http.StatusText(status), shared.UserSafeMessage(err))
}
