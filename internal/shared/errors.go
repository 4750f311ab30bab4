package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. Unknown usernames and wrong
	// passwords both map here.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenInvalid covers bad signatures, malformed, expired and revoked tokens.
	ErrTokenInvalid = errors.New("invalid or expired token")
	// ErrPermissionDenied is returned when the authorization gate rejects an action.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrPolicyViolation indicates a request that would break a system invariant.
	ErrPolicyViolation = errors.New("policy violation")
	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrInternal marks store or crypto failures whose details must not reach clients.
	ErrInternal = errors.New("internal error")
)

// ErrLastAdmin is the policy violation raised when deleting the final admin user.
var ErrLastAdmin = fmt.Errorf("%w: cannot delete the last admin user", ErrPolicyViolation)

// ErrLastAdminDemotion is raised when the final admin user would lose the admin role.
var ErrLastAdminDemotion = fmt.Errorf("%w: cannot change the role of the last admin user", ErrPolicyViolation)

// UserSafeMessage returns an error message that is safe to show to API clients.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLastAdmin):
		return "Cannot delete the last admin user"
	case errors.Is(err, ErrLastAdminDemotion):
		return "Cannot change the role of the last admin user"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, ErrTokenInvalid):
		return "Invalid or expired token"
	case errors.Is(err, ErrPermissionDenied):
		return "Permission denied"
	case errors.Is(err, ErrPolicyViolation):
		return "Request violates a system policy"
	case errors.Is(err, ErrNotFound):
		return "Resource not found"
	case errors.Is(err, ErrConflict):
		return "Resource already exists"
	case errors.Is(err, ErrValidation):
		return err.Error()
	default:
		return "Internal server error"
	}
}
