package auth

import (
	"time"

	"github.com/stationhub/stationhub/internal/rbac"
)

// User represents an authenticated user account joined with its role.
type User struct {
	ID              int64
	Username        string
	Email           string
	PhoneNumber     string
	PasswordHash    string
	RoleID          int64
	RoleName        string
	RoleDescription string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RoleSummary is the role block embedded in profile responses.
type RoleSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Profile is the client-facing view of a user with effective permissions.
type Profile struct {
	ID          int64             `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	PhoneNumber string            `json:"phoneNumber"`
	Role        RoleSummary       `json:"role"`
	Permissions []rbac.Permission `json:"permissions"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Profile   `json:"user"`
}

func newProfile(u User, set rbac.EffectiveSet) Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        RoleSummary{ID: u.RoleID, Name: u.RoleName, Description: u.RoleDescription},
		Permissions: set.List(),
	}
}
