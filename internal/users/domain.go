package users

import (
	"time"

	"github.com/stationhub/stationhub/internal/rbac"
	"github.com/stationhub/stationhub/internal/shared"
)

// User represents a user account for management.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	RoleID      int64     `json:"roleId"`
	RoleName    string    `json:"roleName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateUserRequest is the payload of POST /api/users.
type CreateUserRequest struct {
	Username    string          `json:"username" validate:"required,min=3,max=50"`
	Email       string          `json:"email" validate:"required,email,max=255"`
	Password    string          `json:"password" validate:"required,min=8,max=72"`
	PhoneNumber string          `json:"phoneNumber" validate:"omitempty,max=32"`
	RoleID      int64           `json:"roleId" validate:"required,gt=0"`
	Permissions []rbac.Override `json:"permissions" validate:"omitempty,dive"`
}

// UpdateUserRequest carries optional changes. Empty fields are left untouched.
type UpdateUserRequest struct {
	Username    string `json:"username" validate:"omitempty,min=3,max=50"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
	Password    string `json:"password" validate:"omitempty,min=8,max=72"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=32"`
	RoleID      int64  `json:"roleId" validate:"omitempty,gt=0"`
}

// NewUser is a validated user ready for insertion.
type NewUser struct {
	Username     string
	Email        string
	PhoneNumber  string
	PasswordHash string
	RoleID       int64
}

// UserChanges is the set of columns an update writes. Nil fields are kept.
type UserChanges struct {
	Username     *string
	Email        *string
	PhoneNumber  *string
	PasswordHash *string
	RoleID       *int64
}

// ListFilter narrows user listings.
type ListFilter struct {
	Search string
	RoleID int64
	Page   int
	Limit  int
}

// UserPage is one page of users.
type UserPage struct {
	Users      []User            `json:"users"`
	Pagination shared.Pagination `json:"pagination"`
}

// PermissionsRequest replaces a user's overrides. Permissions lists grant
// ids; Overrides carries explicit grant/deny flags and wins when present.
type PermissionsRequest struct {
	Permissions []int64         `json:"permissions"`
	Overrides   []rbac.Override `json:"overrides"`
}
