package rbac

import "time"

// Role represents a named bundle of baseline permissions.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Permission represents an atomic (resource, action) capability. It doubles as
// the permission descriptor exposed to API clients.
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// Override is a per-user exception to the role baseline. Grant=true adds the
// permission, Grant=false removes it.
type Override struct {
	PermissionID int64 `json:"permissionId"`
	Grant        bool  `json:"override"`
}

// UserPermission is an override row joined with its permission.
type UserPermission struct {
	Permission
	Override bool `json:"override"`
}

// Grants is one consistent read of everything the resolver needs for a user.
type Grants struct {
	UserID    int64
	RoleID    int64
	RoleName  string
	Baseline  []Permission
	Overrides []UserPermission
}

// PermissionInput carries the editable fields of a permission.
type PermissionInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Resource    string `json:"resource" validate:"required,max=255"`
	Action      string `json:"action" validate:"required,max=255"`
	Description string `json:"description" validate:"max=255"`
}

// AdminAccount describes the default administrator created on first boot.
type AdminAccount struct {
	Username     string
	Email        string
	PhoneNumber  string
	PasswordHash string
}
