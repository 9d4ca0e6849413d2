package types

import "strings"

// UserRole is the role stored on a user's profile row
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleEditor UserRole = "editor"
	UserRoleViewer UserRole = "viewer"
)

// NormalizeUserRole maps a stored role to a known role.
// Missing or unknown roles fall back to viewer.
func NormalizeUserRole(raw string) UserRole {
	switch UserRole(strings.ToLower(strings.TrimSpace(raw))) {
	case UserRoleAdmin:
		return UserRoleAdmin
	case UserRoleEditor:
		return UserRoleEditor
	default:
		return UserRoleViewer
	}
}

func (r UserRole) String() string {
	return string(r)
}
