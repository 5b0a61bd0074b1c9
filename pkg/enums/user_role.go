package enums

import "slices"

// UserRole is carried in access tokens.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool { return slices.Contains([]UserRole{UserRoleUser, UserRoleAdmin}, r) }
