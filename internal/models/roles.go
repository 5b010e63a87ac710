package models

import "strings"

// Role is the campus role recorded on a user and carried in tokens.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// DefaultRole is assigned when signup omits a role.
const DefaultRole = RoleStudent

// Known reports whether r is one of the roles the UI offers.
func (r Role) Known() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

// RoleOrDefault trims the raw value and falls back to DefaultRole when empty.
// Unrecognized values are returned unchanged.
func RoleOrDefault(raw string) Role {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultRole
	}
	return Role(trimmed)
}
