package domain

import (
	"slices"
	"strings"
)

// Role is an authority granted to a user.
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// Roles is an ordered set of roles, persisted as a comma-separated list.
type Roles []Role

// ParseAuthorities parses a comma-separated authority list such as
// "ROLE_USER,ROLE_ADMIN". Blank entries and duplicates are dropped.
func ParseAuthorities(s string) Roles {
	var roles Roles

	for _, part := range strings.Split(s, ",") {
		role := Role(strings.TrimSpace(part))
		if role == "" || slices.Contains(roles, role) {
			continue
		}

		roles = append(roles, role)
	}

	return roles
}

// String formats the roles the way they are stored.
func (r Roles) String() string {
	parts := make([]string, len(r))
	for i, role := range r {
		parts[i] = string(role)
	}

	return strings.Join(parts, ",")
}

// ContainsAny reports whether any of want is present.
func (r Roles) ContainsAny(want ...Role) bool {
	for _, role := range want {
		if slices.Contains(r, role) {
			return true
		}
	}

	return false
}
