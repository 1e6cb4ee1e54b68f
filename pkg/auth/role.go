package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of operator roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleGuard  Role = "guard"
	RoleViewer Role = "viewer"
)

// ParseRole validates an internal role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleGuard, RoleViewer:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
}

// portalRoles translates the external portal's permission vocabulary.
var portalRoles = map[string]Role{
	"admin":      RoleAdmin,
	"site_admin": RoleGuard,
	"user":       RoleViewer,
}

// MapPermission maps a portal permission level to a role, ignoring case.
// Anything outside the known vocabulary is rejected rather than downgraded.
func MapPermission(level string) (Role, error) {
	role, ok := portalRoles[strings.ToLower(level)]
	if !ok {
		return "", fmt.Errorf("%w: unmapped permission level %q", ErrInvalidInput, level)
	}

	return role, nil
}

// RoleSet is the set of roles an endpoint accepts.
type RoleSet map[Role]struct{}

// Roles builds a RoleSet.
func Roles(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}

	return set
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]

	return ok
}
