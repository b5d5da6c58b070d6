// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "strings"

// # User Roles

// Role represents the authorization level granted to an account by the backend.
type Role string

const (
	// Unrestricted access to the administration screens
	RoleAdmin Role = "Admin"

	// Default role for registered library members
	RoleUser Role = "User"
)

// ParseRole maps a backend role string onto a known [Role].
//
// The backend is not consistent about casing, so the comparison is
// case-insensitive. Unknown values fall back to [RoleUser].
func ParseRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r Role) AtLeast(target Role) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r Role) level() int {
	switch r {
	case RoleAdmin:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}

// # Identity

// Principal is the identity attached to an authenticated request.
//
// It deliberately excludes the bearer token, which travels separately so that
// logging a principal can never leak credentials.
type Principal struct {
	UserID        int64
	Name          string
	Email         string
	Role          Role
	EmailVerified bool
}

// IsAdmin reports whether the principal holds the Admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
