// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides roles, identities and token helpers.
//
// # Architecture
//
// The library backend issues and verifies its own tokens. This package only
// reads the public claims of those tokens (expiry, subject, role) so the
// gateway can drop a session before the backend starts rejecting it. It never
// signs anything and never treats an unverified claim as an authorization
// decision on its own.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// roleClaimKeys lists the claim names the backend has used for the role.
var roleClaimKeys = []string{
	"role",
	"http://schemas.microsoft.com/ws/2008/06/identity/claims/role",
}

// TokenInfo holds the public claims read from a backend bearer token.
type TokenInfo struct {
	Subject   string
	Role      Role
	HasRole   bool
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that lies before now.
// Tokens without an exp claim never expire client-side.
func (info TokenInfo) Expired(now time.Time) bool {
	return !info.ExpiresAt.IsZero() && !now.Before(info.ExpiresAt)
}

// InspectToken decodes the claims of a JWT without verifying its signature.
//
// Opaque (non-JWT) tokens are not an error for the caller's purposes: the
// backend may switch token formats, so they yield an empty [TokenInfo] and
// ok=false.
func InspectToken(tokenString string) (info TokenInfo, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return TokenInfo{}, false
	}

	if subject, err := claims.GetSubject(); err == nil {
		info.Subject = subject
	}

	if expiresAt, err := claims.GetExpirationTime(); err == nil && expiresAt != nil {
		info.ExpiresAt = expiresAt.Time
	}

	for _, key := range roleClaimKeys {
		if raw, found := claims[key]; found {
			info.Role = ParseRole(fmt.Sprint(raw))
			info.HasRole = true
			break
		}
	}

	return info, true
}
