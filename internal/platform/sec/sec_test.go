// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libro/internal/platform/sec"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

/*
TestInspectToken_ReadsClaims checks that expiry, subject and role are read without a key.
*/
func TestInspectToken_ReadsClaims(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := signed(t, jwt.MapClaims{
		"sub":  "17",
		"exp":  expiry.Unix(),
		"role": "admin",
	})

	info, ok := sec.InspectToken(token)
	require.True(t, ok)

	assert.Equal(t, "17", info.Subject)
	assert.True(t, info.HasRole)
	assert.Equal(t, sec.RoleAdmin, info.Role)
	assert.True(t, info.ExpiresAt.Equal(expiry))

	assert.False(t, info.Expired(expiry.Add(-time.Minute)))
	assert.True(t, info.Expired(expiry))
}

/*
TestInspectToken_DotNetRoleClaim checks the long-form role claim name.
*/
func TestInspectToken_DotNetRoleClaim(t *testing.T) {
	token := signed(t, jwt.MapClaims{
		"http://schemas.microsoft.com/ws/2008/06/identity/claims/role": "User",
	})

	info, ok := sec.InspectToken(token)
	require.True(t, ok)
	assert.Equal(t, sec.RoleUser, info.Role)
	assert.False(t, info.Expired(time.Now()), "no exp claim means no client-side expiry")
}

/*
TestInspectToken_Opaque verifies that non-JWT tokens are tolerated.
*/
func TestInspectToken_Opaque(t *testing.T) {
	_, ok := sec.InspectToken("not-a-jwt")
	assert.False(t, ok)
}

/*
TestRole_ParseAndHierarchy covers role parsing and ordering.
*/
func TestRole_ParseAndHierarchy(t *testing.T) {
	assert.Equal(t, sec.RoleAdmin, sec.ParseRole(" ADMIN "))
	assert.Equal(t, sec.RoleUser, sec.ParseRole("User"))
	assert.Equal(t, sec.RoleUser, sec.ParseRole("librarian"))

	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleUser))
	assert.False(t, sec.RoleUser.AtLeast(sec.RoleAdmin))

	var nobody *sec.Principal
	assert.False(t, nobody.IsAdmin())
	assert.True(t, (&sec.Principal{Role: sec.RoleAdmin}).IsAdmin())
}

/*
TestSecureToken verifies token generation and hashing.
*/
func TestSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, sec.HashToken(first), 64)
	assert.Equal(t, sec.HashToken(first), sec.HashToken(first))
}
