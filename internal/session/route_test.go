// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/libro/internal/platform/sec"
	"github.com/taibuivan/libro/internal/session"
)

/*
TestResolveRoute covers every row of the route decision table.
*/
func TestResolveRoute(t *testing.T) {
	user := &session.Session{UserID: 1, Role: sec.RoleUser}
	admin := &session.Session{UserID: 2, Role: sec.RoleAdmin}

	tests := []struct {
		name     string
		session  *session.Session
		required sec.Role
		want     session.Decision
	}{
		{"anonymous_open_route", nil, "", session.RedirectTo("/login")},
		{"anonymous_admin_route", nil, sec.RoleAdmin, session.RedirectTo("/login")},
		{"user_open_route", user, "", session.Allowed},
		{"admin_open_route", admin, "", session.Allowed},
		{"admin_admin_route", admin, sec.RoleAdmin, session.Allowed},
		{"user_admin_route", user, sec.RoleAdmin, session.RedirectTo("/books")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, session.ResolveRoute(tt.session, tt.required))
		})
	}
}

/*
TestPostLoginPath checks the landing page per role.
*/
func TestPostLoginPath(t *testing.T) {
	assert.Equal(t, "/admin", session.PostLoginPath(&session.Session{Role: sec.RoleAdmin}))
	assert.Equal(t, "/books", session.PostLoginPath(&session.Session{Role: sec.RoleUser}))
	assert.Equal(t, "/books", session.PostLoginPath(nil))
}
