// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"github.com/taibuivan/libro/internal/platform/constants"
	"github.com/taibuivan/libro/internal/platform/sec"
)

// # Route Decisions

// Decision is the outcome of a route guard: either Allow, or a redirect.
type Decision struct {
	Allow    bool
	Redirect string
}

// Allowed is the decision that lets navigation proceed.
var Allowed = Decision{Allow: true}

// RedirectTo builds a redirecting decision.
func RedirectTo(path string) Decision {
	return Decision{Redirect: path}
}

/*
ResolveRoute decides whether a visitor may open a route.

Decision table:

	session | required role | role matches | outcome
	--------+---------------+--------------+------------------
	none    | any           | n/a          | redirect to login
	present | none          | n/a          | allow
	present | Admin         | yes          | allow
	present | Admin         | no           | redirect to books

An empty required role means "signed in, any role".
*/
func ResolveRoute(session *Session, required sec.Role) Decision {
	if session == nil {
		return RedirectTo(constants.PathLogin)
	}

	if required == "" || session.Role.AtLeast(required) {
		return Allowed
	}

	return RedirectTo(constants.PathBooks)
}

// PostLoginPath is the landing page after sign-in.
func PostLoginPath(session *Session) string {
	if session != nil && session.Principal().IsAdmin() {
		return constants.PathAdmin
	}
	return constants.PathBooks
}
