// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session owns the signed-in identity and gates navigation by role.

# Architecture

A [Manager] is created once per process and injected where needed; there is
no package-level session state. Each session lives in a slot addressed by a
key: the gateway uses one slot per browser cookie, the terminal client a
single fixed slot backed by a file.

Lifecycle:

  - Login (or legacy registration) creates the session and persists it.
  - Restore loads it again after a restart, dropping it once the backend
    token has expired.
  - Logout, token expiry and any 401 from the backend destroy it. The 401 path
    runs synchronously inside the failing call, so the next route decision
    already sees the session gone.
*/
package session

import (
	"context"
	"errors"
	"time"

	"github.com/taibuivan/libro/internal/platform/sec"
)

// ErrNoSession is returned by stores and by [Manager.Restore] when a slot is empty.
var ErrNoSession = errors.New("session: no session")

// Session is the authenticated identity and token for one visitor.
//
// The token is serialised for storage only. HTTP responses use [Profile].
type Session struct {
	UserID        int64     `json:"userId"`
	DisplayName   string    `json:"displayName"`
	Email         string    `json:"email"`
	Role          sec.Role  `json:"role"`
	Token         string    `json:"token"`
	EmailVerified bool      `json:"emailVerified"`
	ExpiresAt     time.Time `json:"expiresAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Expired reports whether the backend token behind the session has expired.
// Sessions without a known expiry only end on logout or a 401.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Principal returns the request identity derived from the session.
func (s *Session) Principal() *sec.Principal {
	return &sec.Principal{
		UserID:        s.UserID,
		Name:          s.DisplayName,
		Email:         s.Email,
		Role:          s.Role,
		EmailVerified: s.EmailVerified,
	}
}

// Profile is the client-safe view of a session.
type Profile struct {
	UserID        int64    `json:"userId"`
	DisplayName   string   `json:"displayName"`
	Email         string   `json:"email"`
	Role          sec.Role `json:"role"`
	EmailVerified bool     `json:"emailVerified"`
	HomePath      string   `json:"homePath"`
}

// Profile returns the client-safe view of s.
func (s *Session) Profile() Profile {
	return Profile{
		UserID:        s.UserID,
		DisplayName:   s.DisplayName,
		Email:         s.Email,
		Role:          s.Role,
		EmailVerified: s.EmailVerified,
		HomePath:      PostLoginPath(s),
	}
}

// # Persistence

// Store persists sessions by slot key.
//
// Implementations must be safe for concurrent use. Load returns
// [ErrNoSession] for an empty or expired slot; Delete of an empty slot is
// not an error.
type Store interface {
	Load(ctx context.Context, key string) (*Session, error)
	Save(ctx context.Context, key string, session *Session, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
