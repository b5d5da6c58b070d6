// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/internal/session"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeAuth is an in-memory Authenticator.
type fakeAuth struct {
	mu           sync.Mutex
	accounts     map[string]*session.Account
	password     string
	token        string
	registration *session.Registration
	loginErr     error
	profileErr   error
	logouts      []string
}

func newFakeAuth(token string) *fakeAuth {
	return &fakeAuth{
		accounts: map[string]*session.Account{
			"ada@libro.app":   {ID: 1, Email: "ada@libro.app", Name: "Ada", Role: "User", EmailVerified: true},
			"admin@libro.app": {ID: 2, Email: "admin@libro.app", Name: "Grace", Role: "Admin", EmailVerified: true},
		},
		password: "secret1",
		token:    token,
	}
}

func (auth *fakeAuth) Login(_ context.Context, email, password string) (*session.Grant, error) {
	if auth.loginErr != nil {
		return nil, auth.loginErr
	}
	account, found := auth.accounts[email]
	if !found || password != auth.password {
		return nil, session.ErrInvalidCredentials
	}
	return &session.Grant{Token: auth.token, User: account}, nil
}

func (auth *fakeAuth) Register(_ context.Context, name, email, _ string) (*session.Registration, error) {
	if auth.registration != nil {
		return auth.registration, nil
	}
	return &session.Registration{Success: true, RequiresVerification: true}, nil
}

func (auth *fakeAuth) VerifyEmail(_ context.Context, code string) (*session.Acknowledgement, error) {
	if code == "123456" {
		return &session.Acknowledgement{Success: true, Message: "Email verified successfully"}, nil
	}
	return &session.Acknowledgement{Success: false, Message: "Invalid or expired code"}, nil
}

func (auth *fakeAuth) ResendVerification(context.Context, string) (*session.Acknowledgement, error) {
	return &session.Acknowledgement{Success: true, Message: "Verification email sent"}, nil
}

func (auth *fakeAuth) Logout(ctx context.Context) error {
	auth.mu.Lock()
	defer auth.mu.Unlock()
	auth.logouts = append(auth.logouts, "called")
	return apperr.Network(io.EOF)
}

func (auth *fakeAuth) Profile(context.Context) (*session.Account, error) {
	if auth.profileErr != nil {
		return nil, auth.profileErr
	}
	return &session.Account{ID: 1, Email: "ada@libro.app", Name: "Ada Lovelace", Role: "User", EmailVerified: true}, nil
}

// jwtExpiring returns an unsigned-verification JWT whose exp is at.
func jwtExpiring(at time.Time) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": at.Unix()}).SignedString([]byte("k"))
	if err != nil {
		panic(err)
	}
	return token
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
