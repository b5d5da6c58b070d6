// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/taibuivan/libro/internal/backend"
	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/internal/platform/sec"
)

// # Backend Contract

// Account is the user record returned by the authentication endpoints.
type Account struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"isEmailVerified"`
}

// Grant is a successful sign-in: a bearer token and its owner.
type Grant struct {
	Token string   `json:"token"`
	User  *Account `json:"user"`
}

// Registration is the backend answer to a sign-up.
//
// Current deployments answer {requiresVerification, message}; older ones
// answer {token, user} and sign the visitor in immediately.
type Registration struct {
	Success              bool     `json:"success"`
	RequiresVerification bool     `json:"requiresVerification"`
	Message              string   `json:"message"`
	Token                string   `json:"token"`
	User                 *Account `json:"user"`
}

// Acknowledgement is the {success, message} answer of verification endpoints.
type Acknowledgement struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Authenticator is the part of the backend the session manager talks to.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*Grant, error)
	Register(ctx context.Context, name, email, password string) (*Registration, error)
	VerifyEmail(ctx context.Context, code string) (*Acknowledgement, error)
	ResendVerification(ctx context.Context, email string) (*Acknowledgement, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*Account, error)
}

// ErrInvalidCredentials is the single answer to any rejected sign-in. It never
// tells an unknown email apart from a wrong password.
var ErrInvalidCredentials = apperr.Unauthorized("Invalid email or password")

// # Backend Implementation

// BackendAuthenticator implements [Authenticator] over the REST client.
type BackendAuthenticator struct {
	client *backend.Client
}

// NewBackendAuthenticator wraps client.
func NewBackendAuthenticator(client *backend.Client) *BackendAuthenticator {
	return &BackendAuthenticator{client: client}
}

// Login posts the credentials to /auth/login.
//
// 400, 401 and 404 all mean "rejected credentials" for this endpoint.
func (authenticator *BackendAuthenticator) Login(ctx context.Context, email, password string) (*Grant, error) {
	var grant Grant
	err := authenticator.client.Do(ctx, backend.Call{
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Body:      map[string]string{"email": email, "password": password},
		Anonymous: true,
	}, &grant)

	switch backend.StatusOf(err) {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if grant.Token == "" || grant.User == nil {
		return nil, apperr.Upstream(http.StatusOK, errMalformedGrant)
	}

	return &grant, nil
}

// Register posts a sign-up to /auth/register.
func (authenticator *BackendAuthenticator) Register(ctx context.Context, name, email, password string) (*Registration, error) {
	var registration Registration
	err := authenticator.client.Do(ctx, backend.Call{
		Method:    http.MethodPost,
		Path:      "/auth/register",
		Body:      map[string]string{"name": name, "email": email, "password": password},
		Anonymous: true,
	}, &registration)
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

// VerifyEmail posts the emailed code to /auth/verify-email.
func (authenticator *BackendAuthenticator) VerifyEmail(ctx context.Context, code string) (*Acknowledgement, error) {
	return authenticator.acknowledge(ctx, "/auth/verify-email", map[string]string{"token": code})
}

// ResendVerification asks the backend to email a fresh code.
func (authenticator *BackendAuthenticator) ResendVerification(ctx context.Context, email string) (*Acknowledgement, error) {
	return authenticator.acknowledge(ctx, "/auth/resend-verification", map[string]string{"email": email})
}

func (authenticator *BackendAuthenticator) acknowledge(ctx context.Context, path string, body any) (*Acknowledgement, error) {
	var ack Acknowledgement
	err := authenticator.client.Do(ctx, backend.Call{
		Method:    http.MethodPost,
		Path:      path,
		Body:      body,
		Anonymous: true,
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// Logout tells the backend the token is no longer in use.
func (authenticator *BackendAuthenticator) Logout(ctx context.Context) error {
	return authenticator.client.Post(ctx, "/auth/logout", nil, nil)
}

// Profile fetches the current account from /auth/profile.
func (authenticator *BackendAuthenticator) Profile(ctx context.Context) (*Account, error) {
	var account Account
	if err := authenticator.client.Get(ctx, "/auth/profile", nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

var errMalformedGrant = errors.New("backend: login answer without token or user")

// roleOf resolves the session role from the account, falling back to the token claim.
func roleOf(account *Account, token sec.TokenInfo) sec.Role {
	if account.Role == "" && token.HasRole {
		return token.Role
	}
	return sec.ParseRole(account.Role)
}
