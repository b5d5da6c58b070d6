// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/internal/platform/constants"
	"github.com/taibuivan/libro/internal/platform/ctxutil"
	"github.com/taibuivan/libro/internal/platform/sec"
	"github.com/taibuivan/libro/internal/platform/validate"
)

// # Manager

const (
	// DefaultCacheWindow is how long a cached session is trusted before the
	// store is consulted again.
	DefaultCacheWindow = 30 * time.Second

	// cacheSoftLimit triggers a sweep of stale cache entries.
	cacheSoftLimit = 4096

	minPasswordLength = 6
	verificationCode  = 6
)

// DefaultRegistrationMessage is shown when the backend confirms a sign-up without text.
const DefaultRegistrationMessage = "Registration successful! Please check your email to verify your account."

type cached struct {
	session  *Session
	loadedAt time.Time
}

// Manager implements the session operations on top of an [Authenticator] and a [Store].
type Manager struct {
	auth       Authenticator
	store      Store
	logger     *slog.Logger
	now        func() time.Time
	defaultTTL time.Duration
	window     time.Duration

	mu        sync.Mutex
	cache     map[string]cached
	onSignOut func(userID int64)
}

// Option customises a [Manager].
type Option func(*Manager)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(manager *Manager) { manager.now = now }
}

// WithDefaultTTL bounds sessions whose token carries no expiry.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(manager *Manager) { manager.defaultTTL = ttl }
}

// WithCacheWindow sets how long a session read from the store is reused
// without reading it again. Zero reads the store on every restore; stores
// shared by several gateway instances need zero so a logout on one instance
// holds on all of them.
func WithCacheWindow(window time.Duration) Option {
	return func(manager *Manager) { manager.window = window }
}

// NewManager creates a session manager.
func NewManager(auth Authenticator, store Store, logger *slog.Logger, options ...Option) *Manager {
	manager := &Manager{
		auth:       auth,
		store:      store,
		logger:     logger,
		now:        time.Now,
		defaultTTL: constants.DefaultSessionTTL,
		window:     DefaultCacheWindow,
		cache:      make(map[string]cached),
	}
	for _, option := range options {
		option(manager)
	}
	return manager
}

// # Sign-in

// LoginInput holds the sign-in form.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Login authenticates against the backend and stores the new session in slot key.

Returns:
  - *Session: the persisted session
  - error: [ErrInvalidCredentials], NETWORK_ERROR, or a validation error
*/
func (manager *Manager) Login(ctx context.Context, key string, input LoginInput) (*Session, error) {
	email := strings.TrimSpace(input.Email)

	validator := &validate.Validator{}
	validator.Required("email", email).Required("password", input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	grant, err := manager.auth.Login(ctx, email, input.Password)
	if err != nil {
		manager.logger.InfoContext(ctx, "session_login_failed", slog.String("reason", reasonOf(err)))
		return nil, err
	}

	session, err := manager.open(ctx, key, grant.Token, grant.User)
	if err != nil {
		return nil, err
	}

	manager.logger.InfoContext(ctx, "session_created",
		slog.Int64("user_id", session.UserID),
		slog.String("role", string(session.Role)),
	)

	return session, nil
}

// RegisterInput holds the sign-up form.
type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// RegistrationOutcome is the result of a sign-up.
//
// Session is set only when the backend signed the visitor in directly (the
// legacy flow). When RequiresVerification is true no session exists yet.
type RegistrationOutcome struct {
	RequiresVerification bool     `json:"requiresVerification"`
	Message              string   `json:"message"`
	Session              *Session `json:"-"`
}

/*
Register creates an account.

The verification flow is the primary one: unless the backend hands back a
token and user, the outcome requires verification and nothing is signed in.
*/
func (manager *Manager) Register(ctx context.Context, key string, input RegisterInput) (*RegistrationOutcome, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)

	validator := &validate.Validator{}
	validator.Required("name", name).
		Email("email", email).
		MinLen("password", input.Password, minPasswordLength).
		Matches("confirmPassword", input.ConfirmPassword, input.Password, "Passwords do not match")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	registration, err := manager.auth.Register(ctx, name, email, input.Password)
	if err != nil {
		return nil, err
	}

	outcome := &RegistrationOutcome{Message: registration.Message}

	if registration.Token != "" && registration.User != nil && !registration.RequiresVerification {
		session, err := manager.open(ctx, key, registration.Token, registration.User)
		if err != nil {
			return nil, err
		}
		outcome.Session = session
		if outcome.Message == "" {
			outcome.Message = "Registration successful!"
		}
		manager.logger.InfoContext(ctx, "session_created_on_register", slog.Int64("user_id", session.UserID))
		return outcome, nil
	}

	outcome.RequiresVerification = true
	if outcome.Message == "" {
		outcome.Message = DefaultRegistrationMessage
	}

	return outcome, nil
}

// VerifyEmail confirms an account with the emailed code.
//
// Anything that is not a digit is stripped first, so "123 456" is accepted.
func (manager *Manager) VerifyEmail(ctx context.Context, rawCode string) (string, error) {
	code := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, rawCode)

	validator := &validate.Validator{}
	if err := validator.Digits("code", code, verificationCode).Err(); err != nil {
		return "", err
	}

	ack, err := manager.auth.VerifyEmail(ctx, code)
	if err != nil {
		return "", err
	}
	if !ack.Success {
		return "", apperr.ServerValidation(ack.Message)
	}

	return ack.Message, nil
}

// ResendVerification asks for a new verification email.
func (manager *Manager) ResendVerification(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)

	validator := &validate.Validator{}
	if err := validator.Email("email", email).Err(); err != nil {
		return "", err
	}

	ack, err := manager.auth.ResendVerification(ctx, email)
	if err != nil {
		return "", err
	}
	if !ack.Success && ack.Message != "" {
		return "", apperr.ServerValidation(ack.Message)
	}

	return ack.Message, nil
}

// open builds and persists a session for a backend grant.
func (manager *Manager) open(ctx context.Context, key, token string, account *Account) (*Session, error) {
	now := manager.now()
	info, _ := sec.InspectToken(token)

	session := &Session{
		UserID:        account.ID,
		DisplayName:   account.Name,
		Email:         account.Email,
		Role:          roleOf(account, info),
		Token:         token,
		EmailVerified: account.EmailVerified,
		ExpiresAt:     info.ExpiresAt,
		CreatedAt:     now,
	}

	if session.Expired(now) {
		return nil, apperr.AuthExpired()
	}

	if err := manager.store.Save(ctx, key, session, manager.ttlOf(session, now)); err != nil {
		return nil, apperr.Internal(err)
	}

	manager.remember(key, session, now)
	return session, nil
}

func (manager *Manager) ttlOf(session *Session, now time.Time) time.Duration {
	if session.ExpiresAt.IsZero() {
		return manager.defaultTTL
	}
	return min(session.ExpiresAt.Sub(now), manager.defaultTTL)
}

// # Lifecycle

// Restore returns the session in slot key, or [ErrNoSession].
//
// An expired session is deleted on the way and reported as absent.
func (manager *Manager) Restore(ctx context.Context, key string) (*Session, error) {
	if key == "" {
		return nil, ErrNoSession
	}

	now := manager.now()

	manager.mu.Lock()
	entry, found := manager.cache[key]
	manager.mu.Unlock()

	session := entry.session
	if !found || manager.stale(entry, now) {
		loaded, err := manager.store.Load(ctx, key)
		if errors.Is(err, ErrNoSession) {
			manager.forget(key)
			return nil, ErrNoSession
		}
		if err != nil {
			return nil, apperr.Internal(err)
		}
		session = loaded
		manager.remember(key, session, now)
	}

	if session.Expired(now) {
		manager.logger.InfoContext(ctx, "session_expired", slog.Int64("user_id", session.UserID))
		if err := manager.Invalidate(ctx, key); err != nil {
			return nil, err
		}
		return nil, ErrNoSession
	}

	return session, nil
}

// Refresh reloads the account from the backend and updates the stored profile.
func (manager *Manager) Refresh(ctx context.Context, key string) (*Session, error) {
	current, err := manager.Restore(ctx, key)
	if err != nil {
		return nil, err
	}

	account, err := manager.auth.Profile(ctxutil.WithSessionID(ctxutil.WithToken(ctx, current.Token), key))
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.DisplayName = account.Name
	updated.Email = account.Email
	updated.EmailVerified = account.EmailVerified
	if account.Role != "" {
		updated.Role = sec.ParseRole(account.Role)
	}

	now := manager.now()
	if err := manager.store.Save(ctx, key, &updated, manager.ttlOf(&updated, now)); err != nil {
		return nil, apperr.Internal(err)
	}
	manager.remember(key, &updated, now)

	return &updated, nil
}

// OnSignOut registers the hook run after a user logs out, so per-user state
// held elsewhere in the gateway can be released.
func (manager *Manager) OnSignOut(hook func(userID int64)) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	manager.onSignOut = hook
}

// Logout clears slot key and tells the backend, best effort. It is idempotent.
func (manager *Manager) Logout(ctx context.Context, key string) error {
	session, err := manager.Restore(ctx, key)
	if err != nil && !errors.Is(err, ErrNoSession) {
		manager.logger.WarnContext(ctx, "session_logout_restore_failed", slog.Any("error", err))
	}

	if err := manager.Invalidate(ctx, key); err != nil {
		return err
	}

	if session != nil {
		// The slot is already empty, so a 401 here cannot recurse into anything.
		backendCtx := ctxutil.WithToken(ctx, session.Token)
		if err := manager.auth.Logout(backendCtx); err != nil {
			manager.logger.WarnContext(ctx, "backend_logout_failed", slog.Any("error", err))
		}
		manager.logger.InfoContext(ctx, "session_closed", slog.Int64("user_id", session.UserID))

		manager.mu.Lock()
		hook := manager.onSignOut
		manager.mu.Unlock()
		if hook != nil {
			hook(session.UserID)
		}
	}

	return nil
}

// Invalidate removes slot key from the cache and the store. The cache entry
// goes first so concurrent readers stop seeing the session immediately.
func (manager *Manager) Invalidate(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	manager.forget(key)

	if err := manager.store.Delete(ctx, key); err != nil {
		manager.logger.ErrorContext(ctx, "session_delete_failed", slog.Any("error", err))
		return apperr.Internal(err)
	}

	return nil
}

// HandleUnauthorized is the backend 401 hook: it invalidates the slot named
// by the session id in ctx.
func (manager *Manager) HandleUnauthorized(ctx context.Context) {
	key := ctxutil.GetSessionID(ctx)
	if key == "" {
		return
	}

	manager.logger.InfoContext(ctx, "session_revoked_by_backend")
	_ = manager.Invalidate(ctx, key)
}

// # Cache

func (manager *Manager) remember(key string, session *Session, now time.Time) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if len(manager.cache) >= cacheSoftLimit {
		for cachedKey, entry := range manager.cache {
			if manager.stale(entry, now) || entry.session.Expired(now) {
				delete(manager.cache, cachedKey)
			}
		}
	}

	manager.cache[key] = cached{session: session, loadedAt: now}
}

func (manager *Manager) stale(entry cached, now time.Time) bool {
	return manager.window <= 0 || now.Sub(entry.loadedAt) > manager.window
}

func (manager *Manager) forget(key string) {
	manager.mu.Lock()
	delete(manager.cache, key)
	manager.mu.Unlock()
}

// reasonOf names a login failure for logs without echoing credentials.
func reasonOf(err error) string {
	if appError := apperr.As(err); appError != nil {
		return strings.ToLower(appError.Code)
	}
	return "unknown"
}
