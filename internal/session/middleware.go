// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/internal/platform/constants"
	"github.com/taibuivan/libro/internal/platform/ctxutil"
	"github.com/taibuivan/libro/internal/platform/middleware"
	"github.com/taibuivan/libro/internal/platform/respond"
	"github.com/taibuivan/libro/internal/platform/sec"
)

type contextKey struct{}

// FromContext returns the session loaded for the request, or nil.
func FromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(contextKey{}).(*Session)
	return session
}

// WithSession attaches session to ctx together with the principal, the
// bearer token and the slot key that the backend client and the 401 hook read.
func WithSession(ctx context.Context, key string, session *Session) context.Context {
	ctx = context.WithValue(ctx, contextKey{}, session)
	ctx = ctxutil.WithPrincipal(ctx, session.Principal())
	ctx = ctxutil.WithToken(ctx, session.Token)
	return ctxutil.WithSessionID(ctx, key)
}

// # Middleware

// Load resolves the session cookie into the request context.
//
// Requests without a usable session continue anonymously; the guards below
// decide what an anonymous visitor may see.
func Load(manager *Manager, cookies CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			cookie, err := request.Cookie(cookies.Name)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(writer, request)
				return
			}

			session, err := manager.Restore(request.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, ErrNoSession) {
					ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "session_restore_failed", slog.Any("error", err))
				}
				cookies.clear(writer)
				next.ServeHTTP(writer, request)
				return
			}

			ctx := WithSession(request.Context(), cookie.Value, session)
			middleware.NoteUser(ctx, session.UserID)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// current re-checks the session slot so a teardown that happened earlier in
// the same request (a backend 401) is already visible to the guard.
func current(manager *Manager, request *http.Request) *Session {
	session := FromContext(request.Context())
	if session == nil {
		return nil
	}

	restored, err := manager.Restore(request.Context(), ctxutil.GetSessionID(request.Context()))
	if err != nil {
		return nil
	}
	return restored
}

// RequireRole guards API routes. Rejections are JSON: 401 with a redirect to
// the login page, or 403 with a redirect to the books page.
func RequireRole(manager *Manager, required sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			decision := ResolveRoute(current(manager, request), required)
			if decision.Allow {
				next.ServeHTTP(writer, request)
				return
			}

			if decision.Redirect == constants.PathLogin {
				respond.Redirect(writer, request, apperr.Unauthorized("Authentication required"), decision.Redirect)
				return
			}
			respond.Redirect(writer, request, apperr.Forbidden("Administrator access required"), decision.Redirect)
		})
	}
}

// GuardPage guards shell pages with plain HTTP redirects.
func GuardPage(manager *Manager, required sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			decision := ResolveRoute(current(manager, request), required)
			if decision.Allow {
				next.ServeHTTP(writer, request)
				return
			}
			http.Redirect(writer, request, decision.Redirect, http.StatusFound)
		})
	}
}

// RedirectSignedIn sends visitors who already have a session from the
// sign-in pages to their landing page.
func RedirectSignedIn(manager *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if session := current(manager, request); session != nil {
				http.Redirect(writer, request, PostLoginPath(session), http.StatusFound)
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}
