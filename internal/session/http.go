// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/internal/platform/constants"
	"github.com/taibuivan/libro/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/libro/internal/platform/request"
	"github.com/taibuivan/libro/internal/platform/respond"
	"github.com/taibuivan/libro/internal/platform/sec"
)

// # Cookies

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

func (cookies CookieConfig) set(writer http.ResponseWriter, value string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     cookies.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookies.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (cookies CookieConfig) clear(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     cookies.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// # Handler

// Handler implements the /api/v1/auth endpoints.
type Handler struct {
	manager *Manager
	cookies CookieConfig
}

// NewHandler constructs a new [Handler].
func NewHandler(manager *Manager, cookies CookieConfig) *Handler {
	return &Handler{manager: manager, cookies: cookies}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /login               : Signs in and sets the session cookie.
//   - POST /register            : Creates an account.
//   - POST /verify-email        : Confirms an account with the emailed code.
//   - POST /resend-verification : Emails a new code.
//   - POST /logout              : Ends the session (idempotent).
//   - GET  /me                  : Current profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/register", handler.register)
	router.Post("/verify-email", handler.verifyEmail)
	router.Post("/resend-verification", handler.resendVerification)
	router.Post("/logout", handler.logout)

	router.Group(func(r chi.Router) {
		r.Use(RequireRole(handler.manager, ""))
		r.Get("/me", handler.me)
	})

	return router
}

type loginResponse struct {
	Profile  Profile `json:"user"`
	Redirect string  `json:"redirect"`
}

/*
login handles POST /api/v1/auth/login.

Response:
  - 200: loginResponse, with the session cookie set
  - 400: validation failure
  - 401: invalid email or password
  - 502: backend unreachable
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input LoginInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	key, err := newSlotKey()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.manager.Login(request.Context(), key, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.retire(request)
	handler.cookies.set(writer, key)
	respond.OK(writer, loginResponse{Profile: session.Profile(), Redirect: PostLoginPath(session)})
}

type registerResponse struct {
	RequiresVerification bool     `json:"requiresVerification"`
	Message              string   `json:"message"`
	Profile              *Profile `json:"user,omitempty"`
	Redirect             string   `json:"redirect"`
}

/*
register handles POST /api/v1/auth/register.

Response:
  - 201: registerResponse; redirect is /verify-email unless signed in directly
  - 400: validation failure
  - 422: rejected by the backend (for example an email already in use)
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	key, err := newSlotKey()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	outcome, err := handler.manager.Register(request.Context(), key, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	response := registerResponse{
		RequiresVerification: outcome.RequiresVerification,
		Message:              outcome.Message,
		Redirect:             constants.PathVerifyEmail,
	}

	if outcome.Session != nil {
		profile := outcome.Session.Profile()
		response.Profile = &profile
		response.Redirect = PostLoginPath(outcome.Session)
		handler.retire(request)
		handler.cookies.set(writer, key)
	}

	respond.Created(writer, response)
}

type verifyEmailRequest struct {
	Code string `json:"code"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	var input verifyEmailRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := handler.manager.VerifyEmail(request.Context(), input.Code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: message})
}

type resendRequest struct {
	Email string `json:"email"`
}

func (handler *Handler) resendVerification(writer http.ResponseWriter, request *http.Request) {
	var input resendRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := handler.manager.ResendVerification(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: message})
}

// logout handles POST /api/v1/auth/logout. Anonymous calls succeed too.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if cookie, err := request.Cookie(handler.cookies.Name); err == nil && cookie.Value != "" {
		if err := handler.manager.Logout(request.Context(), cookie.Value); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	handler.cookies.clear(writer)
	respond.NoContent(writer)
}

// me handles GET /api/v1/auth/me; ?refresh=true re-reads the backend profile.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	session := FromContext(request.Context())

	if request.URL.Query().Get("refresh") == "true" {
		key := ctxutil.GetSessionID(request.Context())
		refreshed, err := handler.manager.Refresh(request.Context(), key)
		if errors.Is(err, ErrNoSession) || apperr.HasCode(err, apperr.CodeAuthExpired) {
			if key != "" {
				_ = handler.manager.Invalidate(request.Context(), key)
			}
			handler.cookies.clear(writer)
			respond.Redirect(writer, request, apperr.AuthExpired(), constants.PathLogin)
			return
		}
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		session = refreshed
	}

	respond.OK(writer, session.Profile())
}

// newSlotKey returns a fresh session key. Signing in always rotates the key so
// a cookie planted before login cannot be reused afterwards.
func newSlotKey() (string, error) {
	key, err := sec.GenerateSecureToken(constants.SessionIDBytes)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return key, nil
}

// retire drops the session the request arrived with, once a new one exists.
func (handler *Handler) retire(request *http.Request) {
	if previous := ctxutil.GetSessionID(request.Context()); previous != "" {
		_ = handler.manager.Invalidate(request.Context(), previous)
	}
}
