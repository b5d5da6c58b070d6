// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It is the composition root for the HTTP transport (chi router).
  - Two surfaces share one router: the JSON API under /api/v1 and the
    browser shell, whose pages are guarded with plain redirects.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/libro/internal/admin"
	"github.com/taibuivan/libro/internal/borrow"
	"github.com/taibuivan/libro/internal/catalog"
	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/internal/platform/config"
	"github.com/taibuivan/libro/internal/platform/constants"
	"github.com/taibuivan/libro/internal/platform/middleware"
	"github.com/taibuivan/libro/internal/platform/respond"
	"github.com/taibuivan/libro/internal/platform/sec"
	"github.com/taibuivan/libro/internal/session"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. Always 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. 200 once the session store and backend answer.
	Readiness http.HandlerFunc

	Sessions *session.Manager
	Cookies  session.CookieConfig

	Auth    *session.Handler
	Catalog *catalog.Handler
	Borrow  *borrow.Handler
	Admin   *admin.Handler

	// Shell serves the pre-built browser pages. Nil disables the page routes.
	Shell http.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	r := chi.NewRouter()

	limiter := middleware.NewRateLimiter(ctx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst)

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(limiter.Middleware)
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	r.Group(func(app chi.Router) {
		app.Use(session.Load(h.Sessions, h.Cookies))

		app.Route("/api/v1", func(api chi.Router) {
			mountAPI(api, h)
		})

		if h.Shell != nil {
			mountShell(app, h)
		}
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// mountAPI registers the JSON endpoints. Every group but /auth sits behind
// the role guard.
func mountAPI(api chi.Router, h Handlers) {
	api.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFound("Route"))
	})

	api.Mount("/auth", h.Auth.Routes())

	// ## Readers
	api.Group(func(reader chi.Router) {
		reader.Use(session.RequireRole(h.Sessions, ""))

		books := h.Catalog.Routes()
		h.Borrow.RegisterBookRoutes(books)
		reader.Mount("/books", books)
		reader.Mount("/borrows", h.Borrow.Routes())
	})

	// ## Administrators
	api.Route("/admin", func(staff chi.Router) {
		staff.Use(session.RequireRole(h.Sessions, sec.RoleAdmin))

		staff.Mount("/books", h.Catalog.AdminRoutes())
		staff.Mount("/borrows", h.Borrow.AdminRoutes())
		staff.Mount("/users", h.Admin.UserRoutes())
		staff.Mount("/dashboard", h.Admin.DashboardRoutes())
	})
}

// mountShell registers the browser pages with the same decision table as the API.
func mountShell(app chi.Router, h Handlers) {
	app.Group(func(public chi.Router) {
		public.Use(session.RedirectSignedIn(h.Sessions))
		public.Get(constants.PathLogin, h.Shell.ServeHTTP)
		public.Get(constants.PathSignup, h.Shell.ServeHTTP)
		public.Get(constants.PathVerifyEmail, h.Shell.ServeHTTP)
	})

	app.Group(func(reader chi.Router) {
		reader.Use(session.GuardPage(h.Sessions, ""))
		reader.Get("/", h.Shell.ServeHTTP)
		reader.Get(constants.PathBooks, h.Shell.ServeHTTP)
		reader.Get("/profile", h.Shell.ServeHTTP)
	})

	app.Group(func(staff chi.Router) {
		staff.Use(session.GuardPage(h.Sessions, sec.RoleAdmin))
		staff.Get(constants.PathAdmin, h.Shell.ServeHTTP)
		staff.Get(constants.PathAdmin+"/*", h.Shell.ServeHTTP)
	})

	app.Get("/assets/*", h.Shell.ServeHTTP)
	app.Get("/favicon.ico", h.Shell.ServeHTTP)

	app.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		http.Redirect(writer, request, constants.PathBooks, http.StatusFound)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
