// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command web is the entry point for the Libro web gateway.
//
// It wires all dependencies together (Dependency Injection root), starts the
// HTTP server, and handles graceful shutdown on SIGTERM/SIGINT.
//
// Startup order:
//  1. Logger
//  2. Configuration
//  3. Backend client
//  4. Session store (Redis, PostgreSQL or memory)
//  5. Session manager
//  6. Domain services
//  7. Health checks
//  8. HTTP server
//  9. Graceful shutdown
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/libro/internal/admin"
	"github.com/taibuivan/libro/internal/api"
	"github.com/taibuivan/libro/internal/backend"
	"github.com/taibuivan/libro/internal/borrow"
	"github.com/taibuivan/libro/internal/catalog"
	"github.com/taibuivan/libro/internal/platform/config"
	"github.com/taibuivan/libro/internal/platform/constants"
	"github.com/taibuivan/libro/internal/platform/migration"
	pgstore "github.com/taibuivan/libro/internal/platform/postgres"
	redisstore "github.com/taibuivan/libro/internal/platform/redis"
	"github.com/taibuivan/libro/internal/session"
)

// sessionPurgeInterval is how often expired rows leave the Postgres session table.
const sessionPurgeInterval = 15 * time.Minute

func main() {
	// ── 1. Logger ─────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("backend", cfg.Backend.URL),
		slog.String("session_store", cfg.SessionStore),
	)

	// Root context lives until the first shutdown signal.
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Backend client ─────────────────────────────────────────────────
	client := backend.New(cfg.Backend.URL, cfg.Backend.Timeout, log)

	checks := []api.Check{{Name: "backend", Probe: client.Ping}}

	// ── 4. Session store ──────────────────────────────────────────────────
	var store session.Store
	cacheWindow := session.DefaultCacheWindow

	switch cfg.SessionStore {
	case config.StoreRedis:
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		store = session.NewRedisStore(rdb)
		cacheWindow = 0
		checks = append(checks, api.Check{Name: "redis", Probe: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}})

	case config.StorePostgres:
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		sessions := session.NewPostgresStore(pool)
		go purgeSessions(rootCtx, sessions, log)

		store = sessions
		cacheWindow = 0
		checks = append(checks, api.Check{Name: "postgres", Probe: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		}})

	default:
		log.Warn("session_store_volatile", slog.String("hint", "sessions are lost on restart"))
		store = session.NewMemoryStore()
	}

	// ── 5. Session manager ────────────────────────────────────────────────
	manager := session.NewManager(
		session.NewBackendAuthenticator(client),
		store,
		log,
		session.WithDefaultTTL(cfg.SessionTTL),
		session.WithCacheWindow(cacheWindow),
	)
	client.OnUnauthorized(manager.HandleUnauthorized)

	cookies := session.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: cfg.IsProduction(),
		TTL:    cfg.SessionTTL,
	}

	// ── 6. Domain services ────────────────────────────────────────────────
	books := catalog.NewService(catalog.NewBackendStore(client))
	borrows := borrow.NewEngine(borrow.NewBackendStore(client), books, log)
	manager.OnSignOut(borrows.Forget)
	staff := admin.NewService(admin.NewBackendStore(client))

	handlers := api.Handlers{
		Sessions: manager,
		Cookies:  cookies,
		Auth:     session.NewHandler(manager, cookies),
		Catalog:  catalog.NewHandler(books),
		Borrow:   borrow.NewHandler(borrows),
		Admin:    admin.NewHandler(staff),
	}

	shell, err := api.NewShell(cfg.StaticDir)
	if err != nil {
		log.Warn("shell_disabled", slog.String("dir", cfg.StaticDir), slog.Any("error", err))
	} else {
		handlers.Shell = shell
	}

	// ── 7. Health checks ──────────────────────────────────────────────────
	handlers.Liveness, handlers.Readiness = api.NewHealthHandlers(checks, log)

	// ── 8. HTTP server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, handlers)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// ── 9. Graceful shutdown ──────────────────────────────────────────────
	select {
	case <-rootCtx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	log.Info("shutting down server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// newLogger builds the JSON logger every entry of the gateway goes through.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
}

// purgeSessions deletes expired Postgres sessions until ctx ends.
func purgeSessions(ctx context.Context, store *session.PostgresStore, log *slog.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.Purge(ctx)
			if err != nil {
				log.Warn("session_purge_failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				log.Info("session_purged", slog.Int64("count", removed))
			}
		}
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// Only startup wiring uses it. After startup, errors are returned and handled.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
