// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into strongly-typed
Go structs, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Two schemas live here: [Config] for the web gateway and [CLIConfig] for the
terminal client. They share the backend settings.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultBackendURL is the public deployment of the library backend.
const DefaultBackendURL = "https://libro-e-library-backend.onrender.com/api"

// Supported values of SESSION_STORE.
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// # Configuration Schema

// Backend holds the settings for talking to the library REST API.
type Backend struct {
	URL     string        `env:"BACKEND_URL"     envDefault:"https://libro-e-library-backend.onrender.com/api"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`
}

// Config holds all runtime configuration for the Libro web gateway.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	Backend Backend

	// Session persistence
	SessionStore      string        `env:"SESSION_STORE"       envDefault:"redis"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"libro_session"`
	SessionTTL        time.Duration `env:"SESSION_TTL"         envDefault:"168h"`

	// Key-Value Cache (Redis), required when SESSION_STORE=redis
	RedisURL string `env:"REDIS_URL"`

	// Relational Database (PostgreSQL), required when SESSION_STORE=postgres
	DatabaseURL   string `env:"DATABASE_URL"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// StaticDir holds the pre-built browser shell.
	StaticDir string `env:"STATIC_DIR" envDefault:"./web/dist"`

	// Cross-Origin Resource Sharing, comma separated
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces the cross-field rules the struct tags cannot express.
func (c *Config) validate() error {
	switch c.SessionStore {
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("config: REDIS_URL is required when SESSION_STORE=redis")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required when SESSION_STORE=postgres")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config: unknown SESSION_STORE %q", c.SessionStore)
	}

	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Origins returns the configured CORS origins.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// # Terminal Client

// CLIConfig holds the settings of the libro command.
type CLIConfig struct {
	Backend     Backend `envPrefix:"LIBRO_"`
	SessionFile string  `env:"LIBRO_SESSION_FILE"`
	Debug       bool    `env:"LIBRO_DEBUG" envDefault:"false"`
}

// LoadCLI parses the LIBRO_* environment into a [CLIConfig].
//
// LIBRO_BACKEND_URL and LIBRO_BACKEND_TIMEOUT override the backend settings.
// The session file defaults to libro/session.json under the user config dir.
func LoadCLI() (*CLIConfig, error) {
	cfg := &CLIConfig{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.SessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("config: cannot locate user config dir: %w", err)
		}
		cfg.SessionFile = filepath.Join(dir, "libro", "session.json")
	}

	return cfg, nil
}
