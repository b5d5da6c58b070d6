// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the gateway and CLI.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Session: Cookie naming and storage prefixes.
  - Navigation: The shell paths the route guard redirects to.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "libro-web"
	CLIName    = "libro"
	AppVersion = "0.3.0"
)

// # Server Timing

const (
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 30 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle,
	// including the round trip to the library backend.
	GlobalRequestTimeout = 30 * time.Second

	ShutdownTimeout = 20 * time.Second
)

// # Rate Limiting

const (
	DefaultRateLimitRPS      = 20.0
	DefaultRateLimitBurst    = 40
	RateLimitCleanupInterval = 1 * time.Minute
	RateLimitClientTTL       = 3 * time.Minute
)

// # Session

const (
	// SessionIDBytes is the entropy of a gateway session id.
	SessionIDBytes = 32

	// RedisPrefixSession namespaces session entries in Redis.
	RedisPrefixSession = "libro:session:"

	// DefaultSessionTTL bounds sessions whose token has no exp claim.
	DefaultSessionTTL = 7 * 24 * time.Hour
)

// # Navigation

const (
	PathLogin       = "/login"
	PathSignup      = "/signup"
	PathVerifyEmail = "/verify-email"
	PathBooks       = "/books"
	PathAdmin       = "/admin"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
)

// # JSON Field Identifiers

const (
	FieldError   = "error"
	FieldCode    = "code"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)
