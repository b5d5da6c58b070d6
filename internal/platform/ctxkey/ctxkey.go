// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey defines typed context keys used by middleware and handlers.
//
// # Safety
//
// It is used to store and retrieve per-request values (principal, bearer token,
// session id, request ID, logger). Using a private, unexported type for keys
// prevents collisions with third-party packages that might also use context
// for storage.
package ctxkey

// key is an unexported type used for context keys to ensure type safety.
type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyPrincipal is the context key for the signed-in identity ([sec.Principal]).
	KeyPrincipal key = "principal"

	// KeyLogger is the context key for the per-request [*log/slog.Logger].
	KeyLogger key = "logger"

	// KeySessionID is the context key for the opaque gateway session id.
	KeySessionID key = "session_id"

	// KeyToken is the context key for the backend bearer token.
	KeyToken key = "token"
)
