// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Libro.

It provides a rich error type that bridges the gap between low-level errors
(backend transport, session storage, local validation) and the JSON responses
served by the gateway or the messages printed by the terminal client.

Architecture:

  - AppError: A struct containing machine-readable Code and a user-friendly message.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.
  - Upstream: Dedicated constructors for failures reported by the library backend.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Codes

const (
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeNetwork            = "NETWORK_ERROR"
	CodeAuthExpired        = "AUTH_EXPIRED"
	CodeServerValidation   = "SERVER_VALIDATION"
	CodeUpstream           = "UPSTREAM_ERROR"
	CodeBookUnavailable    = "BOOK_UNAVAILABLE"
	CodeAlreadyReturned    = "ALREADY_RETURNED"
	CodeSubmissionInFlight = "SUBMISSION_IN_FLIGHT"
)

// AppError is the canonical error type for Libro.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., backend URLs).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
	// Reason is an optional machine-readable identifier for the failure.
	Reason string `json:"reason,omitempty"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Book") // Returns "Book not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or state violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Workflow Errors

// BookUnavailable creates a 409 [AppError] for a book that cannot be borrowed.
func BookUnavailable(msg string) *AppError {
	if msg == "" {
		msg = "This book is currently unavailable"
	}
	return &AppError{
		Code:       CodeBookUnavailable,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// AlreadyReturned creates a 409 [AppError] for a borrow that was already settled.
func AlreadyReturned() *AppError {
	return &AppError{
		Code:       CodeAlreadyReturned,
		Message:    "This borrow has already been returned",
		HTTPStatus: http.StatusConflict,
	}
}

// SubmissionInFlight creates a 409 [AppError] for a duplicate concurrent submission.
func SubmissionInFlight() *AppError {
	return &AppError{
		Code:       CodeSubmissionInFlight,
		Message:    "A borrow request for this book is already being submitted",
		HTTPStatus: http.StatusConflict,
	}
}

// # Upstream Errors

// Network creates a 502 [AppError] for a backend that could not be reached.
func Network(cause error) *AppError {
	return &AppError{
		Code:       CodeNetwork,
		Message:    "The library service could not be reached. Please try again.",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// AuthExpired creates a 401 [AppError] for a token the backend no longer accepts.
func AuthExpired() *AppError {
	return &AppError{
		Code:       CodeAuthExpired,
		Message:    "Your session has expired. Please sign in again.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// ServerValidation creates a 422 [AppError] carrying the backend's own message.
func ServerValidation(msg string) *AppError {
	if msg == "" {
		msg = "The request was rejected by the library service"
	}
	return &AppError{
		Code:       CodeServerValidation,
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// Upstream creates a 502 [AppError] for a 5xx answer from the backend.
func Upstream(status int, cause error) *AppError {
	return &AppError{
		Code:       CodeUpstream,
		Message:    fmt.Sprintf("The library service failed with status %d", status),
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
