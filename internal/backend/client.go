// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package backend is the transport to the library REST API.

It knows nothing about books or borrows. Domain packages describe what they
need in their own store interfaces and implement them on top of [Client].

Error Mapping:

  - Transport failure (DNS, refused, timeout): NETWORK_ERROR (502).
  - 401: AUTH_EXPIRED (401). The OnUnauthorized hook runs before the call returns.
  - 409: CONFLICT (409) with the backend message.
  - Any other 4xx: SERVER_VALIDATION (422) with the backend message.
  - 5xx: UPSTREAM_ERROR (502).

Every mapped error keeps an [*HTTPError] as its cause, so callers that need
the raw status (login treats 400/401/404 alike) can recover it with [StatusOf].
*/
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/internal/platform/constants"
	"github.com/taibuivan/libro/internal/platform/ctxutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// # Client

// Client performs authenticated JSON and multipart calls against the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu             sync.RWMutex
	onUnauthorized func(ctx context.Context)
}

// New creates a client for baseURL (for example "https://host/api").
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// OnUnauthorized registers the hook run synchronously on every 401 answer to
// an authenticated call. The session manager uses it to tear the session down
// before the failing call returns to its caller.
func (client *Client) OnUnauthorized(hook func(ctx context.Context)) {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.onUnauthorized = hook
}

// # Calls

// Call describes one backend request.
type Call struct {
	Method string
	Path   string
	Query  url.Values

	// Body is encoded as JSON. Mutually exclusive with Form.
	Body any
	Form *Form

	// Anonymous calls never carry the bearer token and never fire the
	// OnUnauthorized hook. Used by the sign-in endpoints.
	Anonymous bool
}

// Get issues an authenticated GET and decodes the answer into out.
func (client *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return client.Do(ctx, Call{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues an authenticated POST with a JSON body.
func (client *Client) Post(ctx context.Context, path string, body, out any) error {
	return client.Do(ctx, Call{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues an authenticated PUT with a JSON body.
func (client *Client) Put(ctx context.Context, path string, body, out any) error {
	return client.Do(ctx, Call{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete issues an authenticated DELETE.
func (client *Client) Delete(ctx context.Context, path string) error {
	return client.Do(ctx, Call{Method: http.MethodDelete, Path: path}, nil)
}

// Ping reports whether the backend answers at all. Any HTTP status counts.
func (client *Client) Ping(ctx context.Context) error {
	err := client.Do(ctx, Call{Method: http.MethodGet, Path: "/books", Anonymous: true}, nil)
	if apperr.HasCode(err, apperr.CodeNetwork) {
		return err
	}
	return nil
}

// Do executes call and decodes a 2xx body into out (when out is non-nil and
// the body is not empty). Failures are returned as [*apperr.AppError].
func (client *Client) Do(ctx context.Context, call Call, out any) error {
	request, err := client.newRequest(ctx, call)
	if err != nil {
		return apperr.Internal(err)
	}

	startTime := time.Now()
	response, err := client.httpClient.Do(request)
	if err != nil {
		client.logger.WarnContext(ctx, "backend_unreachable",
			slog.String("method", call.Method),
			slog.String("path", call.Path),
			slog.Any("error", err),
		)
		return apperr.Network(err)
	}
	defer response.Body.Close()

	client.logger.DebugContext(ctx, "backend_request_finished",
		slog.String("method", call.Method),
		slog.String("path", call.Path),
		slog.Int("status", response.StatusCode),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)

	if response.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
		return client.mapFailure(ctx, call, response.StatusCode, body)
	}

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return apperr.Network(err)
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return apperr.Upstream(response.StatusCode, fmt.Errorf("decode_failed: %s %s: %w", call.Method, call.Path, err))
	}

	return nil
}

func (client *Client) newRequest(ctx context.Context, call Call) (*http.Request, error) {
	target := client.baseURL + "/" + strings.TrimLeft(call.Path, "/")
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)

	switch {
	case call.Form != nil:
		encoded, boundaryType, err := call.Form.encode()
		if err != nil {
			return nil, err
		}
		body, contentType = encoded, boundaryType
	case call.Body != nil:
		encoded, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("encode_failed: %w", err)
		}
		body, contentType = bytes.NewReader(encoded), "application/json"
	}

	request, err := http.NewRequestWithContext(ctx, call.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build_request_failed: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	if contentType != "" {
		request.Header.Set(constants.HeaderContentType, contentType)
	}
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		request.Header.Set(constants.HeaderXRequestID, requestID)
	}
	if token := ctxutil.GetToken(ctx); token != "" && !call.Anonymous {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	return request, nil
}

// # Error Mapping

// HTTPError is a non-2xx answer from the backend.
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("backend: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// StatusOf returns the backend HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var httpError *HTTPError
	if errors.As(err, &httpError) {
		return httpError.Status
	}
	return 0
}

// MessageOf returns the backend's own error message carried by err, or "".
func MessageOf(err error) string {
	var httpError *HTTPError
	if errors.As(err, &httpError) {
		return httpError.Message
	}
	return ""
}

func (client *Client) mapFailure(ctx context.Context, call Call, status int, body []byte) error {
	cause := &HTTPError{
		Method:  call.Method,
		Path:    call.Path,
		Status:  status,
		Message: extractMessage(body),
	}

	var mapped *apperr.AppError

	switch {
	case status == http.StatusUnauthorized:
		if !call.Anonymous && ctxutil.GetToken(ctx) != "" {
			client.unauthorized(ctx)
		}
		mapped = apperr.AuthExpired()
	case status == http.StatusConflict:
		message := cause.Message
		if message == "" {
			message = "The request conflicts with the current state of the library"
		}
		mapped = apperr.Conflict(message)
	case status >= http.StatusInternalServerError:
		return apperr.Upstream(status, cause)
	default:
		mapped = apperr.ServerValidation(cause.Message)
	}

	mapped.Cause = cause
	return mapped
}

func (client *Client) unauthorized(ctx context.Context) {
	client.mu.RLock()
	hook := client.onUnauthorized
	client.mu.RUnlock()

	if hook != nil {
		hook(ctx)
	}
}

// extractMessage pulls a human-readable message out of an error body.
//
// The backend answers with {"message": "..."} for its own errors and with
// ASP.NET problem details ({"title": ..., "errors": {field: [..]}}) for
// model-binding failures. Plain-text bodies are used as is.
func extractMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	switch trimmed[0] {
	case '{':
		for _, key := range []string{"message", "error", "detail"} {
			if message := json.Get(trimmed, key).ToString(); message != "" {
				return message
			}
		}

		errorsField := json.Get(trimmed, "errors")
		if errorsField.ValueType() == jsoniter.ObjectValue {
			for _, key := range errorsField.Keys() {
				if message := errorsField.Get(key, 0).ToString(); message != "" {
					return message
				}
			}
		}

		return json.Get(trimmed, "title").ToString()
	case '"':
		var text string
		if json.Unmarshal(trimmed, &text) == nil {
			return text
		}
		return ""
	case '<':
		return ""
	default:
		const maxPlain = 200
		text := string(trimmed)
		if len(text) > maxPlain {
			text = text[:maxPlain]
		}
		return text
	}
}
