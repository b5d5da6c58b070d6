// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libro/internal/platform/ctxutil"
	"github.com/taibuivan/libro/internal/platform/middleware"
)

type corsConfig struct {
	development bool
	origins     []string
}

func (c corsConfig) IsDevelopment() bool { return c.development }
func (c corsConfig) Origins() []string   { return c.origins }

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

/*
TestRequestID_GeneratesAndPropagates checks ID generation and reuse.
*/
func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "upstream-id")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "upstream-id", seen)
}

/*
TestStructuredLogger_RecordsUser verifies that NoteUser reaches the request log line.
*/
func TestStructuredLogger_RecordsUser(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buffer, nil))

	handler := middleware.StructuredLogger(logger)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		middleware.NoteUser(request.Context(), 42)
		writer.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books", nil))

	assert.Contains(t, buffer.String(), `"msg":"http_request_finished"`)
	assert.Contains(t, buffer.String(), `"user_id":42`)
	assert.Contains(t, buffer.String(), `"status":418`)
}

/*
TestRateLimiter_RejectsBurst checks that a client exceeding the burst gets 429.
*/
func TestRateLimiter_RejectsBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiter(ctx, 0.001, 2)
	handler := limiter.Middleware(okHandler)

	codes := make([]int, 0, 3)
	for range 3 {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = "203.0.113.7:4242"
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.True(t, limiter.Allow("198.51.100.1"), "other clients keep their own bucket")
}

/*
TestPanicRecovery_Returns500 checks that a panicking handler yields a JSON 500.
*/
func TestPanicRecovery_Returns500(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	handler := middleware.PanicRecovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

/*
TestCORS_Origins verifies allow-listing outside development.
*/
func TestCORS_Origins(t *testing.T) {
	handler := middleware.CORS(corsConfig{origins: []string{"https://libro.app"}})(okHandler)

	tests := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"listed", "https://libro.app", true},
		{"unlisted", "https://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodOptions, "/api/v1/books", nil)
			request.Header.Set("Origin", tt.origin)
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusNoContent, recorder.Code)
			if tt.allowed {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
