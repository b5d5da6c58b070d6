// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrow_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libro/internal/backend"
	"github.com/taibuivan/libro/internal/borrow"
	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/internal/platform/ctxutil"
)

func newBackendStore(t *testing.T, handler http.HandlerFunc) *borrow.BackendStore {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return borrow.NewBackendStore(backend.New(server.URL, 2*time.Second, quietLogger))
}

/*
TestBackendStore_BorrowMultipart checks the form the backend receives.
*/
func TestBackendStore_BorrowMultipart(t *testing.T) {
	store := newBackendStore(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/books/3/borrow", request.URL.Path)
		require.NoError(t, request.ParseMultipartForm(1<<20))

		assert.Equal(t, "2024-01-10", request.FormValue("StartDate"))
		assert.Equal(t, "2024-01-15", request.FormValue("EndDate"))

		file, header, err := request.FormFile("IdCardImage")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "id.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		_, _ = io.WriteString(writer, `{"id":9,"bookId":3,"dueDate":"2024-01-15T00:00:00","price":10}`)
	})

	ctx := ctxutil.WithToken(context.Background(), "tok")
	record, err := store.Borrow(ctx, validDraft(t))
	require.NoError(t, err)

	assert.Equal(t, int64(9), record.ID)
	assert.Equal(t, date(t, "2024-01-15"), record.DueDate.Time)
	assert.Equal(t, "10.00", record.Price.StringFixed(2))
}

/*
TestBackendStore_ErrorMapping covers the borrow-specific status handling.
*/
func TestBackendStore_ErrorMapping(t *testing.T) {
	status := http.StatusConflict
	store := newBackendStore(t, func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_, _ = io.WriteString(writer, `{"message":"No copies left"}`)
	})
	ctx := ctxutil.WithToken(context.Background(), "tok")

	_, err := store.Borrow(ctx, validDraft(t))
	require.True(t, apperr.HasCode(err, apperr.CodeBookUnavailable))
	assert.Equal(t, "No copies left", err.Error())

	status = http.StatusNotFound
	assert.True(t, apperr.HasCode(store.ReturnBook(ctx, 3), apperr.CodeAlreadyReturned))
	assert.True(t, apperr.HasCode(store.ReturnBorrow(ctx, 3), apperr.CodeAlreadyReturned))

	status = http.StatusBadRequest
	_, err = store.Borrow(ctx, validDraft(t))
	assert.True(t, apperr.HasCode(err, apperr.CodeServerValidation))
}

/*
TestHandler_SubmitMultipart posts a borrow form through the gateway handler.
*/
func TestHandler_SubmitMultipart(t *testing.T) {
	store, books := newFakeStore(), availableBook()
	handler := borrow.NewHandler(newEngine(store, books))

	router := chi.NewRouter()
	handler.RegisterBookRoutes(router)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("StartDate", "2024-01-10"))
	require.NoError(t, form.WriteField("EndDate", "2024-02-20"))
	part, err := form.CreateFormFile("IdCardImage", "id.png")
	require.NoError(t, err)
	_, _ = part.Write(pngHeader)
	require.NoError(t, form.Close())

	request := httptest.NewRequest(http.MethodPost, "/3/borrow", &body)
	request.Header.Set("Content-Type", form.FormDataContentType())
	request = request.WithContext(readerContext())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "cannot exceed 30 days")
	assert.Contains(t, recorder.Body.String(), `"reason":"RangeExceedsMaximum"`)
	assert.Zero(t, store.borrows)
}

/*
TestHandler_SubmitDateReasons separates unparseable dates from missing ones.
*/
func TestHandler_SubmitDateReasons(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  []string
		never []string
	}{
		{
			name:  "invalid_start",
			start: "2024-13-40",
			end:   "2024-01-15",
			want:  []string{`"reason":"InvalidStartDate"`},
			never: []string{"MissingStartDate", "InvalidEndDate"},
		},
		{
			name:  "invalid_both",
			start: "2024-13-40",
			end:   "tomorrow",
			want:  []string{`"reason":"InvalidStartDate"`, `"reason":"InvalidEndDate"`},
			never: []string{"MissingStartDate", "MissingEndDate"},
		},
		{
			name:  "missing_end",
			start: "2024-01-10",
			end:   "",
			want:  []string{`"reason":"MissingEndDate"`},
			never: []string{"InvalidEndDate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			handler := borrow.NewHandler(newEngine(store, availableBook()))
			router := chi.NewRouter()
			handler.RegisterBookRoutes(router)

			var body bytes.Buffer
			form := multipart.NewWriter(&body)
			require.NoError(t, form.WriteField("StartDate", tt.start))
			require.NoError(t, form.WriteField("EndDate", tt.end))
			part, err := form.CreateFormFile("IdCardImage", "id.png")
			require.NoError(t, err)
			_, _ = part.Write(pngHeader)
			require.NoError(t, form.Close())

			request := httptest.NewRequest(http.MethodPost, "/3/borrow", &body)
			request.Header.Set("Content-Type", form.FormDataContentType())
			request = request.WithContext(readerContext())

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			for _, fragment := range tt.want {
				assert.Contains(t, recorder.Body.String(), fragment)
			}
			for _, fragment := range tt.never {
				assert.NotContains(t, recorder.Body.String(), fragment)
			}
			assert.Zero(t, store.borrows)
		})
	}
}

/*
TestHandler_QuoteDateReasons checks the quote endpoint reports the same date reasons.
*/
func TestHandler_QuoteDateReasons(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
		want string
	}{
		{"invalid_end", `{"startDate":"2024-01-10","endDate":"2024-02-31"}`, http.StatusBadRequest, `"reason":"InvalidEndDate"`},
		{"missing_start", `{"endDate":"2024-01-15"}`, http.StatusBadRequest, `"reason":"MissingStartDate"`},
		{"valid", `{"startDate":"2024-01-10","endDate":"2024-01-15"}`, http.StatusOK, `"days":5`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := borrow.NewHandler(newEngine(newFakeStore(), availableBook()))

			request := httptest.NewRequest(http.MethodPost, "/quote", bytes.NewBufferString(tt.body))
			request.Header.Set("Content-Type", "application/json")
			request = request.WithContext(readerContext())

			recorder := httptest.NewRecorder()
			handler.Routes().ServeHTTP(recorder, request)

			assert.Equal(t, tt.code, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.want)
		})
	}
}
