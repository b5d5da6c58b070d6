// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/internal/platform/validate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxJSONBody bounds decoded JSON bodies. Multipart bodies have their own limit.
const maxJSONBody = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns validate.ErrInvalidJSON if decoding fails, otherwise nil.
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	body := http.MaxBytesReader(writer, request.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a numeric URL parameter.

The backend uses integer identifiers for users, books and borrows.
*/
func ID(request *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(request, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.ValidationError("Invalid identifier",
			apperr.FieldError{Field: name, Message: "Must be a positive integer"})
	}
	return id, nil
}
