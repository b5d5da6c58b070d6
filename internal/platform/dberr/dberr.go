// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/libro/internal/platform/apperr"
)

// IsNoRows reports whether err means the queried row does not exist.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Wrap inspects a database error and wraps it into an [apperr.AppError].
// It hides internal database details from the client while keeping the
// failing action and SQLSTATE in the cause for logs.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if IsNoRows(err) {
		return apperr.NotFound("Record")
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return apperr.Internal(fmt.Errorf("%s_failed: sqlstate %s: %w", action, pgError.Code, err))
	}

	return apperr.Internal(fmt.Errorf("%s_failed: %w", action, err))
}
