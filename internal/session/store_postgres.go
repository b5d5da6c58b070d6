// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/libro/internal/platform/dberr"
	"github.com/taibuivan/libro/internal/platform/sec"
)

// PostgresStore implements [Store] on the web.session table.
//
// Rows are keyed by the SHA-256 of the cookie value. Expired rows are
// ignored on read and removed by [PostgresStore.Purge].
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore creates a new PostgreSQL-backed [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

const (
	selectSessionSQL = `
		SELECT payload
		FROM web.session
		WHERE idhash = $1 AND expiresat > $2`

	upsertSessionSQL = `
		INSERT INTO web.session (idhash, userid, payload, expiresat, updatedat)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (idhash) DO UPDATE
		SET userid = EXCLUDED.userid,
		    payload = EXCLUDED.payload,
		    expiresat = EXCLUDED.expiresat,
		    updatedat = EXCLUDED.updatedat`

	deleteSessionSQL = `DELETE FROM web.session WHERE idhash = $1`

	purgeSessionsSQL = `DELETE FROM web.session WHERE expiresat <= $1`
)

// Load retrieves the live session under key.
func (repository *PostgresStore) Load(ctx context.Context, key string) (*Session, error) {
	var payload []byte

	err := repository.pool.QueryRow(ctx, selectSessionSQL, sec.HashToken(key), repository.now()).Scan(&payload)
	if dberr.IsNoRows(err) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, dberr.Wrap(err, "session_select")
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("postgres_session_decode_failed: %w", err)
	}

	return &session, nil
}

// Save upserts session under key until now+ttl.
func (repository *PostgresStore) Save(ctx context.Context, key string, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("postgres_session_encode_failed: %w", err)
	}

	now := repository.now()
	_, err = repository.pool.Exec(ctx, upsertSessionSQL,
		sec.HashToken(key), session.UserID, payload, now.Add(ttl), now)

	return dberr.Wrap(err, "session_upsert")
}

// Delete removes the session under key.
func (repository *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := repository.pool.Exec(ctx, deleteSessionSQL, sec.HashToken(key))
	return dberr.Wrap(err, "session_delete")
}

// Purge deletes expired rows and reports how many were removed.
func (repository *PostgresStore) Purge(ctx context.Context) (int64, error) {
	tag, err := repository.pool.Exec(ctx, purgeSessionsSQL, repository.now())
	if err != nil {
		return 0, dberr.Wrap(err, "session_purge")
	}
	return tag.RowsAffected(), nil
}
