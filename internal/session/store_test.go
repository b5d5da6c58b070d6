// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libro/internal/platform/sec"
	"github.com/taibuivan/libro/internal/session"
)

/*
TestStores_RoundTrip runs the same contract against the local stores.
*/
func TestStores_RoundTrip(t *testing.T) {
	stores := map[string]session.Store{
		"memory": session.NewMemoryStore(),
		"file":   session.NewFileStore(filepath.Join(t.TempDir(), "libro", "session.json")),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Load(ctx, "cli")
			assert.ErrorIs(t, err, session.ErrNoSession)

			saved := &session.Session{UserID: 7, DisplayName: "Ada", Role: sec.RoleUser, Token: "tok"}
			require.NoError(t, store.Save(ctx, "cli", saved, time.Hour))

			loaded, err := store.Load(ctx, "cli")
			require.NoError(t, err)
			assert.Equal(t, saved.UserID, loaded.UserID)
			assert.Equal(t, "tok", loaded.Token)

			loaded.DisplayName = "mutated"
			again, err := store.Load(ctx, "cli")
			require.NoError(t, err)
			assert.Equal(t, "Ada", again.DisplayName, "stores hand out copies")

			require.NoError(t, store.Delete(ctx, "cli"))
			require.NoError(t, store.Delete(ctx, "cli"))

			_, err = store.Load(ctx, "cli")
			assert.ErrorIs(t, err, session.ErrNoSession)
		})
	}
}

/*
TestFileStore_Permissions checks that the session file is private to its owner.
*/
func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := session.NewFileStore(path)

	require.NoError(t, store.Save(context.Background(), "cli", &session.Session{UserID: 1, Token: "tok"}, 0))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

/*
TestFileStore_CorruptFile verifies that garbage on disk reads as signed out.
*/
func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := session.NewFileStore(path).Load(context.Background(), "cli")
	assert.ErrorIs(t, err, session.ErrNoSession)
}
