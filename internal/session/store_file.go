// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileStore persists sessions in a single JSON file readable only by the owner.
//
// It is meant for the terminal client, where there is one user and a handful
// of slots. The file is rewritten atomically on every change.
type FileStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

type fileEntry struct {
	Session   Session   `json:"session"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewFileStore creates a store at path. The file is created lazily.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Load returns the session in slot key.
func (store *FileStore) Load(_ context.Context, key string) (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	entries, err := store.read()
	if err != nil {
		return nil, err
	}

	entry, found := entries[key]
	if !found {
		return nil, ErrNoSession
	}
	if !entry.ExpiresAt.IsZero() && !store.now().Before(entry.ExpiresAt) {
		return nil, ErrNoSession
	}

	session := entry.Session
	return &session, nil
}

// Save writes session to slot key.
func (store *FileStore) Save(_ context.Context, key string, session *Session, ttl time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	entries, err := store.read()
	if err != nil {
		return err
	}

	entry := fileEntry{Session: *session}
	if ttl > 0 {
		entry.ExpiresAt = store.now().Add(ttl)
	}
	entries[key] = entry

	return store.write(entries)
}

// Delete empties slot key; the file is removed once no slot is left.
func (store *FileStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	entries, err := store.read()
	if err != nil {
		return err
	}
	if _, found := entries[key]; !found {
		return nil
	}
	delete(entries, key)

	if len(entries) == 0 {
		if err := os.Remove(store.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("session_file_remove_failed: %w", err)
		}
		return nil
	}

	return store.write(entries)
}

func (store *FileStore) read() (map[string]fileEntry, error) {
	entries := make(map[string]fileEntry)

	data, err := os.ReadFile(store.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session_file_read_failed: %w", err)
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt file is treated as signed out rather than as a hard failure.
		return make(map[string]fileEntry), nil
	}

	return entries, nil
}

func (store *FileStore) write(entries map[string]fileEntry) error {
	if err := os.MkdirAll(filepath.Dir(store.path), 0o700); err != nil {
		return fmt.Errorf("session_file_mkdir_failed: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("session_file_encode_failed: %w", err)
	}

	temporary, err := os.CreateTemp(filepath.Dir(store.path), ".session-*.json")
	if err != nil {
		return fmt.Errorf("session_file_write_failed: %w", err)
	}
	defer os.Remove(temporary.Name())

	if err := temporary.Chmod(0o600); err != nil {
		temporary.Close()
		return fmt.Errorf("session_file_write_failed: %w", err)
	}
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("session_file_write_failed: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("session_file_write_failed: %w", err)
	}

	if err := os.Rename(temporary.Name(), store.path); err != nil {
		return fmt.Errorf("session_file_write_failed: %w", err)
	}
	return nil
}
