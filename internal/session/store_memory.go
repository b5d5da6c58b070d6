// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Used in development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, entries: make(map[string]memoryEntry)}
}

// Load returns a copy of the session in slot key.
func (store *MemoryStore) Load(_ context.Context, key string) (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	entry, found := store.entries[key]
	if !found {
		return nil, ErrNoSession
	}
	if !entry.expiresAt.IsZero() && !store.now().Before(entry.expiresAt) {
		delete(store.entries, key)
		return nil, ErrNoSession
	}

	session := entry.session
	return &session, nil
}

// Save stores a copy of session for ttl (forever when ttl <= 0).
func (store *MemoryStore) Save(_ context.Context, key string, session *Session, ttl time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	entry := memoryEntry{session: *session}
	if ttl > 0 {
		entry.expiresAt = store.now().Add(ttl)
	}
	store.entries[key] = entry
	return nil
}

// Delete empties slot key.
func (store *MemoryStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.entries, key)
	return nil
}
