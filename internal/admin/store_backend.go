// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"context"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/taibuivan/libro/internal/backend"
	"github.com/taibuivan/libro/internal/platform/apperr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BackendStore implements [Store] against the library REST API.
type BackendStore struct {
	client *backend.Client
}

// NewBackendStore creates a store that talks to client.
func NewBackendStore(client *backend.Client) *BackendStore {
	return &BackendStore{client: client}
}

func (store *BackendStore) ListUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	if err := store.client.Get(ctx, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (store *BackendStore) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	var user User
	if err := store.client.Post(ctx, "/admin/users", input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (store *BackendStore) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*User, error) {
	var user User
	err := store.client.Put(ctx, fmt.Sprintf("/admin/users/%d", id), input, &user)
	if backend.StatusOf(err) == http.StatusNotFound {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (store *BackendStore) DeleteUser(ctx context.Context, id int64) error {
	err := store.client.Delete(ctx, fmt.Sprintf("/admin/users/%d", id))
	if backend.StatusOf(err) == http.StatusNotFound {
		return apperr.NotFound("User")
	}
	return err
}

func (store *BackendStore) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := store.client.Get(ctx, "/admin/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (store *BackendStore) RecentActivity(ctx context.Context) ([]Activity, error) {
	var activity []Activity
	if err := store.client.Get(ctx, "/admin/dashboard/recent-activity", nil, &activity); err != nil {
		return nil, err
	}
	return activity, nil
}
