// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/taibuivan/libro/internal/backend"
	"github.com/taibuivan/libro/internal/platform/apperr"
)

// BackendStore implements [Store] against the library REST API.
type BackendStore struct {
	client *backend.Client
}

// NewBackendStore creates a store that talks to client.
func NewBackendStore(client *backend.Client) *BackendStore {
	return &BackendStore{client: client}
}

func (store *BackendStore) List(ctx context.Context, search string) ([]*Book, error) {
	var query url.Values
	if search = strings.TrimSpace(search); search != "" {
		query = url.Values{"search": {search}}
	}

	var books []*Book
	if err := store.client.Get(ctx, "/books", query, &books); err != nil {
		return nil, err
	}
	return normalizeAll(books), nil
}

func (store *BackendStore) FindByID(ctx context.Context, id int64) (*Book, error) {
	var book Book
	err := store.client.Get(ctx, fmt.Sprintf("/books/%d", id), nil, &book)
	if backend.StatusOf(err) == http.StatusNotFound {
		return nil, apperr.NotFound("Book")
	}
	if err != nil {
		return nil, err
	}
	return book.normalize(), nil
}

func (store *BackendStore) AdminList(ctx context.Context) ([]*Book, error) {
	var books []*Book
	if err := store.client.Get(ctx, "/admin/books", nil, &books); err != nil {
		return nil, err
	}
	return normalizeAll(books), nil
}

func (store *BackendStore) Create(ctx context.Context, input BookInput) (*Book, error) {
	var book Book
	if err := store.client.Post(ctx, "/admin/books", input, &book); err != nil {
		return nil, err
	}
	return book.normalize(), nil
}

func (store *BackendStore) Update(ctx context.Context, id int64, input BookInput) (*Book, error) {
	var book Book
	if err := store.client.Put(ctx, fmt.Sprintf("/admin/books/%d", id), input, &book); err != nil {
		return nil, err
	}
	return book.normalize(), nil
}

func (store *BackendStore) Delete(ctx context.Context, id int64) error {
	return store.client.Delete(ctx, fmt.Sprintf("/admin/books/%d", id))
}

func normalizeAll(books []*Book) []*Book {
	kept := make([]*Book, 0, len(books))
	for _, book := range books {
		if book != nil {
			kept = append(kept, book.normalize())
		}
	}
	return kept
}
