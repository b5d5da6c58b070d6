// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrow

import (
	"context"
	"fmt"
	"net/http"

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

// Borrow posts the draft as multipart StartDate, EndDate and IdCardImage.
// A 409 means the book cannot be borrowed right now.
func (store *BackendStore) Borrow(ctx context.Context, draft Draft) (*Record, error) {
	form := (&backend.Form{}).
		Field("StartDate", draft.StartDate.Format(DateLayout)).
		Field("EndDate", draft.EndDate.Format(DateLayout)).
		File(backend.FormFile{
			Field:       "IdCardImage",
			Name:        draft.IDProof.Name,
			ContentType: draft.IDProof.ContentType(),
			Data:        draft.IDProof.Data,
		})

	var record Record
	err := store.client.Do(ctx, backend.Call{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/books/%d/borrow", draft.BookID),
		Form:   form,
	}, &record)

	if backend.StatusOf(err) == http.StatusConflict {
		return nil, apperr.BookUnavailable(backend.MessageOf(err))
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (store *BackendStore) ReturnBook(ctx context.Context, bookID int64) error {
	return settled(store.client.Post(ctx, fmt.Sprintf("/books/%d/return", bookID), nil, nil))
}

func (store *BackendStore) Borrowed(ctx context.Context) ([]*Record, error) {
	var records []*Record
	if err := store.client.Get(ctx, "/books/borrowed-books", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (store *BackendStore) AdminBorrows(ctx context.Context) ([]*Record, error) {
	var records []*Record
	if err := store.client.Get(ctx, "/admin/borrows", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (store *BackendStore) ReturnBorrow(ctx context.Context, borrowID int64) error {
	return settled(store.client.Post(ctx, fmt.Sprintf("/admin/borrows/%d/return", borrowID), nil, nil))
}

// settled reads a 404 or 409 on a return as "nothing left to return".
func settled(err error) error {
	switch backend.StatusOf(err) {
	case http.StatusNotFound, http.StatusConflict:
		return apperr.AlreadyReturned()
	}
	return err
}
