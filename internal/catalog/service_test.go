// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libro/internal/catalog"
)

type fakeStore struct {
	mu      sync.Mutex
	books   []*catalog.Book
	lists   int
	created []catalog.BookInput
}

func (store *fakeStore) List(_ context.Context, _ string) ([]*catalog.Book, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.lists++
	return store.books, nil
}

func (store *fakeStore) FindByID(_ context.Context, id int64) (*catalog.Book, error) {
	for _, book := range store.books {
		if book.ID == id {
			return book, nil
		}
	}
	return nil, nil
}

func (store *fakeStore) AdminList(context.Context) ([]*catalog.Book, error) {
	return store.books, nil
}

func (store *fakeStore) Create(_ context.Context, input catalog.BookInput) (*catalog.Book, error) {
	store.created = append(store.created, input)
	return &catalog.Book{ID: 99, Title: input.Title}, nil
}

func (store *fakeStore) Update(_ context.Context, id int64, input catalog.BookInput) (*catalog.Book, error) {
	return &catalog.Book{ID: id, Title: input.Title}, nil
}

func (store *fakeStore) Delete(context.Context, int64) error { return nil }

func sampleBooks() []*catalog.Book {
	return []*catalog.Book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert", Category: "Science Fiction", NumberOfCopies: 2, Available: true},
		{ID: 2, Title: "Emma", Author: "Jane Austen", Category: "Romance", NumberOfCopies: 1, Available: true},
		{ID: 3, Title: "Straße der Ölsardinen", Author: "John Steinbeck", Category: "Fiction", NumberOfCopies: 0},
	}
}

/*
TestService_SnapshotCache verifies caching, expiry and explicit refresh.
*/
func TestService_SnapshotCache(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{books: sampleBooks()}
	service := catalog.NewService(store, catalog.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := service.List(ctx, catalog.Filter{})
	require.NoError(t, err)
	_, err = service.List(ctx, catalog.Filter{Category: "Romance"})
	require.NoError(t, err)
	assert.Equal(t, 1, store.lists, "category filtering reuses the snapshot")

	require.NoError(t, service.Refresh(ctx))
	assert.Equal(t, 2, store.lists)

	now = now.Add(catalog.DefaultSnapshotTTL)
	_, err = service.List(ctx, catalog.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, store.lists)
}

/*
TestService_ListByCategory checks the local category filter.
*/
func TestService_ListByCategory(t *testing.T) {
	service := catalog.NewService(&fakeStore{books: sampleBooks()})

	books, err := service.List(context.Background(), catalog.Filter{Category: "science fiction"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)

	books, err = service.List(context.Background(), catalog.Filter{Category: catalog.AllCategories})
	require.NoError(t, err)
	assert.Len(t, books, 3)
}

/*
TestService_AdminList checks the case-folded search.
*/
func TestService_AdminList(t *testing.T) {
	service := catalog.NewService(&fakeStore{books: sampleBooks()})

	tests := []struct {
		search string
		want   []int64
	}{
		{"", []int64{1, 2, 3}},
		{"AUSTEN", []int64{2}},
		{"fiction", []int64{1, 3}},
		{"STRASSE", []int64{3}},
		{"nothing", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			books, err := service.AdminList(context.Background(), tt.search)
			require.NoError(t, err)

			ids := make([]int64, 0, len(books))
			for _, book := range books {
				ids = append(ids, book.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

/*
TestService_CreateValidatesBeforeStore ensures invalid input never reaches the backend.
*/
func TestService_CreateValidatesBeforeStore(t *testing.T) {
	store := &fakeStore{books: sampleBooks()}
	service := catalog.NewService(store)

	_, err := service.Create(context.Background(), catalog.BookInput{Title: "  "})
	require.Error(t, err)
	assert.Empty(t, store.created)

	input := catalog.NewBookInput(time.Now())
	input.Title, input.Author = " Dune ", "Herbert"
	book, err := service.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	require.Len(t, store.created, 1)
	assert.Equal(t, "General", store.created[0].Category)
}

/*
TestService_WritesInvalidateSnapshot checks that an edit forces a re-fetch.
*/
func TestService_WritesInvalidateSnapshot(t *testing.T) {
	store := &fakeStore{books: sampleBooks()}
	service := catalog.NewService(store)
	ctx := context.Background()

	_, err := service.List(ctx, catalog.Filter{})
	require.NoError(t, err)
	require.NoError(t, service.Delete(ctx, 2))
	_, err = service.List(ctx, catalog.Filter{})
	require.NoError(t, err)

	assert.Equal(t, 2, store.lists)
}
