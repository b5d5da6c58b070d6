// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrow_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libro/internal/backend"
	"github.com/taibuivan/libro/internal/borrow"
	"github.com/taibuivan/libro/internal/catalog"
	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/internal/platform/ctxutil"
	"github.com/taibuivan/libro/internal/platform/sec"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeStore struct {
	mu        sync.Mutex
	borrowErr error
	gate      chan struct{}
	entered   chan struct{}
	borrows   int
	returns   map[int64]int
	records   []*borrow.Record
	returnErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{returns: make(map[int64]int)}
}

func (store *fakeStore) Borrow(_ context.Context, draft borrow.Draft) (*borrow.Record, error) {
	if store.entered != nil {
		store.entered <- struct{}{}
	}
	if store.gate != nil {
		<-store.gate
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	store.borrows++
	if store.borrowErr != nil {
		return nil, store.borrowErr
	}
	return &borrow.Record{ID: 500}, nil
}

func (store *fakeStore) ReturnBook(_ context.Context, bookID int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.returns[bookID]++
	return store.returnErr
}

func (store *fakeStore) Borrowed(context.Context) ([]*borrow.Record, error) {
	return store.records, nil
}

func (store *fakeStore) AdminBorrows(context.Context) ([]*borrow.Record, error) {
	return store.records, nil
}

func (store *fakeStore) ReturnBorrow(_ context.Context, borrowID int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.returns[borrowID]++
	return store.returnErr
}

type fakeCatalog struct {
	mu        sync.Mutex
	book      *catalog.Book
	refreshes int
}

func (books *fakeCatalog) Get(context.Context, int64) (*catalog.Book, error) {
	return books.book, nil
}

func (books *fakeCatalog) Refresh(context.Context) error {
	books.mu.Lock()
	defer books.mu.Unlock()
	books.refreshes++
	return nil
}

var engineNow = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func newEngine(store *fakeStore, books *fakeCatalog) *borrow.Engine {
	return borrow.NewEngine(store, books, quietLogger, borrow.WithClock(func() time.Time { return engineNow }))
}

func readerContext() context.Context {
	return ctxutil.WithPrincipal(context.Background(), &sec.Principal{UserID: 7, Role: sec.RoleUser})
}

func availableBook() *fakeCatalog {
	return &fakeCatalog{book: &catalog.Book{ID: 3, Title: "Dune", NumberOfCopies: 2, Available: true}}
}

func validDraft(t *testing.T) borrow.Draft {
	return borrow.Draft{BookID: 3, StartDate: date(t, "2024-01-10"), EndDate: date(t, "2024-01-15"), IDProof: pngProof()}
}

/*
TestSubmit_Confirms walks the happy path of the attempt state machine.
*/
func TestSubmit_Confirms(t *testing.T) {
	store, books := newFakeStore(), availableBook()
	engine := newEngine(store, books)
	attempt := borrow.NewAttempt(validDraft(t))

	require.Equal(t, borrow.PhaseDraft, attempt.Phase())

	record, err := engine.Submit(readerContext(), attempt)
	require.NoError(t, err)

	assert.Equal(t, borrow.PhaseConfirmed, attempt.Phase())
	assert.Equal(t, int64(3), record.BookID)
	assert.Equal(t, "10.00", record.Price.StringFixed(2))
	assert.Equal(t, borrow.StatusPending, record.Status)
	assert.Equal(t, 1, books.refreshes, "success refreshes the catalogue")

	_, err = engine.Submit(readerContext(), attempt)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict), "a confirmed attempt is terminal")
	assert.Equal(t, 1, store.borrows)
}

/*
TestSubmit_InvalidDraftNeverLeaves ensures validation happens before the network.
*/
func TestSubmit_InvalidDraftNeverLeaves(t *testing.T) {
	store := newFakeStore()
	engine := newEngine(store, availableBook())

	draft := validDraft(t)
	draft.EndDate = date(t, "2024-03-01")
	attempt := borrow.NewAttempt(draft)

	_, err := engine.Submit(readerContext(), attempt)

	var invalid *borrow.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.True(t, invalid.Has(borrow.RangeExceedsMaximum))
	assert.Equal(t, borrow.PhaseDraft, attempt.Phase())
	assert.Equal(t, draft, attempt.Draft())
	assert.Zero(t, store.borrows)
}

/*
TestSubmit_FailureKeepsDraft checks that a backend failure allows a retry.
*/
func TestSubmit_FailureKeepsDraft(t *testing.T) {
	store, books := newFakeStore(), availableBook()
	store.borrowErr = apperr.Network(io.EOF)
	engine := newEngine(store, books)
	attempt := borrow.NewAttempt(validDraft(t))

	_, err := engine.Submit(readerContext(), attempt)
	assert.True(t, apperr.HasCode(err, apperr.CodeNetwork))
	assert.Equal(t, borrow.PhaseDraft, attempt.Phase())
	assert.Equal(t, validDraft(t), attempt.Draft())
	assert.Equal(t, err, attempt.Err())
	assert.Zero(t, books.refreshes)

	store.borrowErr = nil
	_, err = engine.Submit(readerContext(), attempt)
	require.NoError(t, err)
	assert.Equal(t, borrow.PhaseConfirmed, attempt.Phase())
}

/*
TestSubmit_BookUnavailable refuses books without copies before calling the backend.
*/
func TestSubmit_BookUnavailable(t *testing.T) {
	store := newFakeStore()
	books := &fakeCatalog{book: &catalog.Book{ID: 3, Title: "Dune", NumberOfCopies: 0, Available: true}}
	engine := newEngine(store, books)

	_, err := engine.Submit(readerContext(), borrow.NewAttempt(validDraft(t)))

	assert.True(t, apperr.HasCode(err, apperr.CodeBookUnavailable))
	assert.Zero(t, store.borrows)
}

/*
TestSubmit_InFlight refuses duplicates while a submission is pending.
*/
func TestSubmit_InFlight(t *testing.T) {
	store, books := newFakeStore(), availableBook()
	store.gate = make(chan struct{})
	store.entered = make(chan struct{}, 1)
	engine := newEngine(store, books)

	attempt := borrow.NewAttempt(validDraft(t))

	done := make(chan error, 1)
	go func() {
		_, err := engine.Submit(readerContext(), attempt)
		done <- err
	}()
	<-store.entered

	assert.Equal(t, borrow.PhaseSubmitting, attempt.Phase())

	_, err := engine.Submit(readerContext(), attempt)
	assert.True(t, apperr.HasCode(err, apperr.CodeSubmissionInFlight), "same attempt")

	_, err = engine.Submit(readerContext(), borrow.NewAttempt(validDraft(t)))
	assert.True(t, apperr.HasCode(err, apperr.CodeSubmissionInFlight), "same user and book")

	close(store.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, store.borrows)
}

/*
TestReturnOwn_Idempotent checks that the second return fails and the list stays pruned.
*/
func TestReturnOwn_Idempotent(t *testing.T) {
	store := newFakeStore()
	store.records = []*borrow.Record{
		{ID: 11, Book: &catalog.Book{ID: 3, Title: "Dune"}, DueDate: backend.Time{Time: engineNow.AddDate(0, 0, 2)}},
		{ID: 12, Book: &catalog.Book{ID: 4, Title: "Emma"}, DueDate: backend.Time{Time: engineNow.AddDate(0, 0, -1)}},
	}
	engine := newEngine(store, availableBook())
	ctx := readerContext()

	entries, err := engine.ListOwn(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, borrow.DueSoon, entries[0].DueStatus)
	assert.Equal(t, borrow.Overdue, entries[1].DueStatus)

	view, err := engine.OwnView(ctx)
	require.NoError(t, err)

	require.NoError(t, engine.ReturnOwn(ctx, view, 3))
	err = engine.ReturnOwn(ctx, view, 3)
	assert.True(t, apperr.HasCode(err, apperr.CodeAlreadyReturned))

	assert.Len(t, view.Records(), 1)
	assert.Equal(t, 1, store.returns[3], "the duplicate never reaches the backend")

	entries, err = engine.ListOwn(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "a lagging backend does not bring the record back")
}

/*
TestReturnBorrow_AdminIdempotent covers the admin path and backend-reported returns.
*/
func TestReturnBorrow_AdminIdempotent(t *testing.T) {
	store := newFakeStore()
	store.records = []*borrow.Record{{ID: 21, BookID: 3}, {ID: 22, BookID: 4}}
	engine := newEngine(store, availableBook())
	ctx := readerContext()

	overview, err := engine.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, overview.Summary.Total)

	require.NoError(t, engine.ReturnBorrow(ctx, engine.AdminView(), 21))
	assert.True(t, apperr.HasCode(engine.ReturnBorrow(ctx, engine.AdminView(), 21), apperr.CodeAlreadyReturned))

	store.returnErr = apperr.AlreadyReturned()
	assert.True(t, apperr.HasCode(engine.ReturnBorrow(ctx, engine.AdminView(), 22), apperr.CodeAlreadyReturned))
	assert.Empty(t, engine.AdminView().Records())
}

/*
TestView_ReplaceForgetsSettledMarkers checks return markers only live while
the backend still lists the record.
*/
func TestView_ReplaceForgetsSettledMarkers(t *testing.T) {
	store := newFakeStore()
	engine := newEngine(store, availableBook())
	ctx := readerContext()

	view := borrow.NewView()
	view.Replace([]*borrow.Record{{ID: 21, BookID: 3}, {ID: 22, BookID: 4}})
	require.NoError(t, engine.ReturnBorrow(ctx, view, 21))

	shown := view.Replace([]*borrow.Record{{ID: 21, BookID: 3}, {ID: 22, BookID: 4}})
	require.Len(t, shown, 1, "a lagging backend stays hidden")

	view.Replace([]*borrow.Record{{ID: 22, BookID: 4}})

	shown = view.Replace([]*borrow.Record{{ID: 21, BookID: 3}, {ID: 22, BookID: 4}})
	assert.Len(t, shown, 2, "the marker went away once the backend dropped the record")
}

/*
TestEngine_ViewsAreReleased covers Forget and the idle sweep of user views.
*/
func TestEngine_ViewsAreReleased(t *testing.T) {
	now := engineNow
	engine := borrow.NewEngine(newFakeStore(), availableBook(), quietLogger, borrow.WithClock(func() time.Time { return now }))

	asUser := func(id int64) context.Context {
		return ctxutil.WithPrincipal(context.Background(), &sec.Principal{UserID: id, Role: sec.RoleUser})
	}
	viewOf := func(id int64) *borrow.View {
		view, err := engine.OwnView(asUser(id))
		require.NoError(t, err)
		return view
	}

	first := viewOf(1)
	assert.Same(t, first, viewOf(1))

	engine.Forget(1)
	second := viewOf(1)
	assert.NotSame(t, first, second)

	for id := int64(2); id <= 1024; id++ {
		viewOf(id)
	}

	now = now.Add(2 * time.Hour)
	fresh := viewOf(2000)
	assert.Same(t, fresh, viewOf(2000))
	assert.NotSame(t, second, viewOf(1), "idle views are swept once the limit is reached")
}
