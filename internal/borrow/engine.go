// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/libro/internal/catalog"
	"github.com/taibuivan/libro/internal/platform/apperr"
	"github.com/taibuivan/libro/internal/platform/ctxutil"
)

// Catalog is what the engine needs from the book catalogue.
type Catalog interface {
	Get(ctx context.Context, id int64) (*catalog.Book, error)
	Refresh(ctx context.Context) error
}

const (
	// viewSoftLimit is the number of user views kept before idle ones are swept.
	viewSoftLimit = 1024
	// viewIdle is how long an unused user view survives a sweep.
	viewIdle = time.Hour
)

type ownView struct {
	view   *View
	usedAt time.Time
}

// Engine runs borrow submissions and returns.
type Engine struct {
	store   Store
	catalog Catalog
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
	views    map[int64]ownView
	admin    *View
}

// Option configures an [Engine].
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(engine *Engine) { engine.now = now }
}

// NewEngine constructs a new [Engine].
func NewEngine(store Store, books Catalog, logger *slog.Logger, options ...Option) *Engine {
	engine := &Engine{
		store:    store,
		catalog:  books,
		logger:   logger,
		now:      time.Now,
		inflight: make(map[string]struct{}),
		views:    make(map[int64]ownView),
		admin:    NewView(),
	}
	for _, option := range options {
		option(engine)
	}
	return engine
}

// # Submission

/*
Submit sends the attempt's draft to the backend.

The draft is validated first; an invalid draft never leaves the process and
the attempt stays in Draft with the problems as its error. A valid draft
moves the attempt to Submitting. While it is there, a second Submit of the
same attempt, or of any attempt by the same user for the same book, fails
with SUBMISSION_IN_FLIGHT.

On success the attempt is Confirmed, the record joins the user's view and
the catalogue is refreshed. On failure the attempt returns to Draft with
its draft untouched. Nothing is retried.
*/
func (engine *Engine) Submit(ctx context.Context, attempt *Attempt) (*Record, error) {
	principal := ctxutil.GetPrincipal(ctx)
	if principal == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	draft, err := attempt.begin()
	if err != nil {
		return nil, err
	}

	if invalid := ValidateDraft(draft, engine.now()); invalid != nil {
		attempt.reject(invalid)
		return nil, invalid
	}

	key := fmt.Sprintf("%d:%d", principal.UserID, draft.BookID)
	if !engine.claim(key) {
		attempt.reject(apperr.SubmissionInFlight())
		return nil, apperr.SubmissionInFlight()
	}
	defer engine.release(key)

	record, err := engine.send(ctx, draft)
	if err != nil {
		attempt.reject(err)
		return nil, err
	}

	attempt.confirm(record)
	engine.viewOf(principal.UserID).Add(record)

	engine.logger.InfoContext(ctx, "borrow_submitted",
		slog.String("attempt_id", attempt.ID),
		slog.Int64("book_id", draft.BookID),
		slog.Int64("user_id", principal.UserID),
	)

	if err := engine.catalog.Refresh(ctx); err != nil {
		engine.logger.WarnContext(ctx, "catalog_refresh_failed", slog.Any("error", err))
	}

	return record, nil
}

func (engine *Engine) send(ctx context.Context, draft Draft) (*Record, error) {
	book, err := engine.catalog.Get(ctx, draft.BookID)
	if err != nil {
		return nil, err
	}
	if !book.Borrowable() {
		return nil, apperr.BookUnavailable(fmt.Sprintf("%s: %s", book.Title, book.ActionLabel()))
	}

	record, err := engine.store.Borrow(ctx, draft)
	if err != nil {
		return nil, err
	}

	// Some backends answer with an empty body; fill what the gateway knows.
	if record.BookID == 0 && record.Book == nil {
		record.BookID = draft.BookID
		record.Book = book
	}
	if record.BorrowedAt.IsZero() {
		record.BorrowedAt.Time = draft.StartDate
	}
	if record.DueDate.IsZero() {
		record.DueDate.Time = draft.EndDate
	}
	if record.Price.IsZero() {
		record.Price = Price(draft.StartDate, draft.EndDate)
	}
	if record.Status == "" {
		record.Status = StatusPending
	}

	return record, nil
}

func (engine *Engine) claim(key string) bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if _, busy := engine.inflight[key]; busy {
		return false
	}
	engine.inflight[key] = struct{}{}
	return true
}

func (engine *Engine) release(key string) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	delete(engine.inflight, key)
}

// # Listing

// viewOf returns the view of user's own borrows.
func (engine *Engine) viewOf(userID int64) *View {
	now := engine.now()

	engine.mu.Lock()
	defer engine.mu.Unlock()

	entry, found := engine.views[userID]
	if !found {
		if len(engine.views) >= viewSoftLimit {
			for id, idle := range engine.views {
				if now.Sub(idle.usedAt) > viewIdle {
					delete(engine.views, id)
				}
			}
		}
		entry.view = NewView()
	}
	entry.usedAt = now
	engine.views[userID] = entry
	return entry.view
}

// Forget drops the view of user's own borrows. The next listing starts from
// whatever the backend reports.
func (engine *Engine) Forget(userID int64) {
	engine.mu.Lock()
	delete(engine.views, userID)
	engine.mu.Unlock()
}

// OwnView returns the caller's view of their own borrows.
func (engine *Engine) OwnView(ctx context.Context) (*View, error) {
	principal := ctxutil.GetPrincipal(ctx)
	if principal == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return engine.viewOf(principal.UserID), nil
}

// AdminView returns the shared view of every borrow.
func (engine *Engine) AdminView() *View {
	return engine.admin
}

// ListOwn reloads the caller's borrows and classifies them.
func (engine *Engine) ListOwn(ctx context.Context) ([]Entry, error) {
	view, err := engine.OwnView(ctx)
	if err != nil {
		return nil, err
	}

	records, err := engine.store.Borrowed(ctx)
	if err != nil {
		return nil, err
	}

	return Entries(view.Replace(records), engine.now()), nil
}

// Overview is the admin borrow screen.
type Overview struct {
	Borrows []Entry `json:"borrows"`
	Summary Summary `json:"summary"`
}

// ListAll reloads every borrow with its summary.
func (engine *Engine) ListAll(ctx context.Context) (*Overview, error) {
	records, err := engine.store.AdminBorrows(ctx)
	if err != nil {
		return nil, err
	}

	now := engine.now()
	shown := engine.admin.Replace(records)

	return &Overview{Borrows: Entries(shown, now), Summary: Summarize(shown, now)}, nil
}

// # Returns

/*
ReturnOwn returns the caller's borrow of bookID and drops it from view.

A book already returned through view fails with ALREADY_RETURNED and the
view is left as is. The backend reporting nothing to return (404 or 409)
also counts as already returned.
*/
func (engine *Engine) ReturnOwn(ctx context.Context, view *View, bookID int64) error {
	view.returning.Lock()
	defer view.returning.Unlock()

	record, gone := view.byBook(bookID)
	if record == nil && gone {
		return apperr.AlreadyReturned()
	}

	if err := engine.store.ReturnBook(ctx, bookID); err != nil {
		if apperr.HasCode(err, apperr.CodeAlreadyReturned) {
			view.settle(recordID(record), bookID)
		}
		return err
	}

	view.settle(recordID(record), bookID)
	engine.logger.InfoContext(ctx, "borrow_returned", slog.Int64("book_id", bookID))
	return nil
}

// ReturnBorrow settles borrowID on the reader's behalf and drops it from view.
func (engine *Engine) ReturnBorrow(ctx context.Context, view *View, borrowID int64) error {
	view.returning.Lock()
	defer view.returning.Unlock()

	record, gone := view.byID(borrowID)
	if record == nil && gone {
		return apperr.AlreadyReturned()
	}

	bookID := int64(0)
	if record != nil {
		bookID = record.bookID()
	}

	if err := engine.store.ReturnBorrow(ctx, borrowID); err != nil {
		if apperr.HasCode(err, apperr.CodeAlreadyReturned) {
			view.settle(borrowID, bookID)
		}
		return err
	}

	view.settle(borrowID, bookID)
	engine.logger.InfoContext(ctx, "borrow_settled_by_admin", slog.Int64("borrow_id", borrowID))
	return nil
}

func recordID(record *Record) int64 {
	if record == nil {
		return 0
	}
	return record.ID
}
