// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/taibuivan/libro/pkg/slice"
)

// DefaultSnapshotTTL bounds how stale the cached public list may get.
const DefaultSnapshotTTL = 30 * time.Second

type snapshot struct {
	books     []*Book
	fetchedAt time.Time
}

// # Service Layer

// Service fronts the [Store] with a snapshot cache of the public list.
type Service struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu         sync.Mutex
	snapshots  map[string]snapshot
	generation uint64
}

// Option configures a [Service].
type Option func(*Service)

// WithSnapshotTTL overrides [DefaultSnapshotTTL]. Zero disables caching.
func WithSnapshotTTL(ttl time.Duration) Option {
	return func(service *Service) { service.ttl = ttl }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// NewService constructs a new [Service].
func NewService(store Store, options ...Option) *Service {
	service := &Service{
		store:     store,
		ttl:       DefaultSnapshotTTL,
		now:       time.Now,
		snapshots: make(map[string]snapshot),
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// # Reader Operations

/*
List returns the public books matching filter.

The search term is forwarded to the backend; the category is applied
locally on the result, comparing slugs so "science fiction" matches
"Science Fiction".
*/
func (service *Service) List(ctx context.Context, filter Filter) ([]*Book, error) {
	books, err := service.snapshot(ctx, strings.TrimSpace(filter.Search))
	if err != nil {
		return nil, err
	}

	return slice.Filter(books, func(book *Book) bool {
		return MatchesCategory(book, filter.Category)
	}), nil
}

// Get fetches one book. It always asks the backend so availability is current.
func (service *Service) Get(ctx context.Context, id int64) (*Book, error) {
	return service.store.FindByID(ctx, id)
}

// Categories returns the fixed category list.
func (service *Service) Categories() []string {
	return append([]string(nil), Categories...)
}

// Refresh drops every cached snapshot and re-fetches the unfiltered list.
func (service *Service) Refresh(ctx context.Context) error {
	service.Invalidate()
	_, err := service.snapshot(ctx, "")
	return err
}

// Invalidate drops every cached snapshot.
func (service *Service) Invalidate() {
	service.mu.Lock()
	defer service.mu.Unlock()

	service.generation++
	clear(service.snapshots)
}

func (service *Service) snapshot(ctx context.Context, search string) ([]*Book, error) {
	now := service.now()

	service.mu.Lock()
	cached, found := service.snapshots[search]
	generation := service.generation
	service.mu.Unlock()

	if found && now.Sub(cached.fetchedAt) < service.ttl {
		return cached.books, nil
	}

	books, err := service.store.List(ctx, search)
	if err != nil {
		return nil, err
	}

	service.mu.Lock()
	// A refresh that raced with this fetch wins.
	if service.ttl > 0 && generation == service.generation {
		service.snapshots[search] = snapshot{books: books, fetchedAt: now}
	}
	service.mu.Unlock()

	return books, nil
}

// # Admin Operations

// AdminList returns the full inventory, filtered locally by a case-folded
// match on title, author or category.
func (service *Service) AdminList(ctx context.Context, search string) ([]*Book, error) {
	books, err := service.store.AdminList(ctx)
	if err != nil {
		return nil, err
	}

	search = strings.TrimSpace(search)
	if search == "" {
		return books, nil
	}

	folder := cases.Fold()
	needle := folder.String(search)

	return slice.Filter(books, func(book *Book) bool {
		return strings.Contains(folder.String(book.Title), needle) ||
			strings.Contains(folder.String(book.Author), needle) ||
			strings.Contains(folder.String(book.Category), needle)
	}), nil
}

// Create validates input and adds the book.
func (service *Service) Create(ctx context.Context, input BookInput) (*Book, error) {
	input.Normalize()
	if err := input.Validate(service.now()); err != nil {
		return nil, err
	}

	book, err := service.store.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	service.Invalidate()
	return book, nil
}

// Update validates input and replaces the book's fields.
func (service *Service) Update(ctx context.Context, id int64, input BookInput) (*Book, error) {
	input.Normalize()
	if err := input.Validate(service.now()); err != nil {
		return nil, err
	}

	book, err := service.store.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}

	service.Invalidate()
	return book, nil
}

// Delete removes the book.
func (service *Service) Delete(ctx context.Context, id int64) error {
	if err := service.store.Delete(ctx, id); err != nil {
		return err
	}

	service.Invalidate()
	return nil
}
