// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import "context"

// Store is the source of truth for books.
type Store interface {
	// List returns the public list, optionally filtered by the backend's search.
	List(ctx context.Context, search string) ([]*Book, error)
	FindByID(ctx context.Context, id int64) (*Book, error)

	// Admin inventory.
	AdminList(ctx context.Context) ([]*Book, error)
	Create(ctx context.Context, input BookInput) (*Book, error)
	Update(ctx context.Context, id int64, input BookInput) (*Book, error)
	Delete(ctx context.Context, id int64) error
}
