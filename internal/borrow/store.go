// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrow

import "context"

// Store forwards borrow operations to the backend.
type Store interface {
	// Borrow submits a validated draft.
	Borrow(ctx context.Context, draft Draft) (*Record, error)
	// ReturnBook returns the caller's borrow of bookID.
	ReturnBook(ctx context.Context, bookID int64) error
	// Borrowed lists the caller's active borrows.
	Borrowed(ctx context.Context) ([]*Record, error)

	// AdminBorrows lists every active borrow.
	AdminBorrows(ctx context.Context) ([]*Record, error)
	// ReturnBorrow settles a borrow on behalf of its reader.
	ReturnBorrow(ctx context.Context, borrowID int64) error
}
