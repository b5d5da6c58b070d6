// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrow

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/taibuivan/libro/internal/backend"
	"github.com/taibuivan/libro/internal/catalog"
)

// Status is the backend's lifecycle state of a borrow.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusReturned Status = "returned"
)

// Record is a borrow as reported by the backend. The admin listing fills
// the flattened user and book fields; the reader listing embeds the book.
type Record struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId,omitempty"`
	BookID     int64           `json:"bookId,omitempty"`
	Book       *catalog.Book   `json:"book,omitempty"`
	BorrowedAt backend.Time    `json:"borrowedAt"`
	DueDate    backend.Time    `json:"dueDate"`
	Price      decimal.Decimal `json:"price"`
	Status     Status          `json:"status,omitempty"`

	UserName        string       `json:"userName,omitempty"`
	UserEmail       string       `json:"userEmail,omitempty"`
	BookTitle       string       `json:"bookTitle,omitempty"`
	BookAuthor      string       `json:"bookAuthor,omitempty"`
	IDCardImagePath string       `json:"idCardImagePath,omitempty"`
	CreatedAt       backend.Time `json:"createdAt"`
}

// bookID resolves the book the record refers to.
func (record *Record) bookID() int64 {
	if record.BookID != 0 {
		return record.BookID
	}
	if record.Book != nil {
		return record.Book.ID
	}
	return 0
}

// Title is the book title from whichever field the backend filled.
func (record *Record) Title() string {
	if record.BookTitle != "" {
		return record.BookTitle
	}
	if record.Book != nil {
		return record.Book.Title
	}
	return ""
}

// openedAt is when the borrow was requested, falling back to the borrow date.
func (record *Record) openedAt() time.Time {
	if !record.CreatedAt.IsZero() {
		return record.CreatedAt.Time
	}
	return record.BorrowedAt.Time
}
