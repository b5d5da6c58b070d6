// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog serves the library's books to readers and administrators.

The backend is authoritative for inventory. The catalog keeps a short-lived
snapshot of the public list so that paging and category filtering do not
hit the backend on every request, and drops that snapshot whenever a borrow
or an admin edit may have changed availability.
*/
package catalog

import (
	"strings"
	"time"

	"github.com/taibuivan/libro/internal/platform/validate"
	"github.com/taibuivan/libro/pkg/slug"
)

// AllCategories is the pseudo category that disables category filtering.
const AllCategories = "All Categories"

// DefaultCategory is preselected when creating a book.
const DefaultCategory = "General"

// Categories is the fixed list offered by the book editor.
var Categories = []string{
	"Fiction", "Non-Fiction", "Science Fiction", "Fantasy", "Romance",
	"Mystery", "Thriller", "Biography", "History", "Science",
	"Technology", "Philosophy", "Religion", "Art", "Music",
	"Poetry", "Drama", "Comedy", "Horror", "Adventure",
	"Children", "Young Adult", "Reference", "Textbook", DefaultCategory,
}

// # Entity

// Book is a catalogue entry as reported by the backend.
type Book struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	Description    string `json:"description"`
	PublishedYear  int    `json:"publishedYear"`
	Category       string `json:"category"`
	NumberOfCopies int    `json:"numberOfCopies"`
	Available      bool   `json:"available"`
	CoverImage     string `json:"coverImage,omitempty"`
}

// normalize enforces that a book without copies is never reported available.
func (book *Book) normalize() *Book {
	book.Available = book.Available && book.NumberOfCopies > 0
	return book
}

// Borrowable reports whether a borrow action may be offered for the book.
func (book *Book) Borrowable() bool {
	return book.NumberOfCopies > 0 && book.Available
}

// ActionLabel is the caption of the book's borrow button.
func (book *Book) ActionLabel() string {
	switch {
	case book.NumberOfCopies <= 0:
		return "Out of Stock"
	case book.Available:
		return "Borrow"
	default:
		return "Unavailable"
	}
}

// Listing is the wire view of a book, with the derived action fields.
type Listing struct {
	*Book
	Borrowable  bool   `json:"borrowable"`
	ActionLabel string `json:"actionLabel"`
}

// ListingOf decorates book with its derived fields.
func ListingOf(book *Book) Listing {
	return Listing{Book: book, Borrowable: book.Borrowable(), ActionLabel: book.ActionLabel()}
}

// # Filtering

// Filter narrows the public list.
type Filter struct {
	Search   string
	Category string
}

// MatchesCategory reports whether book belongs to category. Empty and
// [AllCategories] match everything.
func MatchesCategory(book *Book, category string) bool {
	category = strings.TrimSpace(category)
	if category == "" || category == AllCategories {
		return true
	}
	return slug.Equal(book.Category, category)
}

// # Admin Input

// BookInput is the validated payload of the admin book editor.
type BookInput struct {
	Title          string `json:"title"`
	Author         string `json:"author"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	PublishedYear  int    `json:"publishedYear"`
	NumberOfCopies int    `json:"numberOfCopies"`
}

// NewBookInput returns the editor defaults for a new book in year now.
func NewBookInput(now time.Time) BookInput {
	return BookInput{
		Category:       DefaultCategory,
		PublishedYear:  now.Year(),
		NumberOfCopies: 1,
	}
}

// Normalize trims the free-text fields.
func (input *BookInput) Normalize() {
	input.Title = strings.TrimSpace(input.Title)
	input.Author = strings.TrimSpace(input.Author)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)
}

// Validate checks the input against the editor rules for year now.
func (input BookInput) Validate(now time.Time) error {
	v := &validate.Validator{}
	v.Required("title", input.Title).
		Required("author", input.Author).
		Required("category", input.Category).
		Custom("publishedYear",
			input.PublishedYear < 1000 || input.PublishedYear > now.Year()+1,
			"Please enter a valid publication year").
		Custom("numberOfCopies", input.NumberOfCopies < 0, "Number of copies cannot be negative")
	return v.Err()
}
