// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer provides generic helpers for optional fields.

Partial updates (admin user edits) use pointer fields to tell "not sent"
apart from "sent empty"; these helpers keep that code short.
*/
package pointer

// To returns a pointer to the provided value.
func To[T any](v T) *T {
	return &v
}

// Blank reports whether p is nil or points at the zero value.
func Blank[T comparable](p *T) bool {
	var zero T
	return p == nil || *p == zero
}
