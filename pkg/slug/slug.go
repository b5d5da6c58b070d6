// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII slugs from arbitrary Unicode strings.
//
// # Usage
//
// Book categories arrive from the backend in whatever form an administrator
// typed them ("Science Fiction", "science-fiction", "Sciènce fiction"). Two
// categories are the same when their slugs are equal.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// multiHyphen collapses multiple consecutive hyphens into one.
var multiHyphen = regexp.MustCompile(`-{2,}`)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD and drops combining marks (é → e).
// 2. Converts to lowercase.
// 3. Replaces everything but ASCII letters and digits with hyphens.
// 4. Collapses multiple hyphens and trims leading/trailing hyphens.
func From(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	result = strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, result)

	result = multiHyphen.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Equal reports whether a and b produce the same slug.
func Equal(a, b string) bool {
	return From(a) == From(b)
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
