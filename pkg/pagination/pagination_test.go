// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/libro/pkg/pagination"
)

/*
TestFromRequest_Clamps checks fallback values for bad query input.
*/
func TestFromRequest_Clamps(t *testing.T) {
	tests := []struct {
		query string
		want  pagination.Params
	}{
		{"", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"?page=3&limit=10", pagination.Params{Page: 3, Limit: 10}},
		{"?page=-2&limit=1000", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"?page=abc", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, pagination.FromRequest(httptest.NewRequest("GET", "/books"+tt.query, nil)))
		})
	}
}

/*
TestSlice_Windows checks in-memory paging, including pages past the end.
*/
func TestSlice_Windows(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, meta := pagination.Slice(items, pagination.Params{Page: 2, Limit: 2})
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, pagination.Meta{Page: 2, Limit: 2, Total: 5, TotalPages: 3}, meta)

	last, _ := pagination.Slice(items, pagination.Params{Page: 3, Limit: 2})
	assert.Equal(t, []int{5}, last)

	beyond, _ := pagination.Slice(items, pagination.Params{Page: 9, Limit: 2})
	assert.NotNil(t, beyond)
	assert.Empty(t, beyond)
}
