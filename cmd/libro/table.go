// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// table aligns command output in columns.
type table struct {
	writer *tabwriter.Writer
}

func newTable(out io.Writer) *table {
	return &table{writer: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
}

func (t *table) row(cells ...any) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = fmt.Sprint(cell)
	}
	fmt.Fprintln(t.writer, strings.Join(parts, "\t"))
}

func (t *table) flush() error {
	return t.writer.Flush()
}
