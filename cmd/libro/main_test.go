// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/libro/internal/borrow"
	"github.com/taibuivan/libro/internal/platform/apperr"
)

/*
TestDescribe covers the terminal rendering of errors.
*/
func TestDescribe(t *testing.T) {
	today := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	invalid := borrow.ValidateDraft(borrow.Draft{BookID: 1}, today)
	require.NotNil(t, invalid)

	text := describe(invalid)
	assert.Contains(t, text, "incomplete")
	assert.Contains(t, text, "\n  - ")

	assert.Equal(t, "Book not found", describe(apperr.NotFound("Book")))
}

/*
TestParseID rejects anything but a positive integer.
*/
func TestParseID(t *testing.T) {
	id, err := parseID("42", "book")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-3", "abc"} {
		_, err := parseID(raw, "book")
		assert.True(t, apperr.HasCode(err, apperr.CodeValidation), raw)
	}
}

/*
TestQuoteCommand prints the priced period without a session.
*/
func TestQuoteCommand(t *testing.T) {
	var out bytes.Buffer
	command := (&app{}).quoteCommand()
	command.SetOut(&out)
	command.SetArgs([]string{"2024-03-01", "2024-03-06"})

	require.NoError(t, command.Execute())
	assert.Equal(t, "5 day(s) at $2.00 per day = $10.00\n", out.String())
}

/*
TestDueText covers the three due classes.
*/
func TestDueText(t *testing.T) {
	assert.Equal(t, "overdue by 2 day(s)", dueText(borrow.Entry{DueStatus: borrow.Overdue, DaysUntilDue: -2}))
	assert.Equal(t, "due in 1 day(s)", dueText(borrow.Entry{DueStatus: borrow.DueSoon, DaysUntilDue: 1}))
	assert.Equal(t, "on time", dueText(borrow.Entry{DueStatus: borrow.OnTime, DaysUntilDue: 9}))
}

/*
TestReadLine lets consecutive prompts share one piped input.
*/
func TestReadLine(t *testing.T) {
	in := strings.NewReader("secret1\r\nsecret2")

	first, err := readLine(in)
	require.NoError(t, err)
	second, err := readLine(in)
	require.NoError(t, err)

	assert.Equal(t, "secret1", first)
	assert.Equal(t, "secret2", second)

	_, err = readLine(in)
	assert.Error(t, err)
}
