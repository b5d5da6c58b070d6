// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package borrow implements the borrow workflow: pricing, draft validation,
submission, due-date classification and returns.

Dates are calendar dates in UTC ("2006-01-02"). Prices are exact decimals.
The backend stays authoritative for inventory and records; this package
only guards what is sent to it and derives what is shown from it.
*/
package borrow

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the wire format of borrow dates.
	DateLayout = "2006-01-02"

	// MaxBorrowDays is the longest borrow period.
	MaxBorrowDays = 30

	// MaxIDProofBytes is the largest accepted ID proof image.
	MaxIDProofBytes = 5 << 20

	// DueSoonDays is the window in which a borrow counts as due soon.
	DueSoonDays = 3

	// RecentDays is the window in which a borrow counts as recent.
	RecentDays = 7

	day = 24 * time.Hour
)

// DailyRate is the price of one borrow day.
var DailyRate = decimal.RequireFromString("2.00")

// ParseDate reads a "2006-01-02" date in UTC. An empty string is the zero time.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}

	parsed, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return parsed, nil
}

// Today returns the calendar date of now in UTC.
func Today(now time.Time) time.Time {
	year, month, date := now.UTC().Date()
	return time.Date(year, month, date, 0, 0, 0, 0, time.UTC)
}

// ceilDays rounds d up to whole days.
func ceilDays(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(day)))
}

// DurationDays is the number of started days between start and end, or 0
// when end precedes start.
func DurationDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return ceilDays(end.Sub(start))
}

// Price is the borrow fee for the period, never negative.
func Price(start, end time.Time) decimal.Decimal {
	days := decimal.NewFromInt(int64(DurationDays(start, end)))
	return decimal.Max(decimal.Zero, DailyRate.Mul(days)).Round(2)
}

// Quote is the price breakdown shown before submitting.
type Quote struct {
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	Days      int             `json:"days"`
	Rate      decimal.Decimal `json:"rate"`
	Total     decimal.Decimal `json:"total"`
}

// QuoteFor prices the period between start and end.
func QuoteFor(start, end time.Time) Quote {
	return Quote{
		StartDate: start.Format(DateLayout),
		EndDate:   end.Format(DateLayout),
		Days:      DurationDays(start, end),
		Rate:      DailyRate,
		Total:     Price(start, end),
	}
}

// String renders the quote the way the borrow dialog shows it.
func (quote Quote) String() string {
	return fmt.Sprintf("%d day(s) at $%s per day = $%s",
		quote.Days, quote.Rate.StringFixed(2), quote.Total.StringFixed(2))
}
