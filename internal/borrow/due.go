// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package borrow

import (
	"time"

	"github.com/taibuivan/libro/pkg/slice"
)

// DueStatus classifies a borrow against its due date.
type DueStatus string

const (
	Overdue DueStatus = "Overdue"
	DueSoon DueStatus = "DueSoon"
	OnTime  DueStatus = "OnTime"
)

// DaysUntilDue rounds the time left up to whole days; negative when overdue.
func DaysUntilDue(due, now time.Time) int {
	return ceilDays(due.Sub(now))
}

// ClassifyDue derives the due status at now. It is never stored.
func ClassifyDue(due, now time.Time) DueStatus {
	switch days := DaysUntilDue(due, now); {
	case days < 0:
		return Overdue
	case days <= DueSoonDays:
		return DueSoon
	default:
		return OnTime
	}
}

// Entry is a record decorated with its due status at query time.
type Entry struct {
	*Record
	DueStatus    DueStatus `json:"dueStatus"`
	DaysUntilDue int       `json:"daysUntilDue"`
}

// Entries decorates records for now.
func Entries(records []*Record, now time.Time) []Entry {
	return slice.Map(records, func(record *Record) Entry {
		return Entry{
			Record:       record,
			DueStatus:    ClassifyDue(record.DueDate.Time, now),
			DaysUntilDue: DaysUntilDue(record.DueDate.Time, now),
		}
	})
}

// Summary counts the admin borrow overview.
type Summary struct {
	Total   int `json:"total"`
	Overdue int `json:"overdue"`
	DueSoon int `json:"dueSoon"`
	Recent  int `json:"recent"`
}

// Summarize counts records by due status and recency at now.
func Summarize(records []*Record, now time.Time) Summary {
	summary := Summary{Total: len(records)}

	for _, record := range records {
		switch ClassifyDue(record.DueDate.Time, now) {
		case Overdue:
			summary.Overdue++
		case DueSoon:
			summary.DueSoon++
		}

		if ceilDays(now.Sub(record.openedAt())) <= RecentDays {
			summary.Recent++
		}
	}

	return summary
}
