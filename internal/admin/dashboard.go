// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import "fmt"

// Stats are the dashboard counters.
type Stats struct {
	TotalUsers     int `json:"totalUsers"`
	TotalBooks     int `json:"totalBooks"`
	ActiveBorrows  int `json:"activeBorrows"`
	PendingReturns int `json:"pendingReturns"`
}

// ActivityType is what happened.
type ActivityType string

const (
	ActivityBorrow   ActivityType = "borrow"
	ActivityReturn   ActivityType = "return"
	ActivityRegister ActivityType = "register"
	ActivityAddBook  ActivityType = "add_book"
)

// ActivityStatus is how it ended.
type ActivityStatus string

const (
	StatusCompleted ActivityStatus = "completed"
	StatusPending   ActivityStatus = "pending"
	StatusFailed    ActivityStatus = "failed"
)

// Activity is one entry of the recent-activity feed. Time is preformatted
// by the backend ("2 hours ago").
type Activity struct {
	ID     int64          `json:"id"`
	Type   ActivityType   `json:"type"`
	User   string         `json:"user"`
	Book   *string        `json:"book"`
	Time   string         `json:"time"`
	Status ActivityStatus `json:"status"`
}

// Text is the one-line description shown in the feed.
func (activity Activity) Text() string {
	book := ""
	if activity.Book != nil {
		book = *activity.Book
	}

	switch activity.Type {
	case ActivityBorrow:
		return fmt.Sprintf("%s borrowed %q", activity.User, book)
	case ActivityReturn:
		return fmt.Sprintf("%s returned %q", activity.User, book)
	case ActivityRegister:
		return activity.User + " registered"
	case ActivityAddBook:
		return fmt.Sprintf("Added book %q", book)
	default:
		return "Unknown activity"
	}
}

// MarshalJSON adds the rendered text to the wire form.
func (activity Activity) MarshalJSON() ([]byte, error) {
	type plain Activity
	return json.Marshal(struct {
		plain
		Text string `json:"text"`
	}{plain(activity), activity.Text()})
}

// Dashboard is everything the admin landing page shows.
type Dashboard struct {
	Stats    Stats      `json:"stats"`
	Activity []Activity `json:"recentActivity"`
}
