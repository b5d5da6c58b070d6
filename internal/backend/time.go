// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"fmt"
	"time"
)

// timeLayouts are tried in order. The backend omits the offset on most
// timestamps; those are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time is a timestamp that tolerates the backend's formats.
type Time struct {
	time.Time
}

// ParseTime parses raw with the accepted layouts.
func ParseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("backend: unrecognised timestamp %q", raw)
}

// UnmarshalJSON accepts null, "" and any of the layouts above.
func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("backend: timestamp must be a string: %w", err)
	}
	if raw == "" {
		*t = Time{}
		return nil
	}

	parsed, err := ParseTime(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON writes RFC 3339 in UTC, or null for the zero time.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}
