package models

import (
	"time"
)

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}

// UnixMilli converts a wire timestamp in milliseconds to a time.Time.
// Zero or negative values map to the zero time.
func UnixMilli(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// ToUnixMilli converts t into a wire timestamp. The zero time maps to 0.
func ToUnixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
