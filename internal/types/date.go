package types

import (
	"time"
)

// DateLayout is the calendar date format used for payment dates and export filenames
const DateLayout = "2006-01-02"

// FormatDate renders t as yyyy-mm-dd in UTC
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a yyyy-mm-dd string, returning ok=false on malformed input
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
