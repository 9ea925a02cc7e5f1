package utils

import (
	"fmt"
	"strings"
	"time"
)

// ISODateFormat is the wire format for date-valued attributes
const ISODateFormat = "2006-01-02"

// NowRFC3339 returns the current time in RFC3339 format
func NowRFC3339() string {
	return time.Now().Format(time.RFC3339)
}

// ParseRFC3339 parses a time string in RFC3339 format
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// FormatISODate renders a time as an ISO-8601 calendar date
func FormatISODate(t time.Time) string {
	return t.Format(ISODateFormat)
}

// dateLayouts lists accepted user-facing date spellings, tried in order
var dateLayouts = []string{
	ISODateFormat,
	time.RFC3339,
	"02/01/2006",
	"02-01-2006",
	"2 Jan 2006",
	"Jan 2 2006",
}

// ParseDateAuto parses a date string in any of the accepted layouts,
// truncated to midnight UTC
func ParseDateAuto(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}
