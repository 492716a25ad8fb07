package event

import (
	"strings"
	"time"
)

// dateLayouts are tried in order by ParseDate
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"Mon, Jan 2, 2006 3:04 PM",
	"Monday, January 2, 2006 3:04 PM",
	"January 2, 2006 3:04 PM",
	"January 2, 2006",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"Jan 2 2006",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate attempts to parse a date-like string into an absolute time.
// Values without a zone are interpreted as UTC. Returns false if no layout
// matches; it never fails in any other way.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

// ParseDateOr parses s, returning fallback when s cannot be parsed
func ParseDateOr(s string, fallback time.Time) time.Time {
	if t, ok := ParseDate(s); ok {
		return t
	}
	return fallback.UTC()
}

// IsUpcoming checks if an event starts in the future
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.Dates.Start.After(now)
}

// IsPast checks if an event has ended. Events without an end time are
// considered over once they have started.
func (e *Event) IsPast(now time.Time) bool {
	if e.Dates.End != nil {
		return e.Dates.End.Before(now)
	}
	return e.Dates.Start.Before(now)
}
