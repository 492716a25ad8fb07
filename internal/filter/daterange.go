package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

const monthPattern = `(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|sept|september|oct|october|nov|november|dec|december)`

var (
	sameMonthRange  = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*(\d{1,2})$`)
	crossMonthRange = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*` + monthPattern + `\s+(\d{1,2})$`)
	wholeMonth      = regexp.MustCompile(`(?i)^` + monthPattern + `$`)

	months = map[string]time.Month{
		"jan": time.January, "january": time.January,
		"feb": time.February, "february": time.February,
		"mar": time.March, "march": time.March,
		"apr": time.April, "april": time.April,
		"may": time.May,
		"jun": time.June, "june": time.June,
		"jul": time.July, "july": time.July,
		"aug": time.August, "august": time.August,
		"sep": time.September, "sept": time.September, "september": time.September,
		"oct": time.October, "october": time.October,
		"nov": time.November, "november": time.November,
		"dec": time.December, "december": time.December,
	}
)

// ParseDateRange parses a date range relative to now.
//
// Supported formats:
//   - "Mar 1-15" or "March 1-15": days of one month
//   - "March 1 - April 15": across months
//   - "March": the entire month
//   - "2025-03-01..2025-03-15": explicit dates, either side may be omitted
//
// Months without a year are the next occurrence of that month, counting the
// current one. Ranges start at 00:00:00 and end at 23:59:59 UTC.
func ParseDateRange(input string, now time.Time) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	if from, to, ok := strings.Cut(input, ".."); ok {
		return explicitRange(from, to)
	}

	if m := sameMonthRange.FindStringSubmatch(input); m != nil {
		month := months[strings.ToLower(m[1])]
		year := yearFor(month, now)
		return dayRange(year, month, m[2], year, month, m[3])
	}

	if m := crossMonthRange.FindStringSubmatch(input); m != nil {
		m1, m2 := months[strings.ToLower(m[1])], months[strings.ToLower(m[3])]
		y1 := yearFor(m1, now)
		y2 := y1
		if m2 < m1 {
			y2++
		}
		return dayRange(y1, m1, m[2], y2, m2, m[4])
	}

	if m := wholeMonth.FindStringSubmatch(input); m != nil {
		month := months[strings.ToLower(m[1])]
		year := yearFor(month, now)
		from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year, month+1, 0, 23, 59, 59, 0, time.UTC)
		return &from, &to, nil
	}

	return nil, nil, fmt.Errorf("invalid date range format. Use 'Mar 1-15', 'March 1 - April 15', 'March' or '2025-03-01..2025-03-15'")
}

func explicitRange(fromText, toText string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if s := strings.TrimSpace(fromText); s != "" {
		t, ok := event.ParseDate(s)
		if !ok {
			return nil, nil, fmt.Errorf("invalid start date: %s", s)
		}
		from = &t
	}
	if s := strings.TrimSpace(toText); s != "" {
		t, ok := event.ParseDate(s)
		if !ok {
			return nil, nil, fmt.Errorf("invalid end date: %s", s)
		}
		t = endOfDay(t)
		to = &t
	}
	if from == nil && to == nil {
		return nil, nil, fmt.Errorf("date range needs a start or an end")
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, fmt.Errorf("start date must be before end date")
	}
	return from, to, nil
}

func dayRange(y1 int, m1 time.Month, d1 string, y2 int, m2 time.Month, d2 string) (*time.Time, *time.Time, error) {
	day1, err := parseDay(d1)
	if err != nil {
		return nil, nil, err
	}
	day2, err := parseDay(d2)
	if err != nil {
		return nil, nil, err
	}

	from := time.Date(y1, m1, day1, 0, 0, 0, 0, time.UTC)
	to := time.Date(y2, m2, day2, 23, 59, 59, 0, time.UTC)
	if from.After(to) {
		return nil, nil, fmt.Errorf("start date must be before end date")
	}
	return &from, &to, nil
}

func parseDay(s string) (int, error) {
	day, err := strconv.Atoi(s)
	if err != nil || day < 1 || day > 31 {
		return 0, fmt.Errorf("invalid day: %s", s)
	}
	return day, nil
}

// yearFor returns the year of the next occurrence of month
func yearFor(month time.Month, now time.Time) int {
	if month < now.Month() {
		return now.Year() + 1
	}
	return now.Year()
}

// endOfDay moves a date-only value to the last second of that day
func endOfDay(t time.Time) time.Time {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Add(24*time.Hour - time.Second)
	}
	return t
}
