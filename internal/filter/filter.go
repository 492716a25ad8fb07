// Package filter narrows and orders lists of extracted events.
//
// A Filter combines independent criteria; an event must satisfy every active
// one:
//   - Query: case-insensitive substring of title, description, a tag, a
//     category or the organizer name
//   - From/To: inclusive bounds on the start time
//   - LocationType: physical, virtual or hybrid
//   - City: case-insensitive equality with the location city
//   - Category: case-insensitive equality with one of the categories
//   - FreeOnly: only free events
//   - Platform: the parser that produced the event
//
// Example usage:
//
//	f := filter.Filter{Query: "golang", FreeOnly: true, Sort: filter.SortDateAsc}
//	upcoming := f.Apply(events)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

// Filter holds list criteria. The zero value matches every event and sorts
// by ascending start time.
type Filter struct {
	Query        string             `json:"query,omitempty"`
	From         *time.Time         `json:"from,omitempty"`
	To           *time.Time         `json:"to,omitempty"`
	LocationType event.LocationType `json:"locationType,omitempty"`
	City         string             `json:"city,omitempty"`
	Category     string             `json:"category,omitempty"`
	FreeOnly     bool               `json:"freeOnly,omitempty"`
	Platform     event.Platform     `json:"platform,omitempty"`
	Sort         SortOrder          `json:"sort,omitempty"`
}

// Active reports whether any criterion is set. The sort order is not a
// criterion.
func (f *Filter) Active() bool {
	return f.Query != "" ||
		f.From != nil ||
		f.To != nil ||
		f.LocationType != "" ||
		f.City != "" ||
		f.Category != "" ||
		f.FreeOnly ||
		f.Platform != ""
}

// Matches reports whether evt satisfies every active criterion
func (f *Filter) Matches(evt *event.Event) bool {
	if f.Query != "" && !matchesQuery(evt, strings.ToLower(f.Query)) {
		return false
	}

	start := evt.Dates.Start
	if f.From != nil && start.Before(*f.From) {
		return false
	}
	if f.To != nil && start.After(*f.To) {
		return false
	}

	if f.LocationType != "" && evt.Location.Type != f.LocationType {
		return false
	}

	if f.City != "" && !strings.EqualFold(evt.Location.City, f.City) {
		return false
	}

	if f.Category != "" && !containsFold(evt.Categories, f.Category) {
		return false
	}

	if f.FreeOnly && (evt.Price == nil || !evt.Price.IsFree) {
		return false
	}

	if f.Platform != "" && evt.Platform != f.Platform {
		return false
	}

	return true
}

func matchesQuery(evt *event.Event, q string) bool {
	if strings.Contains(strings.ToLower(evt.Title), q) ||
		strings.Contains(strings.ToLower(evt.Description), q) ||
		strings.Contains(strings.ToLower(evt.Organizer.Name), q) {
		return true
	}
	for _, values := range [][]string{evt.Tags, evt.Categories} {
		for _, v := range values {
			if strings.Contains(strings.ToLower(v), q) {
				return true
			}
		}
	}
	return false
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

// Apply returns the matching events in the filter's sort order. The input
// slice is not modified.
func (f *Filter) Apply(events []*event.Event) []*event.Event {
	out := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			out = append(out, evt)
		}
	}
	Sort(out, f.Sort)
	return out
}

// String returns a human-readable description of the active criteria.
// Format: "Search: go | From: Jan 2, 2026 | Free only"
func (f *Filter) String() string {
	if !f.Active() {
		return "No active filters"
	}

	var parts []string
	if f.Query != "" {
		parts = append(parts, fmt.Sprintf("Search: %s", f.Query))
	}
	if f.From != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.From.Format("Jan 2, 2006")))
	}
	if f.To != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.To.Format("Jan 2, 2006")))
	}
	if f.LocationType != "" {
		parts = append(parts, fmt.Sprintf("Type: %s", f.LocationType))
	}
	if f.City != "" {
		parts = append(parts, fmt.Sprintf("City: %s", f.City))
	}
	if f.Category != "" {
		parts = append(parts, fmt.Sprintf("Category: %s", f.Category))
	}
	if f.FreeOnly {
		parts = append(parts, "Free only")
	}
	if f.Platform != "" {
		parts = append(parts, fmt.Sprintf("Platform: %s", f.Platform))
	}
	return strings.Join(parts, " | ")
}

// Cities returns the distinct non-empty cities of events, sorted
func Cities(events []*event.Event) []string {
	var values []string
	for _, evt := range events {
		values = append(values, evt.Location.City)
	}
	return distinct(values)
}

// Categories returns the distinct categories of events, sorted
func Categories(events []*event.Event) []string {
	var values []string
	for _, evt := range events {
		values = append(values, evt.Categories...)
	}
	return distinct(values)
}
