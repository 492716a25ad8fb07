package filter

import (
	"reflect"
	"testing"
	"time"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 18, 0, 0, 0, time.UTC)
}

func testEvents() []*event.Event {
	mk := func(id, title string, start time.Time, loc event.Location, price *event.Price, platform event.Platform, tags, cats []string) *event.Event {
		return &event.Event{
			ID:          id,
			Title:       title,
			Description: "About " + title,
			Dates:       event.Dates{Start: start},
			Location:    loc,
			Organizer:   event.Organizer{Name: "Org " + id},
			Price:       price,
			Tags:        tags,
			Categories:  cats,
			Platform:    platform,
		}
	}
	return []*event.Event{
		mk("a", "Go Workshop", day(3, 10), event.Location{Type: event.LocationPhysical, City: "Austin"}, event.Free(), event.PlatformMeetup, []string{"golang"}, []string{"Tech"}),
		mk("b", "jazz night", day(3, 1), event.Location{Type: event.LocationPhysical, City: "New York"}, event.Paid(30, "USD"), event.PlatformWebsite, nil, []string{"Music"}),
		mk("c", "Remote Standup", day(4, 2), event.Location{Type: event.LocationVirtual}, event.Free(), event.PlatformWebsite, []string{"remote"}, nil),
		mk("d", "Block Party", day(2, 20), event.Location{Type: event.LocationHybrid, City: "austin"}, event.Free(), event.PlatformFacebook, nil, []string{"Community", "Music"}),
	}
}

func ids(events []*event.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestFilter_Active(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"zero value", Filter{}, false},
		{"sort only", Filter{Sort: SortTitleDesc}, false},
		{"query", Filter{Query: "go"}, true},
		{"from", Filter{From: timePtr(day(1, 1))}, true},
		{"to", Filter{To: timePtr(day(1, 1))}, true},
		{"type", Filter{LocationType: event.LocationVirtual}, true},
		{"city", Filter{City: "Austin"}, true},
		{"category", Filter{Category: "Music"}, true},
		{"free", Filter{FreeOnly: true}, true},
		{"platform", Filter{Platform: event.PlatformMeetup}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Active(); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"everything by date", Filter{}, []string{"d", "b", "a", "c"}},
		{"query in title", Filter{Query: "WORKSHOP"}, []string{"a"}},
		{"query in tag", Filter{Query: "remote"}, []string{"c"}},
		{"query in category", Filter{Query: "music"}, []string{"d", "b"}},
		{"query in organizer", Filter{Query: "org b"}, []string{"b"}},
		{"query in description", Filter{Query: "about block"}, []string{"d"}},
		{"from inclusive", Filter{From: timePtr(day(3, 10))}, []string{"a", "c"}},
		{"to inclusive", Filter{To: timePtr(day(3, 1))}, []string{"d", "b"}},
		{"range", Filter{From: timePtr(day(3, 1)), To: timePtr(day(3, 31))}, []string{"b", "a"}},
		{"location type", Filter{LocationType: event.LocationVirtual}, []string{"c"}},
		{"city equality ignores case", Filter{City: "AUSTIN"}, []string{"d", "a"}},
		{"city is not substring", Filter{City: "York"}, []string{}},
		{"category", Filter{Category: "music"}, []string{"d", "b"}},
		{"free only", Filter{FreeOnly: true}, []string{"d", "a", "c"}},
		{"platform", Filter{Platform: event.PlatformWebsite}, []string{"b", "c"}},
		{"combined", Filter{FreeOnly: true, City: "austin", Sort: SortDateDesc}, []string{"a", "d"}},
		{"title asc", Filter{Sort: SortTitleAsc}, []string{"d", "a", "b", "c"}},
		{"title desc", Filter{Sort: SortTitleDesc}, []string{"c", "b", "a", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := testEvents()
			got := ids(tt.filter.Apply(events))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
			if ids(events)[0] != "a" {
				t.Error("Apply() reordered its input")
			}
		})
	}
}

func TestFilter_FreeOnlyWithoutPrice(t *testing.T) {
	f := Filter{FreeOnly: true}
	if f.Matches(&event.Event{}) {
		t.Error("event without price matched free-only filter")
	}
}

func TestFilter_String(t *testing.T) {
	if got := (&Filter{}).String(); got != "No active filters" {
		t.Errorf("String() = %q", got)
	}
	f := Filter{Query: "go", From: timePtr(day(1, 2)), FreeOnly: true}
	if got, want := f.String(), "Search: go | From: Jan 2, 2026 | Free only"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestFacets(t *testing.T) {
	events := testEvents()
	if got, want := Cities(events), []string{"Austin", "New York", "austin"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Cities() = %v, want %v", got, want)
	}
	if got, want := Categories(events), []string{"Community", "Music", "Tech"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
	if got := Cities(nil); got == nil || len(got) != 0 {
		t.Errorf("Cities(nil) = %#v, want empty slice", got)
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    SortOrder
		wantErr bool
	}{
		{"", SortDateAsc, false},
		{"date-desc", SortDateDesc, false},
		{"TITLE-ASC", SortTitleAsc, false},
		{"state", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSortOrder(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseSortOrder(%q) = %q, %v", tt.in, got, err)
		}
	}
}
