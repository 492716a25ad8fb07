package calendar

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

func testEvent() *event.Event {
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	return &event.Event{
		ID:          "meetup-1234",
		Title:       "Spring Hack Night; Go, Rust",
		Description: "Bring a laptop.\nPizza provided.",
		Dates:       event.Dates{Start: start, Timezone: "UTC"},
		Location:    event.Location{Type: event.LocationPhysical, Venue: "Capital Factory", City: "Austin", State: "TX"},
		Organizer:   event.Organizer{Name: "Austin Gophers", URL: "https://www.meetup.com/austin-gophers"},
		Price:       event.Free(),
		Categories:  []string{"Tech", "Social"},
		Platform:    event.PlatformMeetup,
		SourceURL:   "https://www.meetup.com/austin-gophers/events/1234/",
		CreatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
}

// unfold reverses line folding
func unfold(ics string) string {
	return strings.ReplaceAll(ics, "\r\n ", "")
}

func TestGenerateICS(t *testing.T) {
	ics := unfold(GenerateICS(testEvent()))

	requiredFields := []string{
		"BEGIN:VCALENDAR\r\n",
		"VERSION:2.0\r\n",
		"PRODID:-//event-ingest//event-ingest//EN\r\n",
		"BEGIN:VEVENT\r\n",
		"UID:meetup-1234@event-ingest\r\n",
		"DTSTAMP:20260302T000000Z\r\n",
		"DTSTART:20260315T180000Z\r\n",
		"DTEND:20260315T200000Z\r\n",
		"SUMMARY:Spring Hack Night\\; Go\\, Rust\r\n",
		"DESCRIPTION:Bring a laptop.\\nPizza provided.\\n\\nMore info: https://www.meetup.com/austin-gophers/events/1234/\r\n",
		"LOCATION:Capital Factory\\, Austin\\, TX\r\n",
		"ORGANIZER;CN=Austin Gophers:https://www.meetup.com/austin-gophers\r\n",
		"CATEGORIES:Tech,Social\r\n",
		"URL:https://www.meetup.com/austin-gophers/events/1234/\r\n",
		"END:VEVENT\r\n",
		"END:VCALENDAR\r\n",
	}
	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing %q", field)
		}
	}
}

func TestGenerateICS_EndTime(t *testing.T) {
	evt := testEvent()
	end := evt.Dates.Start.Add(90 * time.Minute)
	evt.Dates.End = &end

	if ics := GenerateICS(evt); !strings.Contains(ics, "DTEND:20260315T193000Z") {
		t.Errorf("DTEND should use the event end:\n%s", ics)
	}
}

func TestLocationText(t *testing.T) {
	tests := []struct {
		name string
		loc  event.Location
		want string
	}{
		{"physical", event.Location{Type: event.LocationPhysical, Venue: "Hall", Address: "1 Main St", Country: "US"}, "Hall, 1 Main St, US"},
		{"virtual with url", event.Location{Type: event.LocationVirtual, URL: "https://zoom.us/j/1"}, "https://zoom.us/j/1"},
		{"virtual without url", event.Location{Type: event.LocationVirtual}, "Online"},
		{"hybrid", event.Location{Type: event.LocationHybrid, Venue: "Hall", URL: "https://stream"}, "Hall, https://stream"},
		{"physical without details", event.Location{Type: event.LocationPhysical}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := locationText(tt.loc); got != tt.want {
				t.Errorf("locationText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateICS_NoLocationLine(t *testing.T) {
	evt := testEvent()
	evt.Location = event.Location{Type: event.LocationPhysical}
	if strings.Contains(GenerateICS(evt), "LOCATION:") {
		t.Error("empty location should be omitted")
	}
}

func TestGenerateICS_OrganizerEmail(t *testing.T) {
	evt := testEvent()
	evt.Organizer = event.Organizer{Name: "Go; Club", Email: "hi@go.club"}
	if ics := GenerateICS(evt); !strings.Contains(ics, `ORGANIZER;CN="Go; Club":mailto:hi@go.club`) {
		t.Errorf("unexpected organizer line:\n%s", ics)
	}
}

func TestFolding(t *testing.T) {
	evt := testEvent()
	evt.Description = strings.Repeat("Überlange Beschreibung ", 20)
	ics := GenerateICS(evt)

	for _, line := range strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n") {
		if len(line) > 75 {
			t.Errorf("line exceeds 75 octets (%d): %q", len(line), line)
		}
		if !utf8.ValidString(line) {
			t.Errorf("fold split a UTF-8 sequence: %q", line)
		}
	}
	if !strings.Contains(unfold(ics), "DESCRIPTION:"+strings.Repeat("Überlange Beschreibung ", 20)) {
		t.Error("unfolded description does not round trip")
	}
}

func TestGenerateCalendar(t *testing.T) {
	a, b := testEvent(), testEvent()
	b.ID = "website-5678"

	ics := GenerateCalendar([]*event.Event{a, b})
	if n := strings.Count(ics, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("VEVENT count = %d, want 2", n)
	}
	if strings.Count(ics, "BEGIN:VCALENDAR") != 1 {
		t.Error("expected a single VCALENDAR")
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{`back\slash`, `back\\slash`},
		{"a,b;c", `a\,b\;c`},
		{"line1\r\nline2\nline3", `line1\nline2\nline3`},
	}
	for _, tt := range tests {
		if got := escapeICS(tt.in); got != tt.want {
			t.Errorf("escapeICS(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
