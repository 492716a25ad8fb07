package structured

import (
	"reflect"
	"testing"

	"github.com/pfrederiksen/event-ingest/internal/markup"
)

func page(t *testing.T, scripts ...string) *markup.Document {
	t.Helper()
	html := "<html><head>"
	for _, s := range scripts {
		html += `<script type="application/ld+json">` + s + `</script>`
	}
	html += "</head><body></body></html>"
	doc, err := markup.Parse([]byte(html))
	if err != nil {
		t.Fatalf("markup.Parse() error = %v", err)
	}
	return doc
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		scripts  []string
		mode     Mode
		wantName string // "" means nil result
	}{
		{
			name:     "event object",
			scripts:  []string{`{"@context":"https://schema.org","@type":"Event","name":"Go Night"}`},
			wantName: "Go Night",
		},
		{
			name:     "social event object",
			scripts:  []string{`{"@type":"SocialEvent","name":"Party"}`},
			wantName: "Party",
		},
		{
			name:     "event subtype",
			scripts:  []string{`{"@type":"MusicEvent","name":"Gig"}`},
			wantName: "Gig",
		},
		{
			name:     "type array",
			scripts:  []string{`{"@type":["Thing","Event"],"name":"Multi"}`},
			wantName: "Multi",
		},
		{
			name:     "malformed block skipped",
			scripts:  []string{`{"@type":"Event",`, `{"@type":"Event","name":"Second"}`},
			wantName: "Second",
		},
		{
			name:    "non-event blocks only",
			scripts: []string{`{"@type":"Organization","name":"ACME"}`, `{"@type":"BreadcrumbList"}`},
		},
		{
			name:     "first qualifying block wins",
			scripts:  []string{`{"@type":"Organization"}`, `{"@type":"Event","name":"A"}`, `{"@type":"Event","name":"B"}`},
			wantName: "A",
		},
		{
			name:    "array ignored in strict mode",
			scripts: []string{`[{"@type":"Event","name":"In Array"}]`},
			mode:    Strict,
		},
		{
			name:     "array accepted in lenient mode",
			scripts:  []string{`[{"@type":"WebPage"},{"@type":"Event","name":"In Array"}]`},
			mode:     Lenient,
			wantName: "In Array",
		},
		{
			name:     "graph accepted in lenient mode",
			scripts:  []string{`{"@context":"https://schema.org","@graph":[{"@type":"WebSite"},{"@type":"Event","name":"Graph"}]}`},
			mode:     Lenient,
			wantName: "Graph",
		},
		{
			name:    "empty block",
			scripts: []string{`   `},
			mode:    Lenient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(page(t, tt.scripts...), tt.mode)
			if tt.wantName == "" {
				if got != nil {
					t.Errorf("Extract() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Extract() = nil, want data")
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
		})
	}
}

func TestExtract_Fields(t *testing.T) {
	doc := page(t, `{
		"@type": "Event",
		"name": "Go Night",
		"description": "Talks",
		"startDate": "2026-03-14T18:30:00-05:00",
		"endDate": "2026-03-14T21:00:00-05:00",
		"eventAttendanceMode": "https://schema.org/MixedEventAttendanceMode",
		"isAccessibleForFree": true,
		"location": [
			{"@type": "Place", "name": "Capital Factory", "address": {
				"@type": "PostalAddress", "streetAddress": "701 Brazos St",
				"addressLocality": "Austin", "addressRegion": "TX",
				"addressCountry": {"@type": "Country", "name": "US"}}},
			{"@type": "VirtualLocation", "url": "https://zoom.us/j/1"}
		],
		"organizer": [{"@type": "Organization", "name": "Austin Gophers", "url": "https://gophers.example", "email": "mailto:hi@gophers.example"}],
		"offers": [{"price": "25.00", "priceCurrency": "EUR"}, {"price": "40"}],
		"image": [{"@type": "ImageObject", "url": "https://example.com/a.png"}],
		"keywords": ["go", "meetup"]
	}`)

	d := Extract(doc, Strict)
	if d == nil {
		t.Fatal("Extract() = nil")
	}

	if d.Type != "Event" || d.StartDate != "2026-03-14T18:30:00-05:00" || d.AttendanceMode != "MixedEventAttendanceMode" || !d.FreeEntry {
		t.Errorf("unexpected scalar fields: %+v", d)
	}

	wantPlaces := []Place{
		{Type: "Place", Name: "Capital Factory", Address: "701 Brazos St", City: "Austin", Region: "TX", Country: "US"},
		{Type: "VirtualLocation", URL: "https://zoom.us/j/1"},
	}
	if got := d.Places(); !reflect.DeepEqual(got, wantPlaces) {
		t.Errorf("Places() = %+v, want %+v", got, wantPlaces)
	}

	wantOrgs := []Org{{Name: "Austin Gophers", URL: "https://gophers.example", Email: "hi@gophers.example"}}
	if got := d.Organizers(); !reflect.DeepEqual(got, wantOrgs) {
		t.Errorf("Organizers() = %+v, want %+v", got, wantOrgs)
	}

	offer, ok := d.FirstOffer()
	if !ok || !offer.HasPrice || offer.Price != 25 || offer.Currency != "EUR" {
		t.Errorf("FirstOffer() = %+v, %v", offer, ok)
	}

	if got := d.ImageURL(); got != "https://example.com/a.png" {
		t.Errorf("ImageURL() = %q", got)
	}
	if got := d.KeywordList(); !reflect.DeepEqual(got, []string{"go", "meetup"}) {
		t.Errorf("KeywordList() = %v", got)
	}
}

func TestData_Values(t *testing.T) {
	d := &Data{
		Location:  "The Pub",
		Organizer: "Jane",
		Offers:    map[string]interface{}{"price": float64(0)},
		Image:     "https://example.com/b.jpg",
		Keywords:  "a, b",
	}

	if got := d.Places(); !reflect.DeepEqual(got, []Place{{Name: "The Pub"}}) {
		t.Errorf("Places() = %+v", got)
	}
	if got := d.Organizers(); !reflect.DeepEqual(got, []Org{{Name: "Jane"}}) {
		t.Errorf("Organizers() = %+v", got)
	}
	if offer, ok := d.FirstOffer(); !ok || !offer.HasPrice || offer.Price != 0 {
		t.Errorf("FirstOffer() = %+v, %v", offer, ok)
	}
	if got := d.ImageURL(); got != "https://example.com/b.jpg" {
		t.Errorf("ImageURL() = %q", got)
	}
	if got := d.KeywordList(); !reflect.DeepEqual(got, []string{"a", " b"}) {
		t.Errorf("KeywordList() = %q", got)
	}

	empty := &Data{}
	if empty.Places() != nil || empty.Organizers() != nil || empty.ImageURL() != "" || empty.KeywordList() != nil {
		t.Error("empty data should yield empty values")
	}
	if _, ok := empty.FirstOffer(); ok {
		t.Error("FirstOffer() on empty data should report false")
	}
}

func TestIsEventType(t *testing.T) {
	tests := []struct {
		in   interface{}
		want bool
	}{
		{"Event", true},
		{"SocialEvent", true},
		{"http://schema.org/Event", true},
		{"BusinessEvent", true},
		{"Organization", false},
		{"Eventual", false},
		{[]interface{}{"Thing", "SocialEvent"}, true},
		{nil, false},
		{42.0, false},
	}
	for _, tt := range tests {
		if got := IsEventType(tt.in); got != tt.want {
			t.Errorf("IsEventType(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
