package notifier

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

func testEvent() *event.Event {
	return &event.Event{
		ID:        "meetup-1",
		Title:     "Gophers & Pizza",
		Dates:     event.Dates{Start: time.Date(2026, 4, 10, 23, 30, 0, 0, time.UTC)},
		Location:  event.Location{Type: event.LocationPhysical, Venue: "Capital Factory", City: "Austin"},
		Price:     event.Paid(5, "USD"),
		Tags:      []string{"Go", "open source", "pizza", "extra"},
		SourceURL: "https://www.meetup.com/austin-gophers/events/1/",
	}
}

func TestFormatAnnouncement(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(e *event.Event)
		contains []string
		excludes []string
	}{
		{
			name: "complete event",
			contains: []string{
				"📅 Gophers & Pizza",
				"Fri Apr 10, 2026 11:30 PM UTC",
				"📍 Capital Factory, Austin",
				"🎟 5.00 USD",
				"https://www.meetup.com/austin-gophers/events/1/",
				"#Go #opensource #pizza",
			},
			excludes: []string{"#extra"},
		},
		{
			name:     "free virtual event",
			mutate:   func(e *event.Event) { e.Price = event.Free(); e.Location = event.Location{Type: event.LocationVirtual} },
			contains: []string{"📍 Online", "🎟 Free"},
		},
		{
			name:     "hybrid event",
			mutate:   func(e *event.Event) { e.Location.Type = event.LocationHybrid },
			contains: []string{"📍 Capital Factory, Austin + online"},
		},
		{
			name:     "no tags",
			mutate:   func(e *event.Event) { e.Tags = nil },
			excludes: []string{"#"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := testEvent()
			if tt.mutate != nil {
				tt.mutate(evt)
			}
			msg := FormatAnnouncement(evt)
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("announcement missing %q:\n%s", want, msg)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(msg, unwanted) {
					t.Errorf("announcement contains %q:\n%s", unwanted, msg)
				}
			}
		})
	}
}

func TestFormatAnnouncement_Truncates(t *testing.T) {
	evt := testEvent()
	evt.Title = strings.Repeat("Très long titre ", 40)

	msg := FormatAnnouncement(evt)
	if n := utf8.RuneCountInString(msg); n != MaxLength {
		t.Errorf("length = %d, want %d", n, MaxLength)
	}
	if !strings.HasSuffix(msg, "...") || !utf8.ValidString(msg) {
		t.Errorf("bad truncation: %q", msg[len(msg)-10:])
	}
}

func TestPriceText(t *testing.T) {
	if got := PriceText(nil); got != "Free" {
		t.Errorf("PriceText(nil) = %q", got)
	}
	if got := PriceText(event.Paid(12.5, "EUR")); got != "12.50 EUR" {
		t.Errorf("PriceText() = %q", got)
	}
}

func TestDryRunNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewDryRunNotifier(&buf)

	if err := n.Notify([]*event.Event{testEvent(), testEvent()}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"--- Announcement 1/2 ---", "--- Announcement 2/2 ---", "(Length: "} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestNewTwitterNotifier_MissingCredentials(t *testing.T) {
	if _, err := NewTwitterNotifier(TwitterCredentials{APIKey: "k"}); err == nil {
		t.Error("NewTwitterNotifier() error = nil, want error")
	}
	n, err := NewTwitterNotifier(TwitterCredentials{APIKey: "k", APISecret: "s", AccessToken: "t", AccessSecret: "x"})
	if err != nil || n == nil {
		t.Errorf("NewTwitterNotifier() = %v, %v", n, err)
	}
}

// redirect sends every request to the test server
type redirect struct {
	target *url.URL
}

func (r redirect) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = r.target.Scheme
	req.URL.Host = r.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func TestTwitterNotifier_Notify(t *testing.T) {
	var (
		mu       sync.Mutex
		statuses []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1.1/statuses/update.json" {
			http.NotFound(w, r)
			return
		}
		r.ParseForm()
		mu.Lock()
		statuses = append(statuses, r.PostForm.Get("status"))
		n := len(statuses)
		mu.Unlock()

		if n == 3 {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"errors":[{"code":187,"message":"Status is a duplicate."}]}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id_str":"100"}`))
	}))
	defer srv.Close()

	target, _ := url.Parse(srv.URL)
	n := newTwitterNotifier(&http.Client{Transport: redirect{target}}, 0)

	if err := n.Notify([]*event.Event{testEvent(), testEvent()}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(statuses) != 2 || !strings.Contains(statuses[0], "Gophers & Pizza") {
		t.Errorf("posted statuses = %q", statuses)
	}

	if err := n.Notify([]*event.Event{testEvent(), testEvent()}); err == nil {
		t.Error("Notify() error = nil, want error from rejected post")
	}
	if len(statuses) != 3 {
		t.Errorf("Notify() kept posting after a failure: %d posts", len(statuses))
	}
}
