package validate

import (
	"reflect"
	"testing"
	"time"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

func validEvent() *event.Event {
	evt := event.NewDraft(event.PlatformMeetup, "https://www.meetup.com/go/events/1/", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	evt.Title = "Go Night"
	evt.Description = "Talks and pizza"
	evt.Dates = event.Dates{Start: time.Date(2025, 2, 1, 18, 0, 0, 0, time.UTC), Timezone: "UTC"}
	evt.Location = event.Location{Type: event.LocationPhysical, Venue: "Hall"}
	evt.Organizer = event.Organizer{Name: "Go Club"}
	evt.Price = event.Free()
	return evt
}

func TestEvent(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *event.Event)
		want   []string
	}{
		{name: "complete", mutate: func(e *event.Event) {}},
		{name: "paid", mutate: func(e *event.Event) { e.Price = event.Paid(10, "EUR") }},
		{name: "missing title", mutate: func(e *event.Event) { e.Title = "" }, want: []string{"title"}},
		{name: "blank title", mutate: func(e *event.Event) { e.Title = "   " }, want: []string{"title"}},
		{name: "missing description", mutate: func(e *event.Event) { e.Description = "" }, want: []string{"description"}},
		{name: "missing start", mutate: func(e *event.Event) { e.Dates.Start = time.Time{} }, want: []string{"dates.start"}},
		{name: "missing organizer", mutate: func(e *event.Event) { e.Organizer.Name = "" }, want: []string{"organizer.name"}},
		{name: "missing price", mutate: func(e *event.Event) { e.Price = nil }, want: []string{"price"}},
		{name: "bad location type", mutate: func(e *event.Event) { e.Location.Type = "teleport" }, want: []string{"location.type"}},
		{name: "bad platform", mutate: func(e *event.Event) { e.Platform = "myspace" }, want: []string{"platform"}},
		{name: "missing source url", mutate: func(e *event.Event) { e.SourceURL = "" }, want: []string{"sourceUrl"}},
		{
			name: "free with amount",
			mutate: func(e *event.Event) {
				amount := 5.0
				e.Price = &event.Price{IsFree: true, Amount: &amount}
			},
			want: []string{"price.amount"},
		},
		{
			name:   "paid without currency",
			mutate: func(e *event.Event) { e.Price = &event.Price{Amount: func() *float64 { f := 3.0; return &f }()} },
			want:   []string{"price.currency"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := validEvent()
			tt.mutate(evt)

			got := Errors(evt)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Errors() = %v, want %v", got, tt.want)
			}
			if Event(evt) != (len(tt.want) == 0) {
				t.Errorf("Event() = %v, want %v", Event(evt), len(tt.want) == 0)
			}
		})
	}
}

func TestEventNil(t *testing.T) {
	if Event(nil) {
		t.Error("Event(nil) = true, want false")
	}
}

func TestEventDoesNotMutate(t *testing.T) {
	evt := validEvent()
	before := evt.Clone()
	Event(evt)
	if !reflect.DeepEqual(evt, before) {
		t.Error("Event() modified its argument")
	}
}
