package extract

import (
	"github.com/pfrederiksen/event-ingest/internal/event"
	"github.com/pfrederiksen/event-ingest/internal/markup"
	"github.com/pfrederiksen/event-ingest/internal/structured"
)

// OnlineIndicators mark venue text as describing a virtual event
var OnlineIndicators = []string{"online", "virtual", "zoom", "webinar"}

// Location extracts and classifies where the event takes place
func (x *Extractor) Location(src Source) event.Location {
	loc, _ := first(
		func() (event.Location, bool) {
			if src.Data == nil {
				return event.Location{}, false
			}
			return structuredLocation(src.Data)
		},
		func() (event.Location, bool) {
			venue, ok := selectorText(src, x.Selectors.Venue, nil)()
			if !ok {
				return event.Location{}, false
			}
			if containsFold(venue, OnlineIndicators) {
				return event.Location{Type: event.LocationVirtual}, true
			}
			return event.Location{Type: event.LocationPhysical, Venue: venue}, true
		},
		constant(event.Location{Type: event.LocationPhysical}),
	)
	return loc
}

func structuredLocation(d *structured.Data) (event.Location, bool) {
	var physical, virtual *structured.Place
	places := d.Places()
	for i := range places {
		p := &places[i]
		if p.Virtual() {
			if virtual == nil {
				virtual = p
			}
		} else if physical == nil {
			physical = p
		}
	}

	online := d.AttendanceMode == "OnlineEventAttendanceMode"
	mixed := d.AttendanceMode == "MixedEventAttendanceMode"

	switch {
	case online || (virtual != nil && physical == nil):
		loc := event.Location{Type: event.LocationVirtual}
		if virtual != nil {
			loc.URL = virtual.URL
		} else if physical != nil {
			loc.URL = physical.URL
		}
		return loc, true
	case physical != nil:
		loc := physicalLocation(physical)
		if virtual != nil || mixed {
			loc.Type = event.LocationHybrid
			if virtual != nil {
				loc.URL = virtual.URL
			}
		}
		return loc, true
	}
	return event.Location{}, false
}

func physicalLocation(p *structured.Place) event.Location {
	return event.Location{
		Type:    event.LocationPhysical,
		Venue:   markup.Clean(p.Name),
		Address: markup.Clean(p.Address),
		City:    markup.Clean(p.City),
		State:   markup.Clean(p.Region),
		Country: markup.Clean(p.Country),
	}
}
