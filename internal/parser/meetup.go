package parser

import (
	"net/url"
	"strings"

	"github.com/pfrederiksen/event-ingest/internal/event"
	"github.com/pfrederiksen/event-ingest/internal/extract"
	"github.com/pfrederiksen/event-ingest/internal/markup"
	"github.com/pfrederiksen/event-ingest/internal/structured"
)

var meetupSelectors = extract.Selectors{
	Title:       []string{"h1[data-event-title]", "h1.text--sectionTitle", "h1", `[data-testid="event-title"]`},
	Description: []string{"[data-event-description]", ".event-description", `[data-testid="event-description"]`, ".description"},
	Start:       []string{"time[datetime]", "[data-event-start-time]", `[data-testid="event-time-start"]`},
	End:         []string{"[data-event-end-time]", `[data-testid="event-time-end"]`},
	Venue:       []string{"[data-event-venue]", ".venueDisplay", `[data-testid="event-venue"]`},
	Organizer:   []string{"[data-group-name]", ".groupLink", `[data-testid="group-name"]`},
	Price:       []string{"[data-event-fee]", ".eventPrice", `[data-testid="event-price"]`},
	Image:       []string{"[data-event-image]", ".event-photo img", `[data-testid="event-image"]`, `meta[property="og:image"]`},
	Tags:        []string{"[data-event-tag]", ".event-tag", `[data-testid="event-tag"]`},
}

// Meetup parses meetup.com event pages
type Meetup struct {
	site
}

// NewMeetup creates a new Meetup parser
func NewMeetup(opts ...Option) *Meetup {
	x := extract.Extractor{
		Selectors: meetupSelectors,
		Defaults: extract.Defaults{
			Title:        "Meetup Event",
			Organizer:    func(*url.URL) string { return "Meetup Organizer" },
			OrganizerURL: meetupGroupURL,
		},
	}
	p := &Meetup{site: newSite(event.PlatformMeetup, structured.Strict, x, opts)}
	p.interstitial = meetupLoginWall
	return p
}

// CanParse accepts any URL on a meetup.com host
func (p *Meetup) CanParse(rawURL string) bool {
	_, ok := hostHas(rawURL, "meetup.com")
	return ok
}

// meetupGroupURL is the group page the event belongs to: everything before
// the /events/ path segment
func meetupGroupURL(u *url.URL) string {
	s := u.Scheme + "://" + u.Host + u.Path
	if i := strings.Index(s, "/events/"); i >= 0 {
		return s[:i]
	}
	return ""
}

// meetupLoginWall recognizes the sign-in page served for private groups
func meetupLoginWall(doc *markup.Document) bool {
	if doc.Attr(`form[action*="/login"]`, "action") == "" {
		return false
	}
	return doc.Text("h1") == "" && len(doc.Scripts(structured.ScriptType)) == 0
}
