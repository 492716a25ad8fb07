package parser

import (
	"net/url"
	"strings"

	"github.com/pfrederiksen/event-ingest/internal/event"
	"github.com/pfrederiksen/event-ingest/internal/extract"
	"github.com/pfrederiksen/event-ingest/internal/markup"
	"github.com/pfrederiksen/event-ingest/internal/structured"
)

var facebookSelectors = extract.Selectors{
	Title:       []string{`meta[property="og:title"]`, `meta[name="twitter:title"]`, "h1", "title"},
	Description: []string{`meta[property="og:description"]`, `meta[name="twitter:description"]`, `meta[name="description"]`, `[data-testid="event-description"]`},
	Start:       []string{`meta[property="event:start_time"]`},
	End:         []string{`meta[property="event:end_time"]`},
	Image:       []string{`meta[property="og:image"]`, `meta[name="twitter:image"]`},
}

// Facebook parses facebook.com/events pages. Most of the page is rendered by
// script, so extraction relies on embedded metadata.
type Facebook struct {
	site
}

// NewFacebook creates a new Facebook parser
func NewFacebook(opts ...Option) *Facebook {
	x := extract.Extractor{
		Selectors: facebookSelectors,
		Defaults: extract.Defaults{
			Title:       "Facebook Event",
			RejectTitle: []string{"Facebook"},
			Organizer:   func(*url.URL) string { return "Facebook Event Organizer" },
		},
	}
	p := &Facebook{site: newSite(event.PlatformFacebook, structured.Strict, x, opts)}
	p.interstitial = facebookLoginWall
	return p
}

// CanParse accepts facebook.com URLs whose path contains /events/
func (p *Facebook) CanParse(rawURL string) bool {
	u, ok := hostHas(rawURL, "facebook.com")
	return ok && strings.Contains(u.Path, "/events/")
}

// facebookLoginWall recognizes the login page served to anonymous clients
func facebookLoginWall(doc *markup.Document) bool {
	if len(doc.All("#login_form")) > 0 {
		return doc.Attr(`meta[property="og:title"]`, "content") == ""
	}
	title := strings.ToLower(doc.Title())
	return strings.HasPrefix(title, "log in") || strings.HasPrefix(title, "log into")
}
