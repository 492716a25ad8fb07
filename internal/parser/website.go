package parser

import (
	"net/url"

	"github.com/pfrederiksen/event-ingest/internal/event"
	"github.com/pfrederiksen/event-ingest/internal/extract"
	"github.com/pfrederiksen/event-ingest/internal/structured"
)

var websiteSelectors = extract.Selectors{
	Title: []string{
		`meta[property="og:title"]`, `meta[name="twitter:title"]`,
		"h1.event-title", `h1[itemprop="name"]`, "h1", "title",
	},
	Description: []string{
		`meta[property="og:description"]`, `meta[name="twitter:description"]`, `meta[name="description"]`,
		`[itemprop="description"]`, ".event-description", ".description",
	},
	Start: []string{`time[itemprop="startDate"]`, `[itemprop="startDate"]`, "time[datetime]", ".event-date time"},
	End:   []string{`time[itemprop="endDate"]`, `[itemprop="endDate"]`},
	Venue: []string{`[itemprop="location"]`, ".event-location", ".location", "[data-location]"},
	Organizer: []string{
		`[itemprop="organizer"]`, ".event-organizer", ".organizer",
	},
	Price: []string{`[itemprop="price"]`, ".event-price", ".price", "[data-price]"},
	Image: []string{
		`meta[property="og:image"]`, `meta[name="twitter:image"]`, `[itemprop="image"]`, ".event-image img",
	},
	Tags: []string{
		`meta[property="article:tag"]`, `[itemprop="keywords"]`, ".event-tags .tag", ".tags .tag",
	},
}

// Website parses arbitrary event pages. It accepts every absolute URL and is
// the catch-all of the router.
type Website struct {
	site
}

// NewWebsite creates a new Website parser
func NewWebsite(opts ...Option) *Website {
	x := extract.Extractor{
		Selectors: websiteSelectors,
		Defaults: extract.Defaults{
			Title:          "Event",
			Organizer:      func(u *url.URL) string { return u.Hostname() },
			MinDescription: 20,
		},
	}
	return &Website{site: newSite(event.PlatformWebsite, structured.Lenient, x, opts)}
}

// CanParse accepts any absolute URL
func (p *Website) CanParse(rawURL string) bool {
	_, err := ParseURL(rawURL)
	return err == nil
}
