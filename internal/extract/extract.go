// Package extract implements the per-field extraction strategies shared by
// all site parsers.
//
// Every field is resolved through the same chain: embedded structured data
// first, then an ordered list of CSS selectors, then a fixed default. Each
// tier is an attempt returning a value and whether it produced one; the first
// attempt that produces a value wins. Field extraction never fails.
package extract

import (
	"net/url"
	"strings"
	"time"

	"github.com/pfrederiksen/event-ingest/internal/event"
	"github.com/pfrederiksen/event-ingest/internal/markup"
	"github.com/pfrederiksen/event-ingest/internal/structured"
)

// Source is everything a field extractor may consult for one page
type Source struct {
	Doc  *markup.Document
	Data *structured.Data // nil when the page has no event metadata
	URL  *url.URL
	Now  time.Time
}

// Selectors are the ordered markup fallbacks for each field, most specific
// first
type Selectors struct {
	Title       []string
	Description []string
	Start       []string
	End         []string
	Venue       []string
	Organizer   []string
	Price       []string
	Image       []string
	Tags        []string
}

// Defaults are the last-resort values and site-specific tweaks
type Defaults struct {
	Title       string
	Description string

	// Organizer derives the fallback organizer name from the page URL
	Organizer func(u *url.URL) string
	// OrganizerURL derives the organizer URL when none is extracted
	OrganizerURL func(u *url.URL) string

	// MinDescription is the minimum length of description text read from
	// element content (meta tags are exempt)
	MinDescription int
	// RejectTitle lists substrings that disqualify a title read from element
	// content, such as site chrome
	RejectTitle []string
}

const DefaultDescription = "No description available"

// Extractor resolves every event field for one site
type Extractor struct {
	Selectors Selectors
	Defaults  Defaults
}

// attempt is one tier of a field's fallback chain
type attempt[T any] func() (T, bool)

// first returns the value of the first attempt that produces one
func first[T any](attempts ...attempt[T]) (T, bool) {
	for _, try := range attempts {
		if v, ok := try(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Apply fills the extracted fields of a draft event
func (x *Extractor) Apply(src Source, evt *event.Event) {
	evt.Title = x.Title(src)
	evt.Description = x.Description(src)
	evt.Dates = x.Dates(src)
	evt.Location = x.Location(src)
	evt.Organizer = x.Organizer(src)
	evt.Price = x.Price(src)
	evt.ImageURL = x.Image(src)
	evt.Tags = x.Tags(src)
}

// structuredText returns the cleaned value of a structured field
func structuredText(src Source, field func(*structured.Data) string) attempt[string] {
	return func() (string, bool) {
		if src.Data == nil {
			return "", false
		}
		v := markup.Clean(field(src.Data))
		return v, v != ""
	}
}

// selectorText tries each selector in order, preferring a meta-style content
// attribute over element text. Element text is accepted only when accept
// returns true.
func selectorText(src Source, selectors []string, accept func(string) bool) attempt[string] {
	return func() (string, bool) {
		for _, sel := range selectors {
			if content := markup.Clean(src.Doc.Attr(sel, "content")); content != "" {
				return content, true
			}
			if text := src.Doc.Text(sel); text != "" && (accept == nil || accept(text)) {
				return text, true
			}
		}
		return "", false
	}
}

// constant always produces v
func constant[T any](v T) attempt[T] {
	return func() (T, bool) {
		return v, true
	}
}

func containsFold(s string, subs []string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func isAbsolute(u string) bool {
	return strings.HasPrefix(u, "http")
}
