package extract

import (
	"strings"

	"github.com/pfrederiksen/event-ingest/internal/event"
	"github.com/pfrederiksen/event-ingest/internal/markup"
	"github.com/pfrederiksen/event-ingest/internal/structured"
)

// Title extracts the event title
func (x *Extractor) Title(src Source) string {
	title, _ := first(
		structuredText(src, func(d *structured.Data) string { return d.Name }),
		selectorText(src, x.Selectors.Title, func(text string) bool {
			return !containsFold(text, x.Defaults.RejectTitle)
		}),
		constant(x.Defaults.Title),
	)
	return title
}

// Description extracts the event description
func (x *Extractor) Description(src Source) string {
	fallback := x.Defaults.Description
	if fallback == "" {
		fallback = DefaultDescription
	}
	desc, _ := first(
		structuredText(src, func(d *structured.Data) string { return d.Description }),
		selectorText(src, x.Selectors.Description, func(text string) bool {
			return len(text) > x.Defaults.MinDescription
		}),
		constant(fallback),
	)
	return desc
}

// Organizer extracts who runs the event
func (x *Extractor) Organizer(src Source) event.Organizer {
	org, _ := first(
		func() (event.Organizer, bool) {
			if src.Data == nil {
				return event.Organizer{}, false
			}
			for _, o := range src.Data.Organizers() {
				if name := markup.Clean(o.Name); name != "" {
					return event.Organizer{Name: name, URL: o.URL, Email: o.Email, Phone: o.Phone}, true
				}
			}
			return event.Organizer{}, false
		},
		func() (event.Organizer, bool) {
			name, ok := selectorText(src, x.Selectors.Organizer, nil)()
			return event.Organizer{Name: name}, ok
		},
		func() (event.Organizer, bool) {
			if x.Defaults.Organizer == nil || src.URL == nil {
				return event.Organizer{}, false
			}
			name := x.Defaults.Organizer(src.URL)
			return event.Organizer{Name: name}, name != ""
		},
	)
	if org.URL == "" && x.Defaults.OrganizerURL != nil && src.URL != nil {
		org.URL = x.Defaults.OrganizerURL(src.URL)
	}
	return org
}

// Image extracts an absolute URL for a representative image
func (x *Extractor) Image(src Source) string {
	img, _ := first(
		func() (string, bool) {
			if src.Data == nil {
				return "", false
			}
			u := src.Data.ImageURL()
			return u, isAbsolute(u)
		},
		func() (string, bool) {
			for _, sel := range x.Selectors.Image {
				for _, attr := range []string{"content", "src"} {
					if v := src.Doc.Attr(sel, attr); isAbsolute(v) {
						return v, true
					}
				}
			}
			return "", false
		},
	)
	return img
}

// Tags collects free-text tags from structured keywords and every match of
// every tag selector. The result is de-duplicated in first-seen order.
func (x *Extractor) Tags(src Source) []string {
	var raw []string
	if src.Data != nil {
		raw = append(raw, src.Data.KeywordList()...)
	}
	for _, sel := range x.Selectors.Tags {
		if content := src.Doc.Attr(sel, "content"); content != "" {
			raw = append(raw, strings.Split(content, ",")...)
			continue
		}
		raw = append(raw, src.Doc.Texts(sel)...)
	}
	return Dedupe(raw)
}

// Dedupe cleans each value, drops empties and removes repeats, keeping the
// first occurrence
func Dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = markup.Clean(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
