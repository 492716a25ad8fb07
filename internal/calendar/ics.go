// Package calendar exports events as iCalendar (RFC 5545) documents.
package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

// DefaultDuration is assumed for events without an end time
const DefaultDuration = 2 * time.Hour

const (
	prodID    = "-//event-ingest//event-ingest//EN"
	uidDomain = "event-ingest"
	maxLine   = 75
)

// GenerateICS generates an iCalendar document holding one event
func GenerateICS(evt *event.Event) string {
	return GenerateCalendar([]*event.Event{evt})
}

// GenerateCalendar generates an iCalendar document holding every event
func GenerateCalendar(events []*event.Event) string {
	var b strings.Builder

	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:"+prodID)
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "METHOD:PUBLISH")
	for _, evt := range events {
		writeEvent(&b, evt)
	}
	writeLine(&b, "END:VCALENDAR")

	return b.String()
}

func writeEvent(b *strings.Builder, evt *event.Event) {
	start := evt.Dates.Start
	end := start.Add(DefaultDuration)
	if evt.Dates.End != nil && evt.Dates.End.After(start) {
		end = *evt.Dates.End
	}
	stamp := evt.UpdatedAt
	if stamp.IsZero() {
		stamp = evt.CreatedAt
	}

	writeLine(b, "BEGIN:VEVENT")
	writeLine(b, fmt.Sprintf("UID:%s@%s", evt.ID, uidDomain))
	writeLine(b, "DTSTAMP:"+formatICSTime(stamp))
	writeLine(b, "DTSTART:"+formatICSTime(start))
	writeLine(b, "DTEND:"+formatICSTime(end))
	writeLine(b, "SUMMARY:"+escapeICS(evt.Title))

	description := evt.Description
	if evt.SourceURL != "" {
		description += "\n\nMore info: " + evt.SourceURL
	}
	writeLine(b, "DESCRIPTION:"+escapeICS(description))

	if loc := locationText(evt.Location); loc != "" {
		writeLine(b, "LOCATION:"+escapeICS(loc))
	}
	if evt.Organizer.Name != "" {
		writeLine(b, "ORGANIZER;CN="+quoteParam(evt.Organizer.Name)+":"+organizerURI(evt.Organizer))
	}
	if len(evt.Categories) > 0 {
		cats := make([]string, len(evt.Categories))
		for i, c := range evt.Categories {
			cats[i] = escapeICS(c)
		}
		writeLine(b, "CATEGORIES:"+strings.Join(cats, ","))
	}
	if evt.SourceURL != "" {
		writeLine(b, "URL:"+evt.SourceURL)
	}
	writeLine(b, "STATUS:CONFIRMED")
	writeLine(b, "SEQUENCE:0")
	writeLine(b, "TRANSP:OPAQUE")
	writeLine(b, "END:VEVENT")
}

// locationText renders a location as one line: the venue and address parts
// for physical places, the URL for virtual ones, both for hybrid events
func locationText(loc event.Location) string {
	var parts []string
	if loc.Type != event.LocationVirtual {
		for _, p := range []string{loc.Venue, loc.Address, loc.City, loc.State, loc.Country} {
			if p != "" {
				parts = append(parts, p)
			}
		}
	}
	if loc.Type != event.LocationPhysical && loc.URL != "" {
		parts = append(parts, loc.URL)
	}
	if len(parts) == 0 && loc.Type == event.LocationVirtual {
		return "Online"
	}
	return strings.Join(parts, ", ")
}

func organizerURI(o event.Organizer) string {
	if o.Email != "" {
		return "mailto:" + o.Email
	}
	if o.URL != "" {
		return o.URL
	}
	return "mailto:noreply@" + uidDomain
}

func quoteParam(s string) string {
	s = strings.ReplaceAll(s, `"`, "'")
	if strings.ContainsAny(s, ":;,") {
		return `"` + s + `"`
	}
	return s
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes text values per RFC 5545
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// writeLine writes a content line, folding it into chunks of at most 75
// octets without splitting a UTF-8 sequence
func writeLine(b *strings.Builder, line string) {
	limit := maxLine
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// continuation lines start with a space
		limit = maxLine - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}
