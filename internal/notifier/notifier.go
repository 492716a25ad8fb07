package notifier

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

// MaxLength is the longest announcement a notifier will send
const MaxLength = 280

// Notifier announces events
type Notifier interface {
	// Notify announces each of the given events
	Notify(events []*event.Event) error
}

// FormatAnnouncement renders evt as a short status update of at most
// MaxLength characters
func FormatAnnouncement(evt *event.Event) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📅 %s\n", evt.Title)
	if !evt.Dates.Start.IsZero() {
		fmt.Fprintf(&b, "🕒 %s\n", evt.Dates.Start.UTC().Format("Mon Jan 2, 2006 3:04 PM MST"))
	}
	if where := place(evt.Location); where != "" {
		fmt.Fprintf(&b, "📍 %s\n", where)
	}
	if evt.Price != nil {
		fmt.Fprintf(&b, "🎟 %s\n", PriceText(evt.Price))
	}
	if evt.SourceURL != "" {
		fmt.Fprintf(&b, "\n%s\n", evt.SourceURL)
	}

	var tags []string
	for _, tag := range evt.Tags {
		if h := hashtag(tag); h != "" {
			tags = append(tags, h)
		}
		if len(tags) == 3 {
			break
		}
	}
	if len(tags) > 0 {
		b.WriteString("\n" + strings.Join(tags, " "))
	}

	return truncate(strings.TrimRight(b.String(), "\n"), MaxLength)
}

// PriceText renders a price for people
func PriceText(p *event.Price) string {
	if p == nil || p.IsFree || p.Amount == nil {
		return "Free"
	}
	return fmt.Sprintf("%.2f %s", *p.Amount, p.Currency)
}

func place(loc event.Location) string {
	if loc.Type == event.LocationVirtual {
		return "Online"
	}
	var parts []string
	for _, p := range []string{loc.Venue, loc.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	s := strings.Join(parts, ", ")
	if loc.Type == event.LocationHybrid {
		if s == "" {
			return "Online"
		}
		s += " + online"
	}
	return s
}

func hashtag(tag string) string {
	var b strings.Builder
	for _, r := range tag {
		if r == ' ' || r == '-' || r == '_' {
			continue
		}
		if !strings.ContainsRune("#.,;:!?'\"()/&", r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "#" + b.String()
}

// truncate shortens s to at most n characters, ending in "..." when cut
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}
