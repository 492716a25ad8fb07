package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mitchellh/go-wordwrap"

	"github.com/pfrederiksen/event-ingest/internal/event"
	"github.com/pfrederiksen/event-ingest/internal/notifier"
	"github.com/pfrederiksen/event-ingest/internal/router"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WrapWidth is the column at which descriptions are wrapped in text output
const WrapWidth = 72

const dateLayout = "Mon Jan 2, 2006 3:04 PM MST"

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// WriteResults writes parse results in the specified format. JSON output is
// a single object for one result and an array otherwise.
func WriteResults(w io.Writer, results []router.Result, format OutputFormat) error {
	switch format {
	case FormatJSON:
		if len(results) == 1 {
			return writeJSON(w, results[0])
		}
		return writeJSON(w, results)
	case FormatText:
		return writeResultsText(w, results)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeResultsText(w io.Writer, results []router.Result) error {
	failed := 0
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if !res.Success {
			failed++
			fmt.Fprintf(w, "FAILED %s\n  %s\n", res.URL, res.Error)
			continue
		}
		writeEventText(w, res.Event)
	}
	if len(results) > 1 {
		fmt.Fprintf(w, "\nTotal: %d parsed, %d failed\n", len(results)-failed, failed)
	}
	return nil
}

// WriteEvents writes a list of stored events. Text output is one line per
// event.
func WriteEvents(w io.Writer, events []*event.Event, format OutputFormat) error {
	switch format {
	case FormatJSON:
		if events == nil {
			events = []*event.Event{}
		}
		return writeJSON(w, events)
	case FormatText:
		if len(events) == 0 {
			fmt.Fprintln(w, "No events found.")
			return nil
		}
		for _, evt := range events {
			fmt.Fprintf(w, "%s  %-40s  %s\n", evt.Dates.Start.UTC().Format("2006-01-02 15:04"), evt.Title, evt.ID)
		}
		fmt.Fprintf(w, "\nTotal: %d events\n", len(events))
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteEvent writes the full details of one event
func WriteEvent(w io.Writer, evt *event.Event, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, evt)
	case FormatText:
		writeEventText(w, evt)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeEventText(w io.Writer, evt *event.Event) {
	fmt.Fprintf(w, "%s\n", evt.Title)
	fmt.Fprintf(w, "  ID:        %s\n", evt.ID)
	fmt.Fprintf(w, "  Platform:  %s\n", evt.Platform)
	fmt.Fprintf(w, "  When:      %s\n", whenText(evt.Dates))
	fmt.Fprintf(w, "  Where:     %s\n", whereText(evt.Location))
	fmt.Fprintf(w, "  Organizer: %s\n", evt.Organizer.Name)
	fmt.Fprintf(w, "  Price:     %s\n", notifier.PriceText(evt.Price))
	if len(evt.Tags) > 0 {
		fmt.Fprintf(w, "  Tags:      %s\n", strings.Join(evt.Tags, ", "))
	}
	if len(evt.Categories) > 0 {
		fmt.Fprintf(w, "  Category:  %s\n", strings.Join(evt.Categories, ", "))
	}
	fmt.Fprintf(w, "  Source:    %s\n", evt.SourceURL)

	if evt.Description != "" {
		fmt.Fprintln(w)
		for _, line := range strings.Split(wordwrap.WrapString(evt.Description, WrapWidth), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func whenText(d event.Dates) string {
	start := d.Start.UTC().Format(dateLayout)
	if d.End == nil {
		return start
	}
	end := d.End.UTC()
	if sameDay(d.Start.UTC(), end) {
		return start + " - " + end.Format("3:04 PM")
	}
	return start + " - " + end.Format(dateLayout)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func whereText(loc event.Location) string {
	var parts []string
	for _, p := range []string{loc.Venue, loc.Address, loc.City, loc.State, loc.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if loc.URL != "" {
		parts = append(parts, loc.URL)
	}
	where := string(loc.Type)
	if len(parts) > 0 {
		where += ": " + strings.Join(parts, ", ")
	}
	return where
}
