package extract

import (
	"time"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

// Dates extracts the event schedule. An unparseable or missing start falls
// back to the extraction time; the end is left unset when unknown.
func (x *Extractor) Dates(src Source) event.Dates {
	start, ok := first(
		x.structuredDate(src, func() string { return src.Data.StartDate }),
		x.markupDate(src, x.Selectors.Start),
	)
	if !ok {
		start = src.Now.UTC()
	}

	dates := event.Dates{Start: start, Timezone: "UTC"}

	end, ok := first(
		x.structuredDate(src, func() string { return src.Data.EndDate }),
		x.markupDate(src, x.Selectors.End),
	)
	if ok && !end.Before(start) {
		dates.End = &end
	}
	return dates
}

func (x *Extractor) structuredDate(src Source, field func() string) attempt[time.Time] {
	return func() (time.Time, bool) {
		if src.Data == nil {
			return time.Time{}, false
		}
		return event.ParseDate(field())
	}
}

// markupDate reads a datetime or content attribute from each selector in
// turn. Values that do not parse count as missing.
func (x *Extractor) markupDate(src Source, selectors []string) attempt[time.Time] {
	return func() (time.Time, bool) {
		for _, sel := range selectors {
			for _, attr := range []string{"datetime", "content"} {
				if t, ok := event.ParseDate(src.Doc.Attr(sel, attr)); ok {
					return t, true
				}
			}
		}
		return time.Time{}, false
	}
}
