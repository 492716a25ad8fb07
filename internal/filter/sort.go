package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

// SortOrder names an event ordering
type SortOrder string

const (
	SortDateAsc   SortOrder = "date-asc"
	SortDateDesc  SortOrder = "date-desc"
	SortTitleAsc  SortOrder = "title-asc"
	SortTitleDesc SortOrder = "title-desc"
)

// SortOrders lists the valid orderings, default first
var SortOrders = []SortOrder{SortDateAsc, SortDateDesc, SortTitleAsc, SortTitleDesc}

// ParseSortOrder validates s. An empty string selects SortDateAsc.
func ParseSortOrder(s string) (SortOrder, error) {
	if s == "" {
		return SortDateAsc, nil
	}
	for _, o := range SortOrders {
		if strings.EqualFold(s, string(o)) {
			return o, nil
		}
	}
	return "", fmt.Errorf("invalid sort order %q (use date-asc, date-desc, title-asc or title-desc)", s)
}

// Sort orders events in place. Unknown orders sort by ascending date.
func Sort(events []*event.Event, order SortOrder) {
	switch order {
	case SortDateDesc:
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Dates.Start.After(events[j].Dates.Start)
		})
	case SortTitleAsc:
		sort.SliceStable(events, func(i, j int) bool {
			return compareTitle(events[i], events[j]) < 0
		})
	case SortTitleDesc:
		sort.SliceStable(events, func(i, j int) bool {
			return compareTitle(events[i], events[j]) > 0
		})
	default:
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Dates.Start.Before(events[j].Dates.Start)
		})
	}
}

func compareTitle(a, b *event.Event) int {
	return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
}

func distinct(values []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
