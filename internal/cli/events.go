package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/event-ingest/internal/calendar"
	"github.com/pfrederiksen/event-ingest/internal/event"
	"github.com/pfrederiksen/event-ingest/internal/filter"
)

type listOptions struct {
	format    string
	query     string
	dateRange string
	from      string
	to        string
	location  string
	city      string
	category  string
	platform  string
	freeOnly  bool
	sort      string
	upcoming  bool
}

func newListCmd(a *app) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "text", "Output format: text or json")
	f.StringVarP(&opts.query, "search", "q", "", "Search title, description, tags, categories and organizer")
	f.StringVar(&opts.dateRange, "range", "", `Date range such as "Mar 1-15", "March" or "2025-03-01..2025-03-15"`)
	f.StringVar(&opts.from, "from", "", "Earliest start date (YYYY-MM-DD)")
	f.StringVar(&opts.to, "to", "", "Latest start date (YYYY-MM-DD)")
	f.StringVar(&opts.location, "type", "", "Location type: physical, virtual or hybrid")
	f.StringVar(&opts.city, "city", "", "City")
	f.StringVar(&opts.category, "category", "", "Category")
	f.StringVar(&opts.platform, "platform", "", "Source platform: meetup, facebook or website")
	f.BoolVar(&opts.freeOnly, "free", false, "Only free events")
	f.BoolVar(&opts.upcoming, "upcoming", false, "Only events that have not started")
	f.StringVar(&opts.sort, "sort", string(filter.SortDateAsc), "Sort order: date-asc, date-desc, title-asc or title-desc")

	return cmd
}

// buildFilter turns list flags into a filter. --range wins over --from and
// --to, and --upcoming raises the lower bound to now.
func (o listOptions) buildFilter(now time.Time) (*filter.Filter, error) {
	order, err := filter.ParseSortOrder(o.sort)
	if err != nil {
		return nil, err
	}

	f := &filter.Filter{
		Query:    strings.TrimSpace(o.query),
		City:     strings.TrimSpace(o.city),
		Category: strings.TrimSpace(o.category),
		FreeOnly: o.freeOnly,
		Platform: event.Platform(strings.ToLower(o.platform)),
		Sort:     order,
	}

	if o.location != "" {
		lt := event.LocationType(strings.ToLower(o.location))
		if lt != event.LocationPhysical && lt != event.LocationVirtual && lt != event.LocationHybrid {
			return nil, fmt.Errorf("invalid location type: %s (must be 'physical', 'virtual' or 'hybrid')", o.location)
		}
		f.LocationType = lt
	}

	if o.dateRange != "" {
		f.From, f.To, err = filter.ParseDateRange(o.dateRange, now)
		if err != nil {
			return nil, err
		}
	} else if o.from != "" || o.to != "" {
		f.From, f.To, err = filter.ParseDateRange(o.from+".."+o.to, now)
		if err != nil {
			return nil, err
		}
	}

	if o.upcoming && (f.From == nil || f.From.Before(now)) {
		t := now
		f.From = &t
	}
	return f, nil
}

func (a *app) runList(cmd *cobra.Command, opts listOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}
	f, err := opts.buildFilter(time.Now().UTC())
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	all, err := store.List()
	if err != nil {
		return fmt.Errorf("listing events: %w", err)
	}

	events := f.Apply(all)
	a.debugf(cmd.ErrOrStderr(), "%s (%d of %d events)\n", f.String(), len(events), len(all))
	return WriteEvents(cmd.OutOrStdout(), events, format)
}

func newShowCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one stored event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			evt, err := a.getEvent(args[0])
			if err != nil {
				return err
			}
			return WriteEvent(cmd.OutOrStdout(), evt, f)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete stored events",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			for _, id := range args {
				if err := store.Delete(id); err != nil {
					return fmt.Errorf("deleting %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}
			return nil
		},
	}
}

func newICSCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "ics [ID...]",
		Short: "Export stored events as iCalendar",
		Long: `Write the given events, or every stored event when no ID is given, as an
iCalendar (RFC 5545) file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := a.eventsByID(args)
			if err != nil {
				return err
			}

			ics := calendar.GenerateCalendar(events)
			if output == "" || output == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), ics)
				return err
			}
			if err := os.WriteFile(output, []byte(ics), 0644); err != nil {
				return fmt.Errorf("writing calendar: %w", err)
			}
			a.debugf(cmd.ErrOrStderr(), "Wrote %d event(s) to %s\n", len(events), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of standard output")
	return cmd
}

func (a *app) getEvent(id string) (*event.Event, error) {
	events, err := a.eventsByID([]string{id})
	if err != nil {
		return nil, err
	}
	return events[0], nil
}

// eventsByID loads the events with ids, or all events when ids is empty
func (a *app) eventsByID(ids []string) ([]*event.Event, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if len(ids) == 0 {
		events, err := store.List()
		if err != nil {
			return nil, fmt.Errorf("listing events: %w", err)
		}
		return events, nil
	}

	events := make([]*event.Event, 0, len(ids))
	for _, id := range ids {
		evt, err := store.Get(id)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", id, err)
		}
		events = append(events, evt)
	}
	return events, nil
}
