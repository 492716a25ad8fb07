package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/event-ingest/internal/event"
	"github.com/pfrederiksen/event-ingest/internal/notifier"
)

// Notification modes for parse --notify
const (
	NotifyNone    = "none"
	NotifyDryRun  = "dry-run"
	NotifyTwitter = "twitter"
)

type parseOptions struct {
	save        bool
	format      string
	timeout     time.Duration
	concurrency int
	notify      string
}

func newParseCmd(a *app) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse URL... | -",
		Short: "Extract events from one or more URLs",
		Long: `Fetch each URL, pick the parser for its platform and print the extracted
event. With "-" the URLs are read from standard input, one per line.
Exits with status 1 if any URL fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.save, "save", false, "Save extracted events to the store")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Fetch timeout per URL (default from config)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Maximum URLs processed at once (default from config)")
	cmd.Flags().StringVar(&opts.notify, "notify", NotifyNone, "Announce extracted events: none, dry-run or twitter")

	return cmd
}

func (a *app) runParse(cmd *cobra.Command, args []string, opts parseOptions) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}
	n, err := a.notifier(opts.notify, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	urls, err := readURLs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given")
	}

	a.debugf(cmd.ErrOrStderr(), "Parsing %d URL(s)\n", len(urls))
	results := a.newRouter(opts.timeout, opts.concurrency).RouteBatch(cmd.Context(), urls)

	var events []*event.Event
	failed := 0
	for _, res := range results {
		if res.Success {
			events = append(events, res.Event)
		} else {
			failed++
		}
	}

	if opts.save && len(events) > 0 {
		if err := a.saveAll(events); err != nil {
			return err
		}
		a.debugf(cmd.ErrOrStderr(), "Saved %d event(s)\n", len(events))
	}

	if err := WriteResults(cmd.OutOrStdout(), results, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if n != nil && len(events) > 0 {
		if err := n.Notify(events); err != nil {
			return fmt.Errorf("notifying: %w", err)
		}
	}

	if failed > 0 {
		return errFailures
	}
	return nil
}

func (a *app) saveAll(events []*event.Event) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	for _, evt := range events {
		if err := store.Put(evt); err != nil {
			return fmt.Errorf("saving %s: %w", evt.ID, err)
		}
	}
	return nil
}

// notifier returns the notifier for mode, or nil for NotifyNone
func (a *app) notifier(mode string, out io.Writer) (notifier.Notifier, error) {
	switch strings.ToLower(mode) {
	case "", NotifyNone:
		return nil, nil
	case NotifyDryRun:
		return notifier.NewDryRunNotifier(out), nil
	case NotifyTwitter:
		tw, err := notifier.NewTwitterNotifier(a.cfg.Twitter)
		if err != nil {
			return nil, err
		}
		return tw, nil
	default:
		return nil, fmt.Errorf("invalid notify mode: %s (must be 'none', 'dry-run' or 'twitter')", mode)
	}
}

// readURLs expands a "-" argument into the non-blank lines of in
func readURLs(args []string, in io.Reader) ([]string, error) {
	var urls []string
	for _, arg := range args {
		if arg != "-" {
			urls = append(urls, arg)
			continue
		}
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
				urls = append(urls, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading URLs: %w", err)
		}
	}
	return urls, nil
}
