package notifier

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

// DryRunNotifier prints what would be announced without posting anything
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to out, or to stdout
// when out is nil
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out}
}

// Notify prints the announcements that would be posted
func (n *DryRunNotifier) Notify(events []*event.Event) error {
	for i, evt := range events {
		msg := FormatAnnouncement(evt)
		if _, err := fmt.Fprintf(n.out, "--- Announcement %d/%d ---\n%s\n\n(Length: %d characters)\n\n",
			i+1, len(events), msg, utf8.RuneCountInString(msg)); err != nil {
			return fmt.Errorf("writing announcement: %w", err)
		}
	}
	return nil
}
