package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pfrederiksen/event-ingest/internal/crypto"
	"github.com/pfrederiksen/event-ingest/internal/event"
)

// DefaultDataDir is where FileStore keeps events unless configured otherwise
const DefaultDataDir = "~/.local/share/event-ingest/events"

// ErrNotFound is returned when no event has the requested id
var ErrNotFound = errors.New("event not found")

// Store is a keyed collection of events, one record per id
type Store interface {
	Get(id string) (*event.Event, error)
	Put(evt *event.Event) error
	Delete(id string) error
	List() ([]*event.Event, error)
	Close() error
}

// Option configures a store
type Option func(*options)

type options struct {
	enc *crypto.Encryptor
}

// WithEncryptor encrypts organizer contact details at rest. A nil encryptor
// disables encryption.
func WithEncryptor(enc *crypto.Encryptor) Option {
	return func(o *options) {
		o.enc = enc
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open opens the store named by dsn: "sqlite:<path>" for a SQLite database,
// anything else is a data directory
func Open(dsn string, opts ...Option) (Store, error) {
	if path, ok := strings.CutPrefix(dsn, "sqlite:"); ok {
		return NewSQLite(path, opts...)
	}
	if dsn == "" {
		dsn = DefaultDataDir
	}
	return NewFileStore(dsn, opts...)
}

// ExpandHome expands a leading ~/ to the user's home directory
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// seal returns a copy of evt ready to be written
func (o options) seal(evt *event.Event) (*event.Event, error) {
	out := evt.Clone()
	if err := o.enc.EncryptFields(&out.Organizer.Email, &out.Organizer.Phone); err != nil {
		return nil, fmt.Errorf("encrypting organizer contact: %w", err)
	}
	return out, nil
}

// open restores an event read from storage
func (o options) open(evt *event.Event) (*event.Event, error) {
	if err := o.enc.DecryptFields(&evt.Organizer.Email, &evt.Organizer.Phone); err != nil {
		return nil, fmt.Errorf("decrypting organizer contact for %s: %w", evt.ID, err)
	}
	return evt, nil
}

// sortByStart orders events by start time, then id
func sortByStart(events []*event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].Dates.Start, events[j].Dates.Start
		if !a.Equal(b) {
			return a.Before(b)
		}
		return events[i].ID < events[j].ID
	})
}
