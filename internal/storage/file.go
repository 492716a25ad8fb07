package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

// FileStore keeps one <id>.json file per event
type FileStore struct {
	dataDir string
	opts    options
}

// NewFileStore creates a FileStore in dataDir, creating the directory if
// needed
func NewFileStore(dataDir string, opts ...Option) (*FileStore, error) {
	dataDir, err := ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &FileStore{dataDir: dataDir, opts: buildOptions(opts)}, nil
}

// Dir returns the data directory
func (s *FileStore) Dir() string {
	return s.dataDir
}

// path returns the file for id. Ids that could escape the data directory
// are rejected.
func (s *FileStore) path(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return "", fmt.Errorf("invalid event id %q", id)
	}
	return filepath.Join(s.dataDir, id+".json"), nil
}

// Get loads the event with id
func (s *FileStore) Get(id string) (*event.Event, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	return s.read(path)
}

func (s *FileStore) read(path string) (*event.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading event: %w", err)
	}

	var evt event.Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return s.opts.open(&evt)
}

// Put writes evt, replacing any event with the same id
func (s *FileStore) Put(evt *event.Event) error {
	path, err := s.path(evt.ID)
	if err != nil {
		return err
	}

	stored, err := s.opts.seal(evt)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	// Write through a temporary file so readers never see a partial record
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Delete removes the event with id
func (s *FileStore) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

// List returns every stored event ordered by start time
func (s *FileStore) List() ([]*event.Event, error) {
	matches, err := filepath.Glob(filepath.Join(s.dataDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	events := make([]*event.Event, 0, len(matches))
	for _, path := range matches {
		evt, err := s.read(path)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	sortByStart(events)
	return events, nil
}

// Close is a no-op
func (s *FileStore) Close() error {
	return nil
}
