package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ncruces/go-sqlite3"
	"github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	platform   TEXT NOT NULL,
	start_time TEXT NOT NULL,
	body       TEXT NOT NULL CHECK (json_valid(body))
) STRICT;
CREATE INDEX IF NOT EXISTS events_start_time ON events (start_time);
`

// SQLiteStore keeps events in a SQLite database, one row per id
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

func setupConn(c *sqlite3.Conn) error {
	if err := c.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		return err
	}
	return c.Exec(`PRAGMA busy_timeout = 5000`)
}

// NewSQLite opens or creates the database at path. ":memory:" gives a
// private in-memory database.
func NewSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	if path != ":memory:" {
		var err error
		if path, err = ExpandHome(path); err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := driver.Open(path, setupConn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db, opts: buildOptions(opts)}, nil
}

// Get loads the event with id
func (s *SQLiteStore) Get(id string) (*event.Event, error) {
	var body string
	err := s.db.QueryRow(`SELECT body FROM events WHERE id = ?`, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading event: %w", err)
	}
	return s.decode(body)
}

func (s *SQLiteStore) decode(body string) (*event.Event, error) {
	var evt event.Event
	if err := json.Unmarshal([]byte(body), &evt); err != nil {
		return nil, fmt.Errorf("parsing event: %w", err)
	}
	return s.opts.open(&evt)
}

// Put writes evt, replacing any event with the same id
func (s *SQLiteStore) Put(evt *event.Event) error {
	stored, err := s.opts.seal(evt)
	if err != nil {
		return err
	}
	body, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO events (id, platform, start_time, body) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET platform = excluded.platform, start_time = excluded.start_time, body = excluded.body`,
		evt.ID, string(evt.Platform), evt.Dates.Start.UTC().Format(time.RFC3339Nano), string(body),
	)
	if err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Delete removes the event with id
func (s *SQLiteStore) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every stored event ordered by start time
func (s *SQLiteStore) List() ([]*event.Event, error) {
	rows, err := s.db.Query(`SELECT body FROM events ORDER BY start_time, id`)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	events := make([]*event.Event, 0)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("listing events: %w", err)
		}
		evt, err := s.decode(body)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	sortByStart(events)
	return events, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
