// Package storage persists extracted events.
//
// Two backends implement Store: FileStore keeps one indented JSON file per
// event in a data directory (default ~/.local/share/event-ingest/events),
// and SQLiteStore keeps one row per event in a SQLite database. Open picks
// the backend from a DSN.
//
// When an Encryptor is configured, organizer email and phone are encrypted
// before they are written and decrypted when read back.
package storage
