// Package cli implements the command-line interface for event-ingest.
//
// The cli package provides the Cobra-based CLI with commands to parse event
// URLs (text/JSON output, optional saving and announcements), list, show,
// delete and export stored events, and serve the HTTP API. It coordinates the
// router, storage, filter, calendar and notifier packages.
package cli
