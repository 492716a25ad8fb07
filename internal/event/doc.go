// Package event provides the normalized event record produced by the parsers.
//
// The event package defines the Event model and its nested value types, the
// identifier scheme, and lenient date parsing. Each extraction is assigned a
// SHA1 name-based UUID derived from its platform, source URL and creation
// instant, plus a StableKey that stays the same across repeated extractions of
// the same URL.
package event
