// Package structured locates embedded JSON-LD event metadata in a page.
//
// Extract never fails: blocks that are not valid JSON or that do not describe
// an event are skipped, and a page without any qualifying block yields nil.
package structured

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pfrederiksen/event-ingest/internal/markup"
)

// ScriptType is the type attribute of JSON-LD script blocks
const ScriptType = "application/ld+json"

// Mode controls which block shapes qualify
type Mode int

const (
	// Strict accepts only top-level objects typed as an event
	Strict Mode = iota
	// Lenient also accepts top-level arrays and @graph arrays containing an
	// event entry
	Lenient
)

// Data is the event metadata found on a page. Every field is optional.
type Data struct {
	Type           string
	Name           string
	Description    string
	StartDate      string
	EndDate        string
	AttendanceMode string
	FreeEntry      bool

	Location  interface{}
	Organizer interface{}
	Offers    interface{}
	Image     interface{}
	Keywords  interface{}
	URL       string
}

// Extract returns the first qualifying event block in document order, or nil
func Extract(doc *markup.Document, mode Mode) *Data {
	for _, raw := range doc.Scripts(ScriptType) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		var payload interface{}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			continue
		}
		if obj := findEvent(payload, mode); obj != nil {
			return fromMap(obj)
		}
	}
	return nil
}

func findEvent(payload interface{}, mode Mode) map[string]interface{} {
	switch v := payload.(type) {
	case map[string]interface{}:
		if IsEventType(v["@type"]) {
			return v
		}
		if mode == Lenient {
			if graph, ok := v["@graph"].([]interface{}); ok {
				return firstEvent(graph)
			}
		}
	case []interface{}:
		if mode == Lenient {
			return firstEvent(v)
		}
	}
	return nil
}

func firstEvent(items []interface{}) map[string]interface{} {
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok && IsEventType(m["@type"]) {
			return m
		}
	}
	return nil
}

// IsEventType reports whether a JSON-LD @type value names Event, SocialEvent
// or another schema.org Event subtype
func IsEventType(value interface{}) bool {
	switch v := value.(type) {
	case string:
		return isEventName(v)
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && isEventName(s) {
				return true
			}
		}
	}
	return false
}

func isEventName(s string) bool {
	s = typeName(s)
	return s == "Event" || s == "SocialEvent" || (len(s) > len("Event") && strings.HasSuffix(s, "Event"))
}

// typeName strips a schema.org URL prefix from a type or enumeration value
func typeName(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexAny(s, "/#:"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

func fromMap(m map[string]interface{}) *Data {
	d := &Data{
		Name:           stringField(m, "name"),
		Description:    stringField(m, "description"),
		StartDate:      stringField(m, "startDate"),
		EndDate:        stringField(m, "endDate"),
		AttendanceMode: typeName(stringField(m, "eventAttendanceMode")),
		URL:            stringField(m, "url"),
		Location:       m["location"],
		Organizer:      m["organizer"],
		Offers:         m["offers"],
		Image:          m["image"],
		Keywords:       m["keywords"],
	}
	switch t := m["@type"].(type) {
	case string:
		d.Type = typeName(t)
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && isEventName(s) {
				d.Type = typeName(s)
				break
			}
		}
	}
	switch free := m["isAccessibleForFree"].(type) {
	case bool:
		d.FreeEntry = free
	case string:
		d.FreeEntry = strings.EqualFold(free, "true")
	}
	return d
}

// stringField returns m[key] when it is a string, or the string form of a
// number
func stringField(m map[string]interface{}, key string) string {
	return stringValue(m[key])
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}
