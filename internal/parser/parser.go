// Package parser turns event pages into validated events.
//
// Three parsers share one pipeline and differ only in which URLs they accept,
// the selectors they try and their fallback values:
//
//	Meetup    community group event pages on meetup.com
//	Facebook  facebook.com/events pages, read through their Open Graph tags
//	Website   any other http(s) page, read through schema.org markup
//
// Every failure is reported as *Error.
package parser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pfrederiksen/event-ingest/internal/event"
	"github.com/pfrederiksen/event-ingest/internal/extract"
	"github.com/pfrederiksen/event-ingest/internal/fetch"
	"github.com/pfrederiksen/event-ingest/internal/logger"
	"github.com/pfrederiksen/event-ingest/internal/markup"
	"github.com/pfrederiksen/event-ingest/internal/structured"
	"github.com/pfrederiksen/event-ingest/internal/validate"
)

// Parser extracts events for one platform
type Parser interface {
	Platform() event.Platform
	CanParse(rawURL string) bool
	Parse(ctx context.Context, rawURL string) (*event.Event, error)
}

// Fetcher retrieves raw page bodies
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Option configures a parser
type Option func(*site)

// WithFetcher sets how pages are retrieved
func WithFetcher(f Fetcher) Option {
	return func(s *site) {
		s.fetcher = f
	}
}

// WithClock sets the source of creation timestamps
func WithClock(now func() time.Time) Option {
	return func(s *site) {
		s.now = now
	}
}

// site is the pipeline shared by all parsers
type site struct {
	platform  event.Platform
	mode      structured.Mode
	extractor extract.Extractor

	// interstitial recognizes pages that stand in front of the event, such
	// as login walls
	interstitial func(doc *markup.Document) bool

	fetcher Fetcher
	now     func() time.Time
}

func newSite(platform event.Platform, mode structured.Mode, x extract.Extractor, opts []Option) site {
	s := site{
		platform:  platform,
		mode:      mode,
		extractor: x,
		fetcher:   fetch.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Platform returns the label attached to events from this parser
func (s *site) Platform() event.Platform {
	return s.platform
}

// Parse fetches rawURL and extracts a validated event from it
func (s *site) Parse(ctx context.Context, rawURL string) (*event.Event, error) {
	start := time.Now()
	evt, err := s.parse(ctx, rawURL)
	logger.RecordTiming("parse."+string(s.platform), time.Since(start))

	if err != nil {
		logger.IncrCounter("parse." + string(s.platform) + ".error")
		logger.Warn("Event extraction failed", logger.Fields{
			"platform": s.platform,
			"url":      rawURL,
			"error":    err.Error(),
		})
		return nil, err
	}

	logger.IncrCounter("parse." + string(s.platform) + ".success")
	logger.Info("Event extracted", logger.Fields{
		"platform": s.platform,
		"url":      rawURL,
		"id":       evt.ID,
		"title":    evt.Title,
	})
	return evt, nil
}

func (s *site) parse(ctx context.Context, rawURL string) (*event.Event, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, s.fail(KindMalformed, rawURL, err)
	}

	body, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, s.fail(KindFetch, rawURL, err)
	}

	doc, err := markup.Parse(body)
	if err != nil {
		return nil, s.fail(KindParse, rawURL, err)
	}
	if s.interstitial != nil && s.interstitial(doc) {
		return nil, s.fail(KindParse, rawURL, errors.New("page is not an event page"))
	}

	now := s.now()
	src := extract.Source{
		Doc:  doc,
		Data: structured.Extract(doc, s.mode),
		URL:  u,
		Now:  now,
	}

	evt := event.NewDraft(s.platform, rawURL, now)
	s.extractor.Apply(src, evt)

	if missing := validate.Errors(evt); len(missing) > 0 {
		return nil, s.fail(KindExtraction, rawURL, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")))
	}
	return evt, nil
}

func (s *site) fail(kind Kind, rawURL string, err error) *Error {
	return newError(kind, string(s.platform), rawURL, err)
}

// ParseURL parses rawURL and requires it to be absolute. Surrounding
// whitespace is rejected rather than trimmed, since rawURL is fetched as given.
func ParseURL(rawURL string) (*url.URL, error) {
	if strings.TrimSpace(rawURL) != rawURL {
		return nil, fmt.Errorf("url has surrounding whitespace: %q", rawURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("not an absolute url: %q", rawURL)
	}
	return u, nil
}

// hostHas reports whether rawURL is absolute and its host contains domain
func hostHas(rawURL, domain string) (*url.URL, bool) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, false
	}
	return u, strings.Contains(strings.ToLower(u.Hostname()), domain)
}
