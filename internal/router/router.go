// Package router dispatches event URLs to the first parser that accepts them.
package router

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/event-ingest/internal/event"
	"github.com/pfrederiksen/event-ingest/internal/logger"
	"github.com/pfrederiksen/event-ingest/internal/parser"
)

// DefaultConcurrency bounds how many URLs of a batch are processed at once
const DefaultConcurrency = 8

// Router tries parsers in priority order
type Router struct {
	parsers     []parser.Parser
	concurrency int
}

// Option configures a Router
type Option func(*Router)

// WithConcurrency sets how many batch URLs are processed at once
func WithConcurrency(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// New creates a router over parsers, highest priority first
func New(parsers []parser.Parser, opts ...Option) *Router {
	r := &Router{parsers: parsers, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default creates a router over the meetup, facebook and website parsers, in
// that order
func Default(popts []parser.Option, opts ...Option) *Router {
	return New([]parser.Parser{
		parser.NewMeetup(popts...),
		parser.NewFacebook(popts...),
		parser.NewWebsite(popts...),
	}, opts...)
}

// SupportedPlatforms lists the platforms of the router's parsers in priority
// order
func (r *Router) SupportedPlatforms() []string {
	out := make([]string, 0, len(r.parsers))
	for _, p := range r.parsers {
		out = append(out, string(p.Platform()))
	}
	return out
}

// Route extracts the event at rawURL with the first parser that accepts it.
// A recoverable failure passes the URL on to the next accepting parser; any
// other failure is returned as is.
func (r *Router) Route(ctx context.Context, rawURL string) (*event.Event, error) {
	if _, err := parser.ParseURL(rawURL); err != nil {
		logger.IncrCounter("route.malformed")
		return nil, parser.Malformed(rawURL, err)
	}

	var lastErr error
	for _, p := range r.parsers {
		if !p.CanParse(rawURL) {
			continue
		}
		evt, err := p.Parse(ctx, rawURL)
		if err == nil {
			return evt, nil
		}
		if !parser.IsRecoverable(err) {
			return nil, err
		}
		logger.Debug("Parser could not read page, trying next", logger.Fields{
			"platform": p.Platform(),
			"url":      rawURL,
		})
		lastErr = err
	}

	if lastErr != nil {
		return nil, lastErr
	}
	logger.IncrCounter("route.unrouted")
	return nil, parser.NoParser(rawURL)
}

// Result is the outcome for one URL of a batch
type Result struct {
	URL     string       `json:"url,omitempty"`
	Success bool         `json:"success"`
	Event   *event.Event `json:"event,omitempty"`
	Error   string       `json:"error,omitempty"`

	Err error `json:"-"`
}

// NewResult wraps the outcome of Route
func NewResult(rawURL string, evt *event.Event, err error) Result {
	if err != nil {
		return Result{URL: rawURL, Error: err.Error(), Err: err}
	}
	return Result{URL: rawURL, Success: true, Event: evt}
}

// RouteBatch routes every URL concurrently. The results are in input order
// and one failure does not affect the others.
func (r *Router) RouteBatch(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, rawURL := range urls {
		g.Go(func() error {
			evt, err := r.Route(ctx, rawURL)
			results[i] = NewResult(rawURL, evt, err)
			return nil
		})
	}
	g.Wait()

	return results
}
