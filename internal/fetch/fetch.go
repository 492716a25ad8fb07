// Package fetch retrieves raw HTML for event pages.
//
// Each Fetch issues a single GET bounded by a wall-clock timeout; the request
// is aborted when the timeout fires. There are no retries. Requests to the
// same host can optionally be rate limited.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pfrederiksen/event-ingest/internal/logger"
	"golang.org/x/time/rate"
)

const (
	UserAgent      = "event-ingest/1.0 (+github.com/pfrederiksen/event-ingest)"
	DefaultTimeout = 10 * time.Second
	MaxBodySize    = 10 << 20
)

// Error is returned for transport failures, timeouts and non-2xx responses
type Error struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the fetch was aborted by its deadline
func (e *Error) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// Fetcher retrieves documents over HTTP
type Fetcher struct {
	client  *http.Client
	timeout time.Duration

	// per-host limiters; nil map when rate limiting is disabled
	mu       sync.Mutex
	rps      float64
	limiters map[string]*rate.Limiter
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithTimeout sets the wall-clock limit for a single fetch
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithClient replaces the underlying HTTP client
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithHostRate limits requests to rps per host. Zero disables limiting.
func WithHostRate(rps float64) Option {
	return func(f *Fetcher) {
		if rps > 0 {
			f.rps = rps
			f.limiters = make(map[string]*rate.Limiter)
		}
	}
}

// New creates a new Fetcher instance
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Timeout returns the configured fetch timeout
func (f *Fetcher) Timeout() time.Duration {
	return f.timeout
}

func (f *Fetcher) limiter(host string) *rate.Limiter {
	if f.limiters == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(f.rps), 1)
		f.limiters[host] = l
	}
	return l
}

// Fetch retrieves the body of rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	start := time.Now()
	body, err := f.fetch(ctx, rawURL)
	logger.RecordTiming("fetch", time.Since(start))
	if err != nil {
		logger.IncrCounter("fetch.error")
		logger.Debug("Fetch failed", logger.Fields{"url": rawURL, "error": err.Error()})
		return nil, err
	}
	logger.IncrCounter("fetch.success")
	return body, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("parsing url: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if l := f.limiter(u.Host); l != nil {
		if err := l.Wait(ctx); err != nil {
			return nil, &Error{URL: rawURL, Err: fmt.Errorf("waiting for rate limiter: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return nil, &Error{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("reading body: %w", err)}
	}
	return body, nil
}
