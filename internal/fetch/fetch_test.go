package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		wantError  bool
		wantStatus int
	}{
		{
			name:       "successful fetch",
			body:       "<html><body><h1>Go Night</h1></body></html>",
			statusCode: http.StatusOK,
		},
		{
			name:       "2xx other than 200",
			body:       "<html></html>",
			statusCode: http.StatusNonAuthoritativeInfo,
		},
		{
			name:       "HTTP error",
			statusCode: http.StatusNotFound,
			wantError:  true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "server error",
			statusCode: http.StatusBadGateway,
			wantError:  true,
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "event-ingest") {
					t.Errorf("User-Agent = %q, should contain 'event-ingest'", ua)
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			body, err := New().Fetch(context.Background(), server.URL)

			if tt.wantError {
				var fetchErr *Error
				if !errors.As(err, &fetchErr) {
					t.Fatalf("Fetch() error = %v, want *fetch.Error", err)
				}
				if fetchErr.StatusCode != tt.wantStatus {
					t.Errorf("StatusCode = %d, want %d", fetchErr.StatusCode, tt.wantStatus)
				}
				if fetchErr.URL != server.URL {
					t.Errorf("URL = %q, want %q", fetchErr.URL, server.URL)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if string(body) != tt.body {
				t.Errorf("Fetch() body = %q, want %q", body, tt.body)
			}
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	f := New(WithTimeout(50 * time.Millisecond))

	start := time.Now()
	_, err := f.Fetch(context.Background(), server.URL)
	elapsed := time.Since(start)

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Fetch() error = %v, want *fetch.Error", err)
	}
	if !fetchErr.Timeout() {
		t.Errorf("expected timeout error, got %v", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Fetch() took %v, expected to abort near the timeout", elapsed)
	}
}

func TestFetch_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	u := server.URL
	server.Close()

	_, err := New().Fetch(context.Background(), u)

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Fetch() error = %v, want *fetch.Error", err)
	}
	if fetchErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport failure", fetchErr.StatusCode)
	}
}

func TestFetch_HostRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := New(WithHostRate(20))

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
	}
	// burst of 1 at 20 rps: the 2nd and 3rd requests wait ~50ms each
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 rate limited fetches took %v, expected at least ~100ms", elapsed)
	}
}

func TestNew_Defaults(t *testing.T) {
	if got := New().Timeout(); got != DefaultTimeout {
		t.Errorf("default timeout = %v, want %v", got, DefaultTimeout)
	}
	if got := New(WithTimeout(0)).Timeout(); got != DefaultTimeout {
		t.Errorf("zero timeout should keep default, got %v", got)
	}
}
