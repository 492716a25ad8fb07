// Package server exposes the ingestion pipeline and the event store over a
// JSON HTTP API.
//
// Routes:
//
//	POST   /api/parse            {"url": "..."} or {"urls": ["...", ...]}
//	GET    /api/events           list, filtered by query parameters
//	GET    /api/events/{id}      one event
//	DELETE /api/events/{id}
//	GET    /api/events/{id}.ics  one event as an iCalendar file
//	GET    /api/platforms
//	GET    /healthz
//	GET    /metrics              Prometheus exposition
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pfrederiksen/event-ingest/internal/config"
	"github.com/pfrederiksen/event-ingest/internal/event"
	"github.com/pfrederiksen/event-ingest/internal/logger"
	"github.com/pfrederiksen/event-ingest/internal/router"
	"github.com/pfrederiksen/event-ingest/internal/storage"
)

// MaxRequestBody caps the size of a parse request body
const MaxRequestBody = 1 << 20

// Router turns URLs into events
type Router interface {
	Route(ctx context.Context, rawURL string) (*event.Event, error)
	RouteBatch(ctx context.Context, urls []string) []router.Result
	SupportedPlatforms() []string
}

// Server is an http.Handler serving the API
type Server struct {
	router Router
	store  storage.Store
	mux    *mux.Router
	now    func() time.Time

	maxBatch int
}

// New builds the API around r and store
func New(r Router, store storage.Store) *Server {
	s := &Server{
		router: r,
		store:  store,
		mux:    mux.NewRouter(),
		now:    time.Now,

		maxBatch: config.DefaultMaxBatch,
	}
	s.routes()
	return s
}

// SetMaxBatch limits the number of URLs in one batch parse request. Values
// below one keep the current limit.
func (s *Server) SetMaxBatch(n int) *Server {
	if n > 0 {
		s.maxBatch = n
	}
	return s
}

func (s *Server) routes() {
	m := s.mux
	m.Use(logRequests)

	api := m.PathPrefix("/api").Subrouter()
	api.Handle("/parse", instrument("Parse", http.HandlerFunc(s.handleParse))).Methods(http.MethodPost)
	api.Handle("/platforms", instrument("Platforms", http.HandlerFunc(s.handlePlatforms))).Methods(http.MethodGet)
	api.Handle("/events", instrument("EventList", http.HandlerFunc(s.handleList))).Methods(http.MethodGet)
	// The calendar route must precede the plain id route, which would
	// otherwise capture the ".ics" suffix.
	api.Handle("/events/{id}.ics", instrument("EventCalendar", http.HandlerFunc(s.handleCalendar))).Methods(http.MethodGet)
	api.Handle("/events/{id}", instrument("EventGet", http.HandlerFunc(s.handleGet))).Methods(http.MethodGet)
	api.Handle("/events/{id}", instrument("EventDelete", http.HandlerFunc(s.handleDelete))).Methods(http.MethodDelete)

	m.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	}).Methods(http.MethodGet)
	m.Handle("/metrics", promhttp.HandlerFor(logger.DefaultMetrics().Registry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run serves on cfg.ListenAddress until ctx is cancelled, then shuts down
// gracefully
func (s *Server) Run(ctx context.Context, cfg config.Server) error {
	srv := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Server listening", logger.Fields{"addr": cfg.ListenAddress})
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("Server shutting down", nil)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// httpError is an error carrying the status to respond with
type httpError struct {
	Status  int
	Message string
}

func (e *httpError) Error() string {
	return e.Message
}

func badRequest(format string, args ...interface{}) error {
	return &httpError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleJSON runs f and writes its result as JSON. Errors become JSON error
// bodies with the status taken from an *httpError, or 500 otherwise.
func handleJSON(w http.ResponseWriter, r *http.Request, f func(context.Context) (interface{}, error)) {
	resp, err := f(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		msg := "internal server error"
		var he *httpError
		if errors.As(err, &he) {
			status = he.Status
			msg = he.Message
		}
		if status >= 500 {
			logger.Error("Handler failed", logger.Fields{"path": r.URL.Path}, err)
		} else {
			logger.Warn("Request rejected", logger.Fields{"path": r.URL.Path, "status": status, "error": msg})
		}
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	js, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		logger.Error("Write JSON failed", nil, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(js)
}
