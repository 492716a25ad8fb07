package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/pfrederiksen/event-ingest/internal/calendar"
	"github.com/pfrederiksen/event-ingest/internal/event"
	"github.com/pfrederiksen/event-ingest/internal/filter"
	"github.com/pfrederiksen/event-ingest/internal/logger"
	"github.com/pfrederiksen/event-ingest/internal/parser"
	"github.com/pfrederiksen/event-ingest/internal/router"
	"github.com/pfrederiksen/event-ingest/internal/storage"
)

// ParseRequest is the body of POST /api/parse. Exactly one of URL and URLs
// must be set.
type ParseRequest struct {
	URL  string   `json:"url,omitempty"`
	URLs []string `json:"urls,omitempty"`
}

// BatchResponse is returned for a multi-URL parse request
type BatchResponse struct {
	Results   []router.Result `json:"results"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
}

// ListResponse is returned by GET /api/events
type ListResponse struct {
	Events     []*event.Event `json:"events"`
	Count      int            `json:"count"`
	Filter     string         `json:"filter"`
	Cities     []string       `json:"cities"`
	Categories []string       `json:"categories"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	switch {
	case req.URL != "" && len(req.URLs) > 0:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "set either url or urls, not both"})
	case req.URL != "":
		s.parseOne(w, r, req.URL)
	case len(req.URLs) > 0:
		s.parseBatch(w, r, req.URLs)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url or urls is required"})
	}
}

func (s *Server) parseOne(w http.ResponseWriter, r *http.Request, rawURL string) {
	evt, err := s.router.Route(r.Context(), rawURL)
	res := router.NewResult(rawURL, evt, err)
	if err != nil {
		writeJSON(w, statusFor(err), res)
		return
	}
	if err := s.save(evt); err != nil {
		logger.Error("Failed to save event", logger.Fields{"id": evt.ID}, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to save event"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) parseBatch(w http.ResponseWriter, r *http.Request, urls []string) {
	if len(urls) > s.maxBatch {
		logger.IncrCounter("server.batch.rejected")
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("too many urls: %d (max %d)", len(urls), s.maxBatch),
		})
		return
	}

	results := s.router.RouteBatch(r.Context(), urls)

	resp := BatchResponse{Results: results}
	for _, res := range results {
		if !res.Success {
			resp.Failed++
			continue
		}
		resp.Succeeded++
		if err := s.save(res.Event); err != nil {
			logger.Error("Failed to save event", logger.Fields{"id": res.Event.ID, "url": res.URL}, err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) save(evt *event.Event) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Put(evt); err != nil {
		logger.IncrCounter("server.save.error")
		return err
	}
	logger.IncrCounter("server.save.success")
	return nil
}

// statusFor maps a routing failure to a response status
func statusFor(err error) int {
	kind, ok := parser.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case parser.KindMalformed, parser.KindRouting:
		return http.StatusBadRequest
	case parser.KindFetch:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return map[string][]string{"platforms": s.router.SupportedPlatforms()}, nil
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		f, err := filterFromQuery(r, s.now())
		if err != nil {
			return nil, err
		}

		all, err := s.list()
		if err != nil {
			return nil, err
		}
		events := f.Apply(all)

		return ListResponse{
			Events:     events,
			Count:      len(events),
			Filter:     f.String(),
			Cities:     filter.Cities(all),
			Categories: filter.Categories(all),
		}, nil
	})
}

func (s *Server) list() ([]*event.Event, error) {
	if s.store == nil {
		return []*event.Event{}, nil
	}
	return s.store.List()
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		return s.get(mux.Vars(r)["id"])
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, func(ctx context.Context) (interface{}, error) {
		id := mux.Vars(r)["id"]
		if s.store == nil {
			return nil, &httpError{Status: http.StatusNotFound, Message: "event not found"}
		}
		if err := s.store.Delete(id); err != nil {
			return nil, storeError(err)
		}
		logger.Info("Deleted event", logger.Fields{"id": id})
		return map[string]string{"deleted": id}, nil
	})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	evt, err := s.get(mux.Vars(r)["id"])
	if err != nil {
		var he *httpError
		if errors.As(err, &he) {
			writeJSON(w, he.Status, errorResponse{Error: he.Message})
			return
		}
		logger.Error("Calendar export failed", logger.Fields{"path": r.URL.Path}, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", evt.ID+".ics"))
	w.Write([]byte(calendar.GenerateICS(evt)))
}

func (s *Server) get(id string) (*event.Event, error) {
	if s.store == nil {
		return nil, &httpError{Status: http.StatusNotFound, Message: "event not found"}
	}
	evt, err := s.store.Get(id)
	if err != nil {
		return nil, storeError(err)
	}
	return evt, nil
}

func storeError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &httpError{Status: http.StatusNotFound, Message: "event not found"}
	}
	return err
}

// filterFromQuery reads list criteria from the query string:
// q, from, to, range, location, city, category, free, platform and sort.
// from and to take YYYY-MM-DD or RFC 3339; range takes the forms accepted by
// filter.ParseDateRange and overrides from and to.
func filterFromQuery(r *http.Request, now time.Time) (*filter.Filter, error) {
	q := r.URL.Query()
	f := &filter.Filter{
		Query:    strings.TrimSpace(q.Get("q")),
		City:     strings.TrimSpace(q.Get("city")),
		Category: strings.TrimSpace(q.Get("category")),
	}

	if v := q.Get("from"); v != "" {
		t, err := parseQueryTime(v, false)
		if err != nil {
			return nil, badRequest("invalid from: %s", v)
		}
		f.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseQueryTime(v, true)
		if err != nil {
			return nil, badRequest("invalid to: %s", v)
		}
		f.To = &t
	}
	if v := q.Get("range"); v != "" {
		from, to, err := filter.ParseDateRange(v, now)
		if err != nil {
			return nil, badRequest("%v", err)
		}
		f.From, f.To = from, to
	}

	if v := q.Get("location"); v != "" {
		lt := event.LocationType(strings.ToLower(v))
		switch lt {
		case event.LocationPhysical, event.LocationVirtual, event.LocationHybrid:
			f.LocationType = lt
		default:
			return nil, badRequest("invalid location: %s", v)
		}
	}
	if v := q.Get("platform"); v != "" {
		f.Platform = event.Platform(strings.ToLower(v))
	}
	if v := q.Get("free"); v != "" {
		free, err := strconv.ParseBool(v)
		if err != nil {
			return nil, badRequest("invalid free: %s", v)
		}
		f.FreeOnly = free
	}
	if v := q.Get("sort"); v != "" {
		order, err := filter.ParseSortOrder(v)
		if err != nil {
			return nil, badRequest("%v", err)
		}
		f.Sort = order
	}

	return f, nil
}

func parseQueryTime(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}
