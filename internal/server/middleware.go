package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pfrederiksen/event-ingest/internal/logger"
)

var (
	httpMetricsOnce sync.Once

	httpInFlight  *prometheus.GaugeVec
	httpRequests  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
	httpSizes     *prometheus.HistogramVec
)

// registerHTTPMetrics adds the request collectors to the default metrics
// registry once per process
func registerHTTPMetrics() {
	httpMetricsOnce.Do(func() {
		httpInFlight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "event_ingest_requests_in_flight",
			Help: "Number of requests currently being served by the handler.",
		}, []string{"handler"})
		httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_ingest_requests_total",
			Help: "Total number of requests for the handler.",
		}, []string{"handler", "code", "method"})
		httpDurations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "event_ingest_response_duration_seconds",
			Help:    "A histogram of request latencies.",
			Buckets: prometheus.DefBuckets,
		}, []string{"handler", "method"})
		httpSizes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "event_ingest_response_size_bytes",
			Help:    "A histogram of response sizes.",
			Buckets: []float64{200, 500, 900, 1500, 5000, 20000},
		}, []string{"handler"})

		logger.DefaultMetrics().Registry().MustRegister(httpInFlight, httpRequests, httpDurations, httpSizes)
	})
}

// instrument decorates handler with Prometheus request metrics labelled by
// name
func instrument(name string, handler http.Handler) http.Handler {
	registerHTTPMetrics()
	labels := prometheus.Labels{"handler": name}

	handler = promhttp.InstrumentHandlerInFlight(httpInFlight.With(labels), handler)
	handler = promhttp.InstrumentHandlerCounter(httpRequests.MustCurryWith(labels), handler)
	handler = promhttp.InstrumentHandlerDuration(httpDurations.MustCurryWith(labels), handler)
	handler = promhttp.InstrumentHandlerResponseSize(httpSizes.MustCurryWith(labels), handler)
	return handler
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs one line per request
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := logger.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}
		if rec.status >= 500 {
			logger.Warn("HTTP request failed", fields)
		} else {
			logger.Debug("HTTP request", fields)
		}
	})
}
