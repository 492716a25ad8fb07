package logger

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks operational metrics including counters, gauges, and timings.
// All operations are thread-safe.
//
// Every update is also applied to a Prometheus registry owned by the Metrics
// value, using the metric name as the "name" label.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]float64
	timings  map[string]*timingStats

	registry  *prometheus.Registry
	promCount *prometheus.CounterVec
	promGauge *prometheus.GaugeVec
	promTime  *prometheus.HistogramVec
}

var defaultMetrics *Metrics

func init() {
	defaultMetrics = NewMetrics()
}

// NewMetrics creates a new metrics tracker with empty counters, gauges, and timings.
func NewMetrics() *Metrics {
	m := &Metrics{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timings:  make(map[string]*timingStats),
		registry: prometheus.NewRegistry(),
		promCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_ingest_events_total",
			Help: "Count of pipeline events by name.",
		}, []string{"name"}),
		promGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "event_ingest_gauge",
			Help: "Point-in-time values by name.",
		}, []string{"name"}),
		promTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "event_ingest_duration_seconds",
			Help:    "Durations of pipeline stages by name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"name"}),
	}
	m.registry.MustRegister(m.promCount, m.promGauge, m.promTime)
	return m
}

// Registry returns the Prometheus registry backing m
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncrCounter increments a counter by 1. If the counter doesn't exist, it is initialized to 1.
func (m *Metrics) IncrCounter(name string) {
	m.mu.Lock()
	m.counters[name]++
	m.mu.Unlock()
	m.promCount.WithLabelValues(name).Inc()
}

// SetGauge sets a gauge to the specified value, overwriting any previous value.
func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	m.gauges[name] = value
	m.mu.Unlock()
	m.promGauge.WithLabelValues(name).Set(value)
}

// timingStats is the running summary of one timing name. Memory stays
// constant no matter how many samples are recorded.
type timingStats struct {
	count int
	total time.Duration
	min   time.Duration
	max   time.Duration
}

func (s *timingStats) add(d time.Duration) {
	if s.count == 0 || d < s.min {
		s.min = d
	}
	if s.count == 0 || d > s.max {
		s.max = d
	}
	s.count++
	s.total += d
}

// RecordTiming records a duration measurement into the running count, total,
// min and max for name.
func (m *Metrics) RecordTiming(name string, duration time.Duration) {
	m.mu.Lock()
	stats, ok := m.timings[name]
	if !ok {
		stats = &timingStats{}
		m.timings[name] = stats
	}
	stats.add(duration)
	m.mu.Unlock()
	m.promTime.WithLabelValues(name).Observe(duration.Seconds())
}

// WriteTextfile writes the registry in the Prometheus text exposition format
// to path, for pickup by the node exporter textfile collector. The file name
// must end in ".prom".
func (m *Metrics) WriteTextfile(path string) error {
	if !strings.HasSuffix(path, ".prom") {
		path += ".prom"
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

// GetSnapshot returns a snapshot of all metrics as a map containing:
//   - "counters": map of counter names to values
//   - "gauges": map of gauge names to values
//   - "timings": map of timing names to statistics (count, total, average, min, max)
//
// The snapshot is a deep copy, safe to use concurrently with metric updates.
func (m *Metrics) GetSnapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[string]interface{})

	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}
	snapshot["counters"] = counters

	gauges := make(map[string]float64, len(m.gauges))
	for k, v := range m.gauges {
		gauges[k] = v
	}
	snapshot["gauges"] = gauges

	timings := make(map[string]map[string]interface{})
	for name, stats := range m.timings {
		if stats.count == 0 {
			continue
		}
		timings[name] = map[string]interface{}{
			"count":   stats.count,
			"total":   stats.total.String(),
			"average": (stats.total / time.Duration(stats.count)).String(),
			"min":     stats.min.String(),
			"max":     stats.max.String(),
		}
	}
	snapshot["timings"] = timings

	return snapshot
}

// Package-level metrics functions using the default metrics tracker

// IncrCounter increments a counter on the default metrics tracker.
func IncrCounter(name string) {
	defaultMetrics.IncrCounter(name)
}

// SetGauge sets a gauge on the default metrics tracker.
func SetGauge(name string, value float64) {
	defaultMetrics.SetGauge(name, value)
}

// RecordTiming records a timing on the default metrics tracker.
func RecordTiming(name string, duration time.Duration) {
	defaultMetrics.RecordTiming(name, duration)
}

// GetMetricsSnapshot returns a snapshot of all metrics from the default tracker.
func GetMetricsSnapshot() map[string]interface{} {
	return defaultMetrics.GetSnapshot()
}

// DefaultMetrics returns the package-level metrics tracker
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
