package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors. Each instance owns its
// registry so several clients can live in one process. All record methods
// are safe on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Cache metrics
	CacheLookups   *prometheus.CounterVec
	CacheEvictions prometheus.Counter
	CacheEntries   prometheus.Gauge

	// Transport metrics
	TransportRequests *prometheus.CounterVec
	TransportDuration *prometheus.HistogramVec
	TransportErrors   *prometheus.CounterVec
	ResponseSize      prometheus.Histogram
	SpilledResponses  prometheus.Counter

	// Navigation metrics
	Loads            *prometheus.CounterVec
	RedirectsTotal   *prometheus.CounterVec
	FramesDenied     prometheus.Counter
	WindowsOpen      prometheus.Gauge
	DownloadsQueued  prometheus.Gauge
	DownloadsApplied *prometheus.CounterVec

	// Control surface metrics
	ControlRequests *prometheus.CounterVec
	ControlDuration *prometheus.HistogramVec

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current values for the JSON control API
type Snapshot struct {
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	Requests      int64 `json:"requests"`
	Errors        int64 `json:"errors"`
	Redirects     int64 `json:"redirects"`
	Loads         int64 `json:"loads"`
	TotalDuration float64
}

// NewMetrics creates a new metrics collector on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webcore_cache_lookups_total",
				Help: "Response cache lookups by result",
			},
			[]string{"kind", "result"},
		),
		CacheEvictions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "webcore_cache_evictions_total",
				Help: "Entries removed from the response cache",
			},
		),
		CacheEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "webcore_cache_entries",
				Help: "Entries currently held by the response cache",
			},
		),

		TransportRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webcore_transport_requests_total",
				Help: "HTTP exchanges executed by the transport",
			},
			[]string{"method", "status"},
		),
		TransportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webcore_transport_duration_seconds",
				Help:    "HTTP exchange duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),
		TransportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webcore_transport_errors_total",
				Help: "Transport failures by kind",
			},
			[]string{"kind"},
		),
		ResponseSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "webcore_response_size_bytes",
				Help:    "Downloaded response body size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
		),
		SpilledResponses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "webcore_spilled_responses_total",
				Help: "Responses whose body was spilled to a temporary file",
			},
		),

		Loads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webcore_loads_total",
				Help: "Logical loads by scheme and outcome",
			},
			[]string{"scheme", "outcome"},
		),
		RedirectsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webcore_redirects_total",
				Help: "Redirect hops followed by status code",
			},
			[]string{"status"},
		),
		FramesDenied: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "webcore_frames_denied_total",
				Help: "Frame loads replaced by an empty page",
			},
		),
		WindowsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "webcore_windows_open",
				Help: "Registered windows, frames included",
			},
		),
		DownloadsQueued: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "webcore_downloads_queued",
				Help: "Background downloads waiting to be applied",
			},
		),
		DownloadsApplied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webcore_downloads_applied_total",
				Help: "Queued downloads flushed into windows, by outcome",
			},
			[]string{"outcome"},
		),

		ControlRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webcore_control_requests_total",
				Help: "Control API requests",
			},
			[]string{"method", "path", "status"},
		),
		ControlDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webcore_control_duration_seconds",
				Help:    "Control API request duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30},
			},
			[]string{"method", "path"},
		),
	}

	return m
}

// Registry returns the registry holding this instance's collectors
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordCacheLookup records a cache lookup; kind is "response" or "artifact",
// result is "hit", "miss" or "stale"
func (m *Metrics) RecordCacheLookup(kind, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(kind, result).Inc()

	m.mu.Lock()
	if result == "hit" {
		m.snapshot.CacheHits++
	} else {
		m.snapshot.CacheMisses++
	}
	m.mu.Unlock()
}

// RecordCacheEviction records one removed entry
func (m *Metrics) RecordCacheEviction() {
	if m == nil {
		return
	}
	m.CacheEvictions.Inc()
}

// SetCacheEntries sets the cache size gauge
func (m *Metrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(n))
}

// RecordExchange records one completed HTTP exchange
func (m *Metrics) RecordExchange(method string, status int, duration time.Duration, size int64, spilled bool) {
	if m == nil {
		return
	}
	m.TransportRequests.WithLabelValues(method, statusClass(status)).Inc()
	m.TransportDuration.WithLabelValues(method).Observe(duration.Seconds())
	m.ResponseSize.Observe(float64(size))
	if spilled {
		m.SpilledResponses.Inc()
	}

	m.mu.Lock()
	m.snapshot.Requests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.mu.Unlock()
}

// RecordTransportError records a failed exchange
func (m *Metrics) RecordTransportError(kind string) {
	if m == nil {
		return
	}
	m.TransportErrors.WithLabelValues(kind).Inc()

	m.mu.Lock()
	m.snapshot.Errors++
	m.mu.Unlock()
}

// RecordRedirect records one followed redirect hop
func (m *Metrics) RecordRedirect(status int) {
	if m == nil {
		return
	}
	m.RedirectsTotal.WithLabelValues(strconv.Itoa(status)).Inc()

	m.mu.Lock()
	m.snapshot.Redirects++
	m.mu.Unlock()
}

// RecordLoad records a finished logical load
func (m *Metrics) RecordLoad(scheme, outcome string) {
	if m == nil {
		return
	}
	m.Loads.WithLabelValues(scheme, outcome).Inc()

	m.mu.Lock()
	m.snapshot.Loads++
	m.mu.Unlock()
}

// RecordFrameDenied records a frame whose content was refused
func (m *Metrics) RecordFrameDenied() {
	if m == nil {
		return
	}
	m.FramesDenied.Inc()
}

// SetWindowsOpen sets the open windows gauge
func (m *Metrics) SetWindowsOpen(n int) {
	if m == nil {
		return
	}
	m.WindowsOpen.Set(float64(n))
}

// SetDownloadsQueued sets the queued downloads gauge
func (m *Metrics) SetDownloadsQueued(n int) {
	if m == nil {
		return
	}
	m.DownloadsQueued.Set(float64(n))
}

// RecordDownloadApplied records a flushed download; outcome is "applied",
// "stale" or "failed"
func (m *Metrics) RecordDownloadApplied(outcome string) {
	if m == nil {
		return
	}
	m.DownloadsApplied.WithLabelValues(outcome).Inc()
}

// RecordControlRequest records a control API request
func (m *Metrics) RecordControlRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ControlRequests.WithLabelValues(method, path, status).Inc()
	m.ControlDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Snapshot returns a copy of the running totals
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

func statusClass(status int) string {
	switch {
	case status == 0:
		return "none"
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
