// Package metrics exposes Prometheus instrumentation for the timeline server.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "timeboard"

// Mutation ops.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Metrics owns its own registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	mutations *prometheus.CounterVec
	misses    *prometheus.CounterVec
	images    *prometheus.CounterVec
	intakeDur prometheus.Histogram
	sessions  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_mutations_total",
		Help:      "Committed event mutations by operation",
	}, []string{"op"})
	m.misses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_lookup_misses_total",
		Help:      "Updates and deletes that targeted an unknown event",
	}, []string{"op"})
	m.images = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_processed_total",
		Help:      "Image files run through intake by result and output type",
	}, []string{"result", "format"})
	m.intakeDur = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_intake_duration_seconds",
		Help:      "Time spent decoding and re-encoding one image file",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	})
	m.sessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_live",
		Help:      "Workspaces currently held in memory",
	})

	m.registry.MustRegister(
		m.mutations, m.misses, m.images, m.intakeDur, m.sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// EventMutated counts a committed create, update or delete.
func (m *Metrics) EventMutated(op string) {
	m.mutations.WithLabelValues(op).Inc()
}

// LookupMissed counts an update or delete on an unknown id.
func (m *Metrics) LookupMissed(op string) {
	m.misses.WithLabelValues(op).Inc()
}

// ImageProcessed records one intake result.
func (m *Metrics) ImageProcessed(mime string, elapsed time.Duration, err error) {
	m.intakeDur.Observe(elapsed.Seconds())
	if err != nil {
		m.images.WithLabelValues("failed", "none").Inc()
		return
	}
	m.images.WithLabelValues("ok", strings.TrimPrefix(mime, "image/")).Inc()
}

// SetSessions reports the number of live workspaces.
func (m *Metrics) SetSessions(n int) {
	m.sessions.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
