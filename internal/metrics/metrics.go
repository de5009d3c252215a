// Package metrics exposes Prometheus collectors for commits, reservations
// and live occupancy.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	commitTotal       *prometheus.CounterVec
	commitDuration    prometheus.Histogram
	allocationTotal   *prometheus.CounterVec
	checkInTotal      *prometheus.CounterVec
	mutationRetries   prometheus.Counter
	alertingRooms     prometheus.Gauge
	streamSubscribers prometheus.Gauge
}

// New registers every collector on a fresh registry, along with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		commitTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workspace_commit_total",
			Help: "Floor plan commits by outcome (committed, stale, error)",
		}, []string{"outcome"}),
		commitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "workspace_commit_duration_seconds",
			Help:    "Floor plan commit latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		allocationTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workspace_allocation_total",
			Help: "Meeting reservation attempts by mode and outcome",
		}, []string{"mode", "outcome"}),
		checkInTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workspace_checkin_total",
			Help: "Desk check-ins and check-outs by action",
		}, []string{"action"}),
		mutationRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "workspace_mutation_retries_total",
			Help: "Read-modify-write attempts repeated after losing a commit race",
		}),
		alertingRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "workspace_alerting_rooms",
			Help: "Rooms at or above their occupancy threshold in the last committed plan",
		}),
		streamSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "workspace_stream_subscribers",
			Help: "Open floor plan stream connections",
		}),
	}
}

// ObserveCommit records a store commit outcome.
func (m *Metrics) ObserveCommit(outcome string, elapsed time.Duration) {
	m.commitTotal.WithLabelValues(outcome).Inc()
	m.commitDuration.Observe(elapsed.Seconds())
}

// ObserveAllocation records a reservation attempt.
func (m *Metrics) ObserveAllocation(mode, outcome string) {
	m.allocationTotal.WithLabelValues(mode, outcome).Inc()
}

// ObserveCheckIn records a check-in or check-out.
func (m *Metrics) ObserveCheckIn(action string) {
	m.checkInTotal.WithLabelValues(action).Inc()
}

// ObserveRetry records a repeated read-modify-write attempt.
func (m *Metrics) ObserveRetry() {
	m.mutationRetries.Inc()
}

// SetAlertingRooms publishes the number of alerting rooms.
func (m *Metrics) SetAlertingRooms(n int) {
	m.alertingRooms.Set(float64(n))
}

// StreamOpened and StreamClosed track live stream connections.
func (m *Metrics) StreamOpened() { m.streamSubscribers.Inc() }
func (m *Metrics) StreamClosed() { m.streamSubscribers.Dec() }

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
