// Package metrics defines the runtime's Prometheus instrumentation:
// per-worker queue depth, dispatch counts, timer fires, and service
// lifecycle counters.
//
// Grounded on the teacher's observability/prometheus package
// (pkg/observability/prometheus/metrics.go), which wraps promauto
// constructors behind a single Metrics struct; generalized here from
// HTTP/EventBus/database-pool metrics to the actor runtime's own
// concerns (workers, services, timers, admin commands).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector the runtime registers.
type Metrics struct {
	registry *prometheus.Registry

	MailboxDepth   *prometheus.GaugeVec
	DispatchTotal  *prometheus.CounterVec
	DeadLetterTotal *prometheus.CounterVec
	TimerFiresTotal *prometheus.CounterVec
	ServiceCount   *prometheus.GaugeVec
	ServiceAddTotal *prometheus.CounterVec
	ServiceRemoveTotal *prometheus.CounterVec
	AdminCommandTotal *prometheus.CounterVec
	TickDuration   prometheus.Histogram
}

// New creates a fresh registry and registers every collector against
// it, so tests and multiple in-process supervisors never collide on
// the default global registry the teacher's package used.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	wrapped := prometheus.WrapRegistererWith(prometheus.Labels{"runtime": "actorrt"}, reg)

	return &Metrics{
		registry: reg,
		MailboxDepth: promauto.With(wrapped).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "actorrt_worker_mailbox_depth",
				Help: "Current mailbox backlog length per worker.",
			},
			[]string{"worker"},
		),
		DispatchTotal: promauto.With(wrapped).NewCounterVec(
			prometheus.CounterOpts{
				Name: "actorrt_dispatch_total",
				Help: "Total envelopes dispatched to a service.",
			},
			[]string{"worker"},
		),
		DeadLetterTotal: promauto.With(wrapped).NewCounterVec(
			prometheus.CounterOpts{
				Name: "actorrt_dead_letter_total",
				Help: "Total envelopes dead-lettered (no live receiver).",
			},
			[]string{"worker"},
		),
		TimerFiresTotal: promauto.With(wrapped).NewCounterVec(
			prometheus.CounterOpts{
				Name: "actorrt_timer_fires_total",
				Help: "Total timer firings delivered to services.",
			},
			[]string{"worker"},
		),
		ServiceCount: promauto.With(wrapped).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "actorrt_service_count",
				Help: "Current number of live services per worker.",
			},
			[]string{"worker"},
		),
		ServiceAddTotal: promauto.With(wrapped).NewCounterVec(
			prometheus.CounterOpts{
				Name: "actorrt_service_add_total",
				Help: "Total add_service calls, by outcome.",
			},
			[]string{"outcome"},
		),
		ServiceRemoveTotal: promauto.With(wrapped).NewCounterVec(
			prometheus.CounterOpts{
				Name: "actorrt_service_remove_total",
				Help: "Total remove_service calls, by outcome.",
			},
			[]string{"outcome"},
		),
		AdminCommandTotal: promauto.With(wrapped).NewCounterVec(
			prometheus.CounterOpts{
				Name: "actorrt_admin_command_total",
				Help: "Total runcmd admin invocations, by verb and outcome.",
			},
			[]string{"verb", "outcome"},
		),
		TickDuration: promauto.With(wrapped).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "actorrt_tick_duration_seconds",
				Help:    "Wall-clock duration of one supervisor tick's update fan-out.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
	}
}

// Handler returns the net/http handler the cmd layer mounts behind
// fasthttpadaptor for the /metrics debug endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
