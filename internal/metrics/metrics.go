// Package metrics registers the dashboard's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collectors struct {
	BackendRequests *prometheus.CounterVec
	BackendLatency  *prometheus.HistogramVec
	Mutations       *prometheus.CounterVec
	StalePanes      prometheus.Counter
	DependencyUp    *prometheus.GaugeVec
	registry        *prometheus.Registry
}

// New builds collectors on a private registry so tests can create as many
// as they like.
func New() *Collectors {
	c := &Collectors{
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tmhna",
			Name:      "backend_requests_total",
			Help:      "Backend round trips by resource and outcome.",
		}, []string{"resource", "outcome"}),
		BackendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tmhna",
			Name:      "backend_request_seconds",
			Help:      "Backend round-trip latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tmhna",
			Name:      "mutations_total",
			Help:      "Mutation actions by action and outcome.",
		}, []string{"action", "outcome"}),
		StalePanes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tmhna",
			Name:      "stale_pane_results_total",
			Help:      "Pane loads discarded because a newer load superseded them.",
		}),
		DependencyUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tmhna",
			Name:      "dependency_up",
			Help:      "1 when the last heartbeat probe of a dependency succeeded.",
		}, []string{"dependency"}),
		registry: prometheus.NewRegistry(),
	}
	c.registry.MustRegister(c.BackendRequests, c.BackendLatency, c.Mutations, c.StalePanes, c.DependencyUp)
	return c
}

// ObserveBackend records one backend round trip.
func (c *Collectors) ObserveBackend(resource string, started time.Time, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.BackendRequests.WithLabelValues(resource, outcome).Inc()
	c.BackendLatency.WithLabelValues(resource).Observe(time.Since(started).Seconds())
}

func (c *Collectors) ObserveMutation(action string, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.Mutations.WithLabelValues(action, outcome).Inc()
}

func (c *Collectors) ObserveStale() {
	if c == nil {
		return
	}
	c.StalePanes.Inc()
}

// SetUp records a heartbeat probe result.
func (c *Collectors) SetUp(dependency string, up bool) {
	if c == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	c.DependencyUp.WithLabelValues(dependency).Set(v)
}

// Handler exposes the registry for scraping.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
