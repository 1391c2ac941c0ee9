package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application.
// Each collector owns its registry so tests can create as many as they need.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	DBOperations *prometheus.CounterVec
	DBDuration   *prometheus.HistogramVec

	AuthzDecisions *prometheus.CounterVec

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	EventsPublished *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DBOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_operations_total",
			Help:      "Total number of repository operations",
		}, []string{"repository", "operation", "status"}),
		DBDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Repository operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"repository", "operation"}),
		AuthzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_decisions_total",
			Help:      "Authorization decisions by capability and outcome",
		}, []string{"capability", "outcome"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capability_cache_hits_total",
			Help:      "Total number of capability cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capability_cache_misses_total",
			Help:      "Total number of capability cache misses",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events sent to the event bus",
		}, []string{"event_type", "status"}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.DBOperations,
		c.DBDuration,
		c.AuthzDecisions,
		c.CacheHits,
		c.CacheMisses,
		c.EventsPublished,
	)
	return c
}

// Registry exposes the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordDBOperation records one repository call. A nil collector is a no-op.
func (c *Collector) RecordDBOperation(repository, operation string, started time.Time, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.DBOperations.WithLabelValues(repository, operation, status).Inc()
	c.DBDuration.WithLabelValues(repository, operation).Observe(time.Since(started).Seconds())
}

// RecordAuthorization counts a grant or deny decision
func (c *Collector) RecordAuthorization(capability string, granted bool) {
	if c == nil {
		return
	}
	outcome := "deny"
	if granted {
		outcome = "grant"
	}
	c.AuthzDecisions.WithLabelValues(capability, outcome).Inc()
}

// RecordCache counts a capability cache lookup
func (c *Collector) RecordCache(hit bool) {
	if c == nil {
		return
	}
	if hit {
		c.CacheHits.Inc()
	} else {
		c.CacheMisses.Inc()
	}
}

// RecordEvent counts a publish attempt
func (c *Collector) RecordEvent(eventType string, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.EventsPublished.WithLabelValues(eventType, status).Inc()
}

// RecordHTTP records one served request
func (c *Collector) RecordHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
