// Package metrics collects and exposes the service's Prometheus metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/fastygo/taskboard/usecase/profile"
)

// Collector implements the recorders used by the provisioner, the task
// aggregator, the HTTP layer and the monitor.
type Collector struct {
	provisions   *prometheus.CounterVec
	schemaErrors prometheus.Counter
	aggregations *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  prometheus.Histogram
	probeUp      *prometheus.GaugeVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		provisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_profile_provisions_total",
			Help: "Profile provisioning attempts by outcome.",
		}, []string{"outcome"}),
		schemaErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_schema_errors_total",
			Help: "Profile inserts rejected because the directory schema does not match.",
		}),
		aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_task_aggregations_total",
			Help: "Task list aggregations by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_http_requests_total",
			Help: "HTTP responses by method and status code.",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskboard_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		probeUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "taskboard_dependency_up",
			Help: "Whether the last health probe of a dependency succeeded.",
		}, []string{"dependency"}),
	}

	reg.MustRegister(
		c.provisions,
		c.schemaErrors,
		c.aggregations,
		c.httpRequests,
		c.httpLatency,
		c.probeUp,
	)

	return c
}

func (c *Collector) RecordProvision(outcome string) {
	c.provisions.WithLabelValues(outcome).Inc()
	if outcome == profile.OutcomeSchema {
		c.schemaErrors.Inc()
	}
}

func (c *Collector) RecordAggregation(outcome string) {
	c.aggregations.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordHTTPRequest(method string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordProbe(dependency string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1
	}
	c.probeUp.WithLabelValues(dependency).Set(value)
}

// Handler serves the Prometheus scrape endpoint on fasthttp.
func Handler(gatherer prometheus.Gatherer) fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
