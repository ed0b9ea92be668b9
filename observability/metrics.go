package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics for the service on its own registry.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	InvitationsGenerated *prometheus.CounterVec
	DispatchRecipients   *prometheus.CounterVec
	Distributions        *prometheus.CounterVec

	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
}

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
		InvitationsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_generated_total",
			Help:      "Invitations generated, by content source",
		}, []string{"source"}),
		DispatchRecipients: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_recipients_total",
			Help:      "Recipients attempted, by method and outcome",
		}, []string{"method", "outcome"}),
		Distributions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "distributions_total",
			Help:      "Distribution records written, by method and status",
		}, []string{"method", "status"}),
		StoreOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Store operations, by operation and result",
		}, []string{"operation", "status"}),
		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.InvitationsGenerated,
		c.DispatchRecipients,
		c.Distributions,
		c.StoreOperations,
		c.StoreDuration,
	)
	return c
}

// Registry returns the registry the collector's metrics live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) InvitationGenerated(source string) {
	c.InvitationsGenerated.WithLabelValues(source).Inc()
}

// DispatchRecorded counts one dispatch and its per-recipient outcomes.
func (c *Collector) DispatchRecorded(method, status string, sent, failed int) {
	c.Distributions.WithLabelValues(method, status).Inc()
	c.DispatchRecipients.WithLabelValues(method, "sent").Add(float64(sent))
	c.DispatchRecipients.WithLabelValues(method, "failed").Add(float64(failed))
}

func (c *Collector) observeStore(op string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.StoreOperations.WithLabelValues(op, status).Inc()
	c.StoreDuration.WithLabelValues(op).Observe(d.Seconds())
}
