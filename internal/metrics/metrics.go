// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector is the surface used by middleware, services and the notification hub.
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordTicketCreated()
	RecordTicketTransition(status string)
	RecordPublished(event string)
	RecordDropped(event string)
	SetListeners(n int)
}

// Collector is the Prometheus implementation of MetricsCollector.
type Collector struct {
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
	ticketsCreated    prometheus.Counter
	ticketTransitions *prometheus.CounterVec
	notifyPublished   *prometheus.CounterVec
	notifyDropped     *prometheus.CounterVec
	streamListeners   prometheus.Gauge
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ssy_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ssy_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		ticketsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ssy_tickets_created_total",
			Help: "Tickets filed by residents",
		}),
		ticketTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ssy_ticket_transitions_total",
			Help: "Ticket status changes by target status",
		}, []string{"status"}),
		notifyPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ssy_notifications_published_total",
			Help: "Notifications fanned out to stream listeners",
		}, []string{"event"}),
		notifyDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ssy_notifications_dropped_total",
			Help: "Notifications dropped because a listener buffer was full",
		}, []string{"event"}),
		streamListeners: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ssy_stream_listeners",
			Help: "Connected real-time stream listeners",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.ticketsCreated,
		c.ticketTransitions,
		c.notifyPublished,
		c.notifyDropped,
		c.streamListeners,
	)

	return c
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}

func (c *Collector) RecordTicketCreated() {
	c.ticketsCreated.Inc()
}

func (c *Collector) RecordTicketTransition(status string) {
	c.ticketTransitions.WithLabelValues(status).Inc()
}

func (c *Collector) RecordPublished(event string) {
	c.notifyPublished.WithLabelValues(event).Inc()
}

func (c *Collector) RecordDropped(event string) {
	c.notifyDropped.WithLabelValues(event).Inc()
}

func (c *Collector) SetListeners(n int) {
	c.streamListeners.Set(float64(n))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used where metrics are not wired, mostly tests.
type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordTicketCreated()                                 {}
func (Nop) RecordTicketTransition(string)                        {}
func (Nop) RecordPublished(string)                               {}
func (Nop) RecordDropped(string)                                 {}
func (Nop) SetListeners(int)                                     {}
