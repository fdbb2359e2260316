package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Canvas metrics
	CardsPlaced       *prometheus.CounterVec
	CardsMoved        prometheus.Counter
	CardsRemoved      prometheus.Counter
	Connections       *prometheus.CounterVec
	CanvasesCreated   prometheus.Counter
	CanvasesRemoved   prometheus.Counter
	CanvasesRestored  prometheus.Counter
	ConnectModeChange prometheus.Counter

	// Remote collaborator metrics
	CollaboratorCalls    *prometheus.CounterVec
	CollaboratorDuration *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector with the given namespace.
// Each collector owns its registry, so tests can create as many as they like.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		CardsPlaced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cards_placed_total",
				Help:      "Total number of cards placed, by card type",
			},
			[]string{"type"},
		),
		CardsMoved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cards_moved_total",
				Help:      "Total number of card moves",
			},
		),
		CardsRemoved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cards_removed_total",
				Help:      "Total number of cards removed",
			},
		),
		Connections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connections_created_total",
				Help:      "Total number of connections created, by origin",
			},
			[]string{"origin"},
		),
		CanvasesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "canvases_created_total",
				Help:      "Total number of canvases created",
			},
		),
		CanvasesRemoved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "canvases_removed_total",
				Help:      "Total number of canvases removed",
			},
		),
		CanvasesRestored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "canvases_restored_total",
				Help:      "Total number of canvases restored from saved paths",
			},
		),
		ConnectModeChange: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connect_mode_changes_total",
				Help:      "Total number of connect mode transitions",
			},
		),
		CollaboratorCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "collaborator_calls_total",
				Help:      "Total number of remote collaborator calls",
			},
			[]string{"collaborator", "outcome"},
		),
		CollaboratorDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "collaborator_call_duration_seconds",
				Help:      "Remote collaborator call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"collaborator"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.CardsPlaced,
		c.CardsMoved,
		c.CardsRemoved,
		c.Connections,
		c.CanvasesCreated,
		c.CanvasesRemoved,
		c.CanvasesRestored,
		c.ConnectModeChange,
		c.CollaboratorCalls,
		c.CollaboratorDuration,
	)

	return c
}

// RecordHTTPRequest records one served request
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCollaboratorCall records one call to a remote collaborator
func (c *Collector) RecordCollaboratorCall(collaborator, outcome string, duration time.Duration) {
	c.CollaboratorCalls.WithLabelValues(collaborator, outcome).Inc()
	c.CollaboratorDuration.WithLabelValues(collaborator).Observe(duration.Seconds())
}

// Handler serves the collector's registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}
