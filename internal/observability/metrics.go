package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the admin API collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ModerationTransitionsTotal *prometheus.CounterVec
	AuthzDenialsTotal          *prometheus.CounterVec
	LoginAttemptsTotal         *prometheus.CounterVec
	ThrottleErrorsTotal        prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates the collectors and registers them on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketadmin_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketadmin_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ModerationTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketadmin_moderation_transitions_total",
				Help: "Committed moderation transitions",
			},
			[]string{"entity", "status"},
		),
		AuthzDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketadmin_authz_denials_total",
				Help: "Operations refused by the access policy",
			},
			[]string{"operation", "rule"},
		),
		LoginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketadmin_login_attempts_total",
				Help: "Admin login attempts by outcome",
			},
			[]string{"outcome"},
		),
		ThrottleErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "marketadmin_login_throttle_errors_total",
				Help: "Throttle backend failures that let a login through",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ModerationTransitionsTotal,
		m.AuthzDenialsTotal,
		m.LoginAttemptsTotal,
		m.ThrottleErrorsTotal,
	)

	return m
}

func (m *Metrics) Transition(entity, status string) {
	if m == nil {
		return
	}
	m.ModerationTransitionsTotal.WithLabelValues(entity, status).Inc()
}

func (m *Metrics) Denied(operation, rule string) {
	if m == nil {
		return
	}
	m.AuthzDenialsTotal.WithLabelValues(operation, rule).Inc()
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ThrottleError() {
	if m == nil {
		return
	}
	m.ThrottleErrorsTotal.Inc()
}

// GinMiddleware records request count and latency per matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
