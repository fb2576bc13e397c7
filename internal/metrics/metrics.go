// Package metrics holds the Prometheus collectors for the API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks authentication and HTTP metrics. A nil *Metrics is valid and
// records nothing, so components can be constructed without a registry.
type Metrics struct {
	// TokenRejections counts bearer tokens refused by the codec, by reason.
	TokenRejections *prometheus.CounterVec

	// Logins counts sign-in attempts by result ("success", "bad_credentials", "error").
	Logins *prometheus.CounterVec

	// Registrations counts sign-up attempts by result ("success", "conflict", "error").
	Registrations *prometheus.CounterVec

	// Unauthorized counts requests stopped by the authorization policy.
	Unauthorized prometheus.Counter

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// Panics if registration fails (expected during initialization only).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TokenRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carrot_auth_token_rejections_total",
				Help: "Bearer tokens rejected by reason",
			},
			[]string{"reason"},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carrot_auth_logins_total",
				Help: "Sign-in attempts by result",
			},
			[]string{"result"},
		),
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carrot_auth_registrations_total",
				Help: "Sign-up attempts by result",
			},
			[]string{"result"},
		),
		Unauthorized: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "carrot_auth_unauthorized_total",
				Help: "Requests rejected by the authorization policy",
			},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carrot_http_requests_total",
				Help: "HTTP requests by method and status code",
			},
			[]string{"method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "carrot_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	reg.MustRegister(
		m.TokenRejections,
		m.Logins,
		m.Registrations,
		m.Unauthorized,
		m.RequestsTotal,
		m.RequestDuration,
	)
	return m
}

func (m *Metrics) TokenRejected(reason string) {
	if m == nil {
		return
	}
	m.TokenRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}

func (m *Metrics) Registration(result string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) Denied() {
	if m == nil {
		return
	}
	m.Unauthorized.Inc()
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
