package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login and registration outcomes
const (
	OutcomeSuccess    = "success"
	OutcomeInvalid    = "invalid"
	OutcomeUnapproved = "unapproved"
	OutcomeDuplicate  = "duplicate"
	OutcomeError      = "error"
)

// Metrics owns its registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	LoginAttempts  *prometheus.CounterVec
	Registrations  *prometheus.CounterVec
	CSRFRejections prometheus.Counter
	Forbidden      prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "internship",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "internship",
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),
		CSRFRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "internship",
			Name:      "csrf_rejections_total",
			Help:      "Mutating requests rejected for a missing or wrong CSRF token.",
		}),
		Forbidden: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "internship",
			Name:      "forbidden_total",
			Help:      "Requests rejected by the role guard.",
		}),
	}

	m.registry.MustRegister(
		m.LoginAttempts,
		m.Registrations,
		m.CSRFRejections,
		m.Forbidden,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Nil-safe helpers so callers can run without metrics wired.

func (m *Metrics) Login(outcome string) {
	if m != nil {
		m.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Registration(outcome string) {
	if m != nil {
		m.Registrations.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) CSRFRejected() {
	if m != nil {
		m.CSRFRejections.Inc()
	}
}

func (m *Metrics) RoleForbidden() {
	if m != nil {
		m.Forbidden.Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
