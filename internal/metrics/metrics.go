package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeCreated  = "created"
	OutcomeInvalid  = "invalid"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
	OutcomeLimited  = "rate_limited"

	OutcomeSent     = "sent"
	OutcomeFailed   = "failed"
	OutcomeQueued   = "queued"
	OutcomeDisabled = "disabled"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	Registrations *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	Deletions     prometheus.Counter
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "anveshan_registrations_total",
			Help: "Registration submissions by outcome",
		}, []string{"outcome"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "anveshan_notifications_total",
			Help: "Confirmation notifications by outcome",
		}, []string{"outcome"}),
		Deletions: factory.NewCounter(prometheus.CounterOpts{
			Name: "anveshan_registrations_deleted_total",
			Help: "Registrations removed through the admin API",
		}),
	}
}

func (m *Metrics) IncRegistration(outcome string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncNotification(outcome string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncDeletion() {
	if m == nil {
		return
	}
	m.Deletions.Inc()
}
