// Package metrics holds the Prometheus instrumentation for the registration
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RegistrationsTotal *prometheus.CounterVec
	RejectionsTotal    *prometheus.CounterVec
	ReconcileRuns      prometheus.Counter
	ReconcileRows      *prometheus.CounterVec
	CapacityReleases   prometheus.Counter
}

// New creates all metrics and registers them with reg. Tests pass a fresh
// registry so parallel packages do not collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistrationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "event_registrations_total",
			Help: "Registrations committed, labelled by entry point.",
		}, []string{"source"}),
		RejectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "event_registration_rejections_total",
			Help: "Registration attempts rejected, labelled by reason.",
		}, []string{"reason"}),
		ReconcileRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "event_reconcile_runs_total",
			Help: "Reconciliation batches processed.",
		}),
		ReconcileRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "event_reconcile_rows_total",
			Help: "Reconciliation rows by outcome.",
		}, []string{"outcome"}),
		CapacityReleases: factory.NewCounter(prometheus.CounterOpts{
			Name: "event_capacity_releases_total",
			Help: "Capacity slots released by unregister, cascade or rollback.",
		}),
	}
}
