package provider

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts the provider's reconciliation and dispatch activity.
type Metrics struct {
	ReconcileRuns         *prometheus.CounterVec
	EventsEmitted         *prometheus.CounterVec
	MalformedDropped      prometheus.Counter
	Requests              *prometheus.CounterVec
	RequestFailures       *prometheus.CounterVec
	NotificationsLimited  prometheus.Counter
	NotificationsPassedOn prometheus.Counter
}

// NewMetrics registers the provider collectors on reg; pass
// prometheus.DefaultRegisterer outside of tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReconcileRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alphlink_reconcile_runs_total",
			Help: "Reconciler invocations by payload kind and trigger.",
		}, []string{"kind", "trigger"}),
		EventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alphlink_events_emitted_total",
			Help: "Application events emitted by name.",
		}, []string{"event"}),
		MalformedDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alphlink_malformed_entries_dropped_total",
			Help: "Wire entries dropped during batch decode.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alphlink_requests_total",
			Help: "Outbound signing requests by method.",
		}, []string{"method"}),
		RequestFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alphlink_request_failures_total",
			Help: "Failed outbound signing requests by method.",
		}, []string{"method"}),
		NotificationsLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alphlink_notifications_rate_limited_total",
			Help: "Inbound notifications dropped by the per-kind limiter.",
		}),
		NotificationsPassedOn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alphlink_notifications_passed_through_total",
			Help: "Notifications re-emitted verbatim to the application.",
		}),
	}
	reg.MustRegister(
		m.ReconcileRuns,
		m.EventsEmitted,
		m.MalformedDropped,
		m.Requests,
		m.RequestFailures,
		m.NotificationsLimited,
		m.NotificationsPassedOn,
	)
	return m
}
