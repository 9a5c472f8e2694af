package sender

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "dispute_sender"
)

// Metrics contains metrics exposed by this package.
// see MetricsProvider for descriptions.
type Metrics struct {
	// Number of dispute requests handed to the transport layer
	DispatchedRequests metrics.Counter
	// Number of send attempts that were confirmed by the peer
	SucceededSends metrics.Counter
	// Number of send attempts that failed and are awaiting retry
	FailedSends metrics.Counter
	// Number of deliveries currently tracked across all disputes
	TrackedDeliveries metrics.Gauge
	// Number of disputes currently being distributed
	ActiveDisputes metrics.Gauge
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		DispatchedRequests: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "dispatched_requests",
			Help:      "Number of dispute requests handed to the transport layer.",
		}, labels).With(labelsAndValues...),
		SucceededSends: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "succeeded_sends",
			Help:      "Number of send attempts confirmed by the peer.",
		}, labels).With(labelsAndValues...),
		FailedSends: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "failed_sends",
			Help:      "Number of send attempts that failed and are awaiting retry.",
		}, labels).With(labelsAndValues...),
		TrackedDeliveries: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "tracked_deliveries",
			Help:      "Number of deliveries currently tracked across all disputes.",
		}, labels).With(labelsAndValues...),
		ActiveDisputes: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "active_disputes",
			Help:      "Number of disputes currently being distributed.",
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		DispatchedRequests: discard.NewCounter(),
		SucceededSends:     discard.NewCounter(),
		FailedSends:        discard.NewCounter(),
		TrackedDeliveries:  discard.NewGauge(),
		ActiveDisputes:     discard.NewGauge(),
	}
}
