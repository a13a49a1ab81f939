// Package metrics collects the prometheus instrumentation surface of
// wdx-core: dispatcher throughput and provider latency, plus the live
// population and lapse rate of monitoring lists, upload ids, and method
// runs. Spec's Non-goals never name an observability layer, but ambient
// instrumentation is carried the way the pack carries it regardless.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wdxcore"

// Operation labels a dispatcher call for DispatchPortions/ProviderCallLatency.
type Operation string

const (
	OperationRead  Operation = "read"
	OperationWrite Operation = "write"
)

// Outcome labels a dispatched portion's terminal state.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
	OutcomePanic   Outcome = "panic"
)

// Metrics is the full set of wdx-core's registered collectors, scoped to a
// caller-supplied registry so tests (and multiple service instances in one
// process) never collide on prometheus's default registerer.
type Metrics struct {
	DispatchPortionsIssued *prometheus.CounterVec
	ProviderCallLatency    *prometheus.HistogramVec

	MonitoringListsActive prometheus.Gauge
	MonitoringListsLapsed prometheus.Counter

	UploadIDsActive prometheus.Gauge
	UploadIDsLapsed prometheus.Counter

	MethodRunsActive prometheus.Gauge
	MethodRunsLapsed prometheus.Counter
}

// New registers every collector against reg and returns the bound Metrics.
// Pass prometheus.NewRegistry() for an isolated instance (tests, or a
// process hosting more than one service), or prometheus.DefaultRegisterer
// to expose the usual /metrics endpoint.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DispatchPortionsIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_portions_issued_total",
			Help:      "Number of per-provider portions issued by the dispatcher, by operation and outcome.",
		}, []string{"operation", "outcome"}),

		ProviderCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_latency_seconds",
			Help:      "Latency of a single provider call as observed by the dispatcher, by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		MonitoringListsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitoring_lists_active",
			Help:      "Number of monitoring lists currently live.",
		}),
		MonitoringListsLapsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monitoring_lists_lapsed_total",
			Help:      "Number of monitoring lists evicted by the background lapse sweep.",
		}),

		UploadIDsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upload_ids_active",
			Help:      "Number of file-transfer upload ids currently live.",
		}),
		UploadIDsLapsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_ids_lapsed_total",
			Help:      "Number of upload ids evicted by the background lapse sweep.",
		}),

		MethodRunsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "method_runs_active",
			Help:      "Number of method run objects currently live.",
		}),
		MethodRunsLapsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "method_runs_lapsed_total",
			Help:      "Number of method run objects evicted by the background lapse sweep.",
		}),
	}
}

// ObserveProviderCall records one provider call's latency and tallies its
// portion outcome, meant to be called from internal/dispatch around each
// errgroup.Go goroutine's provider call. A nil receiver (no Metrics attached
// to the context) is a no-op, so callers never need a presence check.
func (m *Metrics) ObserveProviderCall(op Operation, outcome Outcome, started time.Time) {
	if m == nil {
		return
	}
	m.ProviderCallLatency.WithLabelValues(string(op)).Observe(time.Since(started).Seconds())
	m.DispatchPortionsIssued.WithLabelValues(string(op), string(outcome)).Inc()
}
