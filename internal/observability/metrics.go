// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Telemetry metrics
	RPCCallLatency    *prometheus.HistogramVec
	EndpointFailures  *prometheus.CounterVec
	SnapshotsTotal    *prometheus.CounterVec
	LedgerSeq         prometheus.Gauge
	MedianFeeDrops    prometheus.Gauge
	LoadFactor        prometheus.Gauge
	HistoryBufferSize prometheus.Gauge

	// Decision metrics
	FeeBand        *prometheus.GaugeVec
	GuardianMode   *prometheus.GaugeVec
	MeshMode       *prometheus.GaugeVec
	BundlesPlanned *prometheus.CounterVec

	// Pipeline metrics
	CycleRunsTotal *prometheus.CounterVec
	CycleDuration  prometheus.Histogram

	// Side-effect metrics
	StoreErrors  *prometheus.CounterVec
	PublishTotal *prometheus.CounterVec

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "xrpl_governor"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "xrpl",
			Name:      "rpc_call_latency_seconds",
			Help:      "XRPL node call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
		EndpointFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "xrpl",
			Name:      "endpoint_failures_total",
			Help:      "Total failed calls per XRPL endpoint",
		}, []string{"endpoint"}),
		SnapshotsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "telemetry",
			Name:      "snapshots_total",
			Help:      "Total network snapshots by source (rpc, ws, fallback)",
		}, []string{"source"}),
		LedgerSeq: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "telemetry",
			Name:      "ledger_seq",
			Help:      "Ledger sequence of the last snapshot",
		}),
		MedianFeeDrops: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "telemetry",
			Name:      "median_fee_drops",
			Help:      "Median fee of the last snapshot in drops",
		}),
		LoadFactor: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "telemetry",
			Name:      "load_factor",
			Help:      "Load factor of the last snapshot",
		}),
		HistoryBufferSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "horizon",
			Name:      "buffer_size",
			Help:      "Number of points in the fee history buffer",
		}),

		FeeBand: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "fee_band",
			Help:      "1 for the current fee band, 0 otherwise",
		}, []string{"band"}),
		GuardianMode: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "guardian_mode",
			Help:      "1 for the current guardian mode, 0 otherwise",
		}, []string{"mode"}),
		MeshMode: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "mesh_mode",
			Help:      "1 for the current council mesh mode, 0 otherwise",
		}, []string{"mode"}),
		BundlesPlanned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "bundles_total",
			Help:      "Total execution bundles by hint mode and protocol",
		}, []string{"hint", "protocol"}),

		CycleRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "cycles_total",
			Help:      "Total pipeline cycles by snapshot source",
		}, []string{"source"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "cycle_duration_seconds",
			Help:      "Pipeline cycle duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),

		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Total best-effort store failures by store and operation",
		}, []string{"store", "operation"}),
		PublishTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publish",
			Name:      "messages_total",
			Help:      "Total decision messages published by kind and status",
		}, []string{"kind", "status"}),

		LastSuccessfulCycle: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of the last completed pipeline cycle",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordRPCLatency records node call latency.
func RecordRPCLatency(endpoint, method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(endpoint, method).Observe(seconds)
}

// RecordEndpointFailure increments the failure counter for an endpoint.
func RecordEndpointFailure(endpoint string) {
	DefaultMetrics.EndpointFailures.WithLabelValues(endpoint).Inc()
}

// RecordSnapshot records the readings of a snapshot.
func RecordSnapshot(source string, ledgerSeq, medianFee int64, loadFactor float64) {
	DefaultMetrics.SnapshotsTotal.WithLabelValues(source).Inc()
	DefaultMetrics.LedgerSeq.Set(float64(ledgerSeq))
	DefaultMetrics.MedianFeeDrops.Set(float64(medianFee))
	DefaultMetrics.LoadFactor.Set(loadFactor)
}

// UpdateHistorySize updates the horizon buffer gauge.
func UpdateHistorySize(points int) {
	DefaultMetrics.HistoryBufferSize.Set(float64(points))
}

// SetOneHot sets the gauge for current to 1 and every other label in all to 0.
func SetOneHot(g *prometheus.GaugeVec, current string, all []string) {
	for _, v := range all {
		if v == current {
			g.WithLabelValues(v).Set(1)
		} else {
			g.WithLabelValues(v).Set(0)
		}
	}
}

// RecordDecision updates band, guardian and mesh gauges.
func RecordDecision(band, guardianMode, meshMode string) {
	SetOneHot(DefaultMetrics.FeeBand, band, []string{"low", "normal", "elevated", "extreme"})
	SetOneHot(DefaultMetrics.GuardianMode, guardianMode, []string{"calm", "normal", "fee_pressure", "stress", "attack"})
	SetOneHot(DefaultMetrics.MeshMode, meshMode, []string{"accelerate", "steady_state", "fee_pressure", "defensive"})
}

// RecordBundle records a planned execution bundle.
func RecordBundle(hint, protocol string) {
	DefaultMetrics.BundlesPlanned.WithLabelValues(hint, protocol).Inc()
}

// RecordCycle records a completed pipeline cycle.
func RecordCycle(source string, durationSeconds float64, finishedUnix int64) {
	DefaultMetrics.CycleRunsTotal.WithLabelValues(source).Inc()
	DefaultMetrics.CycleDuration.Observe(durationSeconds)
	DefaultMetrics.LastSuccessfulCycle.Set(float64(finishedUnix))
}

// RecordStoreError records a best-effort store failure.
func RecordStoreError(store, operation string) {
	DefaultMetrics.StoreErrors.WithLabelValues(store, operation).Inc()
}

// RecordPublish records a publish attempt.
func RecordPublish(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.PublishTotal.WithLabelValues(kind, status).Inc()
}
