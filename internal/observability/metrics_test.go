package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_CustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test_governor", reg)

	m.SnapshotsTotal.WithLabelValues("rpc").Inc()
	SetOneHot(m.FeeBand, "elevated", []string{"low", "normal", "elevated", "extreme"})

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetGauge() != nil:
				for _, lp := range metric.GetLabel() {
					values[mf.GetName()+"/"+lp.GetValue()] = metric.GetGauge().GetValue()
				}
			case metric.GetCounter() != nil:
				values[mf.GetName()] += metric.GetCounter().GetValue()
			}
		}
	}

	assert.Equal(t, 1.0, values["test_governor_telemetry_snapshots_total"])
	assert.Equal(t, 1.0, values["test_governor_decision_fee_band/elevated"])
	assert.Equal(t, 0.0, values["test_governor_decision_fee_band/low"])
}

func TestRecordHelpers_DoNotPanic(t *testing.T) {
	RecordRPCLatency("http://node", "fee", 0.12)
	RecordEndpointFailure("http://node")
	RecordSnapshot("fallback", 0, 5000, 1.0)
	UpdateHistorySize(3)
	RecordDecision("normal", "normal", "steady_state")
	RecordBundle("normal", "simple_payment_v1")
	RecordCycle("rpc", 0.3, 1700000000)
	RecordStoreError("history", "append")
	RecordPublish("cycle_report", nil)
}
