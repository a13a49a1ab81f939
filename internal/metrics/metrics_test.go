package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestNewRegistersWithoutCollision(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { New(reg) })
}

func TestObserveProviderCallRecordsLatencyAndOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveProviderCall(OperationRead, OutcomeSuccess, time.Now().Add(-5*time.Millisecond))

	c, err := m.DispatchPortionsIssued.GetMetricWithLabelValues(string(OperationRead), string(OutcomeSuccess))
	require.NoError(t, err)
	require.Equal(t, float64(1), counterValue(t, c))
}

func TestObserveProviderCallNilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveProviderCall(OperationWrite, OutcomeError, time.Now())
	})
}

func TestContextRoundTrip(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	ctx := NewContext(context.Background(), m)
	require.Same(t, m, FromContext(ctx))
	require.Nil(t, FromContext(context.Background()))
}
