package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_LazyRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewPrometheus(reg, "")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Empty(t, families)
}

func TestPrometheusCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordMutation("add_slot")
	p.RecordMutation("add_slot")
	p.RecordMutation("remove_all")
	p.RecordElementResolution(4)
	p.RecordAssignmentPass(10, 0.0001)
	p.RecordBulkRemoval(2)
	p.RecordConsistencyViolation("unknown_unregister")
	p.RecordNotifications(3)
	p.RecordDispatch("nats", true)
	p.RecordDispatch("nats", false)
	p.RecordDroppedNotification()

	require.InDelta(t, 2, testutil.ToFloat64(p.mutations.WithLabelValues("add_slot")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.mutations.WithLabelValues("remove_all")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.bulkRemovals), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.violations.WithLabelValues("unknown_unregister")), 0)
	require.InDelta(t, 3, testutil.ToFloat64(p.notifications), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.dispatches.WithLabelValues("nats", "true")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.dispatches.WithLabelValues("nats", "false")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.dropped), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		require.Contains(t, mf.GetName(), "test_")
	}
}

func TestPrometheusCollector_DefaultNamespace(t *testing.T) {
	p := NewPrometheus(prometheus.NewRegistry(), "")
	require.Equal(t, DefaultNamespace, p.namespace)
}
