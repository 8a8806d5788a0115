package metrics

import "github.com/arloliu/shadowslot/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. It is the default collector of a SlotAssignment.
type NopMetrics struct{}

var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	sa, err := shadowslot.New(root, nil, shadowslot.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// ResolutionMetrics implementation

// RecordElementResolution discards the element resolution metric.
func (n *NopMetrics) RecordElementResolution(_ /* slots */ int) {}

// RecordAssignmentPass discards the assignment pass metric.
func (n *NopMetrics) RecordAssignmentPass(_ /* children */ int, _ /* duration */ float64) {}

// MutationMetrics implementation

// RecordMutation discards the mutation counter.
func (n *NopMetrics) RecordMutation(_ /* kind */ string) {}

// RecordBulkRemoval discards the bulk removal metric.
func (n *NopMetrics) RecordBulkRemoval(_ /* clearedNames */ int) {}

// RecordConsistencyViolation discards the violation counter.
func (n *NopMetrics) RecordConsistencyViolation(_ /* kind */ string) {}

// NotificationMetrics implementation

// RecordNotifications discards the batch size metric.
func (n *NopMetrics) RecordNotifications(_ /* count */ int) {}

// RecordDispatch discards the dispatch outcome.
func (n *NopMetrics) RecordDispatch(_ /* transport */ string, _ /* success */ bool) {}

// RecordDroppedNotification discards the drop counter.
func (n *NopMetrics) RecordDroppedNotification() {}
