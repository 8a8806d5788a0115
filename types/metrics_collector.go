package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods are called synchronously from the owning tree's mutation path and
// from dispatchers, possibly for many shadow roots on different goroutines,
// so implementations must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	ResolutionMetrics
	MutationMetrics
	NotificationMetrics
}

// ResolutionMetrics defines metrics for the resolution engine.
type ResolutionMetrics interface {
	// RecordElementResolution records a shadow-tree traversal that re-picked
	// canonical slot elements.
	//
	// Parameters:
	//   - slots: Number of slot elements visited
	RecordElementResolution(slots int)

	// RecordAssignmentPass records a host-children pass.
	//
	// Parameters:
	//   - children: Number of host children distributed
	//   - duration: Time taken in seconds
	RecordAssignmentPass(children int, duration float64)
}

// MutationMetrics defines metrics for the mutation tracker.
type MutationMetrics interface {
	// RecordMutation records one mutation entry point call.
	//
	// Parameters:
	//   - kind: Mutation kind ("add_slot", "remove_slot", "rename_slot",
	//     "fallback", "host_children", "remove_all", "host_child", "slot_changed")
	RecordMutation(kind string)

	// RecordBulkRemoval records a pass that took the remove-all fast path.
	//
	// Parameters:
	//   - clearedNames: Number of names whose non-empty assignment was cleared
	RecordBulkRemoval(clearedNames int)

	// RecordConsistencyViolation records API misuse detected by bookkeeping.
	//
	// Parameters:
	//   - kind: Violation kind ("duplicate_registration", "unknown_unregister", ...)
	RecordConsistencyViolation(kind string)
}

// NotificationMetrics defines metrics for the change coalescer and dispatchers.
type NotificationMetrics interface {
	// RecordNotifications records the size of one drained batch.
	RecordNotifications(count int)

	// RecordDispatch records a dispatch attempt.
	//
	// Parameters:
	//   - transport: Dispatcher kind ("hooks", "broadcast", "nats", "kv")
	//   - success: true if the batch was delivered
	RecordDispatch(transport string, success bool)

	// RecordDroppedNotification records a notification dropped because a
	// subscriber was too slow.
	RecordDroppedNotification()
}
