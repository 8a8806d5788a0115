package types

// Stats is a point-in-time snapshot of slot assignment bookkeeping.
//
// The counters are instrumentation: tests use them to prove that repeated
// queries without an intervening mutation do not repeat expensive work.
type Stats struct {
	// MutationVersion is bumped once per mutation entry point call.
	MutationVersion uint64 `json:"mutationVersion"`

	// ResolvedVersion is the MutationVersion as of the last assignment pass.
	ResolvedVersion uint64 `json:"resolvedVersion"`

	// ElementResolutions counts shadow-tree traversals that re-picked
	// canonical slot elements.
	ElementResolutions uint64 `json:"elementResolutions"`

	// AssignmentPasses counts host-children passes that rebuilt assigned-node lists.
	AssignmentPasses uint64 `json:"assignmentPasses"`

	// Records is the number of slot records currently held.
	Records int `json:"records"`

	// RegisteredSlots is the number of slot elements currently registered.
	RegisteredSlots int `json:"registeredSlots"`

	// PendingNotifications is the number of names waiting to be drained.
	PendingNotifications int `json:"pendingNotifications"`
}

// Stale reports whether the next query will run an assignment pass.
func (s Stats) Stale() bool {
	return s.MutationVersion != s.ResolvedVersion
}
