// Package slots implements shadow-tree content distribution.
//
// An Engine owns the slot bookkeeping of one shadow tree. It is composed of
// five cooperating parts:
//
//   - Slot records (record.go): per-name candidate count, canonical element,
//     assigned-node list
//   - Slot registry (registry.go): name → record map, registration of slot
//     elements, version counters
//   - Resolution engine (resolve.go): re-discovers canonical elements in tree
//     order and rebuilds every assigned-node list in one host-children pass
//   - Mutation tracker (tracker.go): cheap invalidation hooks for the owning
//     tree's structural changes
//   - Change coalescer (coalescer.go): one pending notification per name per batch
//
// # Deferred resolution
//
// Every mutation entry point bumps a mutation version exactly once. Queries
// compare it with the version of the last assignment pass and only rebuild
// when they differ, so any number of mutations between two reads costs one
// pass:
//
//	mutation hooks → version++ (O(1))
//	query          → stale? resolve elements (if needed) → assign → diff → coalescer
//	drain          → one notification per changed name
//
// An Engine is not safe for concurrent use; it belongs to exactly one shadow
// tree and is driven from that tree's mutation path.
package slots
