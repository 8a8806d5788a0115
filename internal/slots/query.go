package slots

import (
	"cmp"
	"slices"

	"github.com/arloliu/shadowslot/internal/fingerprint"
	"github.com/arloliu/shadowslot/types"
)

// AssignedSlot returns the slot element whose assigned nodes contain node.
//
// Returns:
//   - types.SlotElement: Canonical slot rendering node (nil if none)
//   - bool: false if node is unassigned
func (e *Engine) AssignedSlot(node types.Node) (types.SlotElement, bool) {
	if node == nil {
		return nil, false
	}
	e.ensureResolved()

	name, ok := e.assignedTo[node.NodeID()]
	if !ok {
		return nil, false
	}
	rec := e.records[name]
	if rec.canonical == nil {
		return nil, false
	}

	return rec.canonical, true
}

// AssignedNodes returns the nodes distributed to a slot element.
//
// Only the canonical element of a name has an assignment; non-canonical
// duplicates and unregistered elements report false and render their
// fallback content. The returned slice is a copy in host-child tree order.
//
// Returns:
//   - []types.Node: Assigned nodes (may be empty)
//   - bool: false if slot is not canonical for any name
func (e *Engine) AssignedNodes(slot types.SlotElement) ([]types.Node, bool) {
	if slot == nil {
		return nil, false
	}
	e.ensureResolved()

	name, ok := e.members[slot.NodeID()]
	if !ok {
		return nil, false
	}
	rec := e.records[name]
	if !types.SameNode(rec.canonical, slot) {
		return nil, false
	}

	return slices.Clone(rec.assigned), true
}

// CanonicalSlot returns the slot element currently rendering name.
func (e *Engine) CanonicalSlot(name string) (types.SlotElement, bool) {
	e.ensureResolved()
	rec, ok := e.records[name]
	if !ok || rec.canonical == nil {
		return nil, false
	}

	return rec.canonical, true
}

// DrainNotifications returns one notification per name whose observable
// assignment changed since the last drain, sorted by name, and resets the
// coalescer.
//
// The assignment is brought up to date first, so changes that are only
// visible by diffing the previous pass are included.
func (e *Engine) DrainNotifications() []types.Notification {
	e.ensureResolved()

	pending := e.changes.take()
	if len(pending) == 0 {
		return nil
	}

	batch := make([]types.Notification, 0, len(pending))
	for name, change := range pending {
		n := types.Notification{Name: name}
		if types.IsLive(change.target) {
			n.Slot = change.target
		}
		if rec, ok := e.records[name]; ok {
			if !change.pinned && types.IsLive(rec.canonical) {
				n.Slot = rec.canonical
			}
			n.Nodes = nodeIDs(rec.assigned)
		}
		batch = append(batch, n)
	}
	slices.SortFunc(batch, func(a, b types.Notification) int {
		return cmp.Compare(a.Name, b.Name)
	})

	e.metrics.RecordNotifications(len(batch))

	return batch
}

// DrainChangedNames is DrainNotifications reduced to the sorted set of names.
func (e *Engine) DrainChangedNames() []string {
	batch := e.DrainNotifications()
	if len(batch) == 0 {
		return nil
	}
	names := make([]string, len(batch))
	for i, n := range batch {
		names[i] = n.Name
	}

	return names
}

// Stats returns the engine's bookkeeping counters.
//
// Stats does not resolve; Stale reports whether the next query will.
func (e *Engine) Stats() types.Stats {
	return types.Stats{
		MutationVersion:      e.mutationVersion,
		ResolvedVersion:      e.resolvedVersion,
		ElementResolutions:   e.elementResolutions,
		AssignmentPasses:     e.assignmentPasses,
		Records:              len(e.records),
		RegisteredSlots:      len(e.members),
		PendingNotifications: e.changes.size(),
	}
}

// Fingerprint returns an order-sensitive digest of the whole assignment.
//
// Two calls return the same value if and only if (barring hash collisions)
// every name renders the same nodes in the same order through the same
// canonical element.
func (e *Engine) Fingerprint() uint64 {
	e.ensureResolved()

	d := fingerprint.New(0)
	for _, name := range e.Names() {
		rec := e.records[name]
		if len(rec.assigned) == 0 && rec.canonical == nil {
			continue
		}
		var canonical types.Node
		if rec.canonical != nil {
			canonical = rec.canonical
		}
		d.WriteRecord(name, canonical, rec.assigned)
	}

	return d.Sum()
}
