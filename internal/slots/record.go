package slots

import "github.com/arloliu/shadowslot/types"

// record is the bookkeeping for one slot name.
//
// Invariants:
//   - count == 0 ⇒ canonical == nil
//   - count > 1 marks a duplicated name; only canonical receives nodes
//   - canonical == nil ∧ count > 0 ⇒ element resolution is pending
//   - assigned mirrors host-child tree order
type record struct {
	// count is the number of slot elements registered under this name.
	count int

	// canonical is the slot element that renders the name. It is a weak
	// reference: the owning tree unregisters elements before dropping them,
	// and an element no longer in a shadow tree is treated as unresolved.
	canonical types.SlotElement

	// previous holds the canonical element removed or renamed away since the
	// last assignment pass, so the change can still be dispatched at it.
	previous types.SlotElement

	// rendered is the canonical element as of the last assignment pass.
	rendered types.SlotElement

	// firstSeen is set once a canonical element has ever been picked.
	firstSeen bool

	// resolvedIn is the element-resolution generation that last picked canonical.
	resolvedIn uint64

	// assigned is the current distribution result; scratch is the spare
	// buffer swapped in on every pass so the previous result can be diffed.
	assigned []types.Node
	scratch  []types.Node
}

func (r *record) hasSlots() bool {
	return r.count > 0
}

func (r *record) duplicated() bool {
	return r.count > 1
}

func (r *record) needsResolution() bool {
	return r.count > 0 && !types.IsLive(r.canonical)
}

// target returns the best element to dispatch a change for this name at.
func (r *record) target() types.SlotElement {
	for _, s := range [...]types.SlotElement{r.canonical, r.previous, r.rendered} {
		if types.IsLive(s) {
			return s
		}
	}

	return nil
}

func (r *record) setCanonical(slot types.SlotElement) {
	r.canonical = slot
	if slot != nil {
		r.firstSeen = true
	}
}

// RecordInfo is a read-only view of one slot record.
type RecordInfo struct {
	Name       string
	Count      int
	Canonical  types.SlotElement
	FirstSeen  bool
	Duplicated bool
	Assigned   []types.NodeID
}

func (r *record) info(name string) RecordInfo {
	return RecordInfo{
		Name:       name,
		Count:      r.count,
		Canonical:  r.canonical,
		FirstSeen:  r.firstSeen,
		Duplicated: r.duplicated(),
		Assigned:   nodeIDs(r.assigned),
	}
}

func nodeIDs(nodes []types.Node) []types.NodeID {
	if len(nodes) == 0 {
		return nil
	}
	ids := make([]types.NodeID, len(nodes))
	for i, n := range nodes {
		ids[i] = n.NodeID()
	}

	return ids
}

func sameNodes(a, b []types.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].NodeID() != b[i].NodeID() {
			return false
		}
	}

	return true
}
