package slots

import "github.com/arloliu/shadowslot/types"

// BeforeHostChildrenChange must be called before any host child is inserted
// or removed.
//
// It invalidates the assignment and cancels a pending remove-all fast path.
// When notifications are enabled, canonical elements that are due for
// resolution are re-picked now, while the shadow tree still matches the
// state the last assignment was computed against.
func (e *Engine) BeforeHostChildrenChange() {
	e.bump("host_children")
	e.bulkRemoval = false
	if e.notify && e.needsElementResolution {
		e.resolveElements()
	}
}

// WillRemoveAllHostChildren must be called before the owning tree removes
// every child of the host in one operation.
//
// No per-child work happens for the removals that follow. The next pass
// treats every previously non-empty name as changed exactly once, no matter
// how many children were removed.
func (e *Engine) WillRemoveAllHostChildren() {
	e.bump("remove_all")
	e.bulkRemoval = true
	if e.notify && e.needsElementResolution {
		e.resolveElements()
	}
}

// HostChildChanged invalidates the assignment after a host child changed in a
// way that may affect its slot name.
//
// Names are re-derived during the next pass. Callers that know the old and
// new slot names should use HostChildSlotAttributeChanged so both buckets are
// reported even if the child's membership does not visibly move.
func (e *Engine) HostChildChanged(child types.Node) {
	e.bump("host_child")
	if child != nil {
		e.logger.Debug("host child changed", "child_id", child.NodeID())
	}
}

// HostChildSlotAttributeChanged handles a host child's slot attribute moving
// from oldName to newName.
func (e *Engine) HostChildSlotAttributeChanged(child types.Node, oldName, newName string) {
	e.HostChildChanged(child)
	e.markChanged(oldName, nil, false)
	e.markChanged(newName, nil, false)
}

// DidChangeSlot invalidates the assignment and reports name as changed.
//
// Used for presentation changes the node lists cannot show, e.g. the default
// slot's content being replaced wholesale. Names without a record are ignored,
// except the default name which always exists.
func (e *Engine) DidChangeSlot(name string) {
	e.bump("slot_changed")
	e.markChanged(name, nil, false)
}

// FallbackChanged reports that a slot element's fallback content changed.
//
// Fallback content is only visible while the slot renders no assigned nodes.
// That is decided by the next assignment pass, so the call itself only
// records the slot; any number of fallback edits between two reads costs
// one pass. The change is dispatched at the slot itself, which may be a
// non-canonical duplicate.
//
// Parameters:
//   - slot: Registered slot element whose children changed
func (e *Engine) FallbackChanged(slot types.SlotElement) {
	e.bump("fallback")
	if !e.notify || slot == nil {
		return
	}
	if _, ok := e.members[slot.NodeID()]; !ok {
		return
	}
	e.fallbacks[slot.NodeID()] = slot
}

// markChanged feeds the change coalescer.
func (e *Engine) markChanged(name string, target types.SlotElement, pinned bool) {
	if !e.notify {
		return
	}
	if _, ok := e.records[name]; !ok && name != types.DefaultSlotName {
		return
	}
	e.changes.mark(name, target, pinned)
}
