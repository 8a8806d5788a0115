package slots

import (
	"time"

	"github.com/arloliu/shadowslot/types"
)

// ensureResolved brings canonical elements and assigned-node lists up to date.
//
// It is idempotent: without an intervening mutation the versions match and it
// returns immediately, so any number of reads after a batch of mutations
// costs at most one element scan and one assignment pass. A name whose
// registered elements have all left the shadow tree stays unresolved until
// the next mutation.
func (e *Engine) ensureResolved() {
	if e.resolvedVersion == e.mutationVersion {
		return
	}

	if !e.needsElementResolution && e.hasUnresolvedRecord() {
		// Also covers a canonical element that left the shadow tree without
		// being unregistered.
		e.needsElementResolution = true
	}
	if e.needsElementResolution {
		e.resolveElements()
	}
	e.assign()
	e.resolvedVersion = e.mutationVersion
}

func (e *Engine) hasUnresolvedRecord() bool {
	for _, rec := range e.records {
		if rec.needsResolution() {
			return true
		}
	}

	return false
}

// resolveElements re-picks the canonical element of every registered name.
//
// The shadow tree is walked in tree order without entering nested shadow
// trees; the first live registered element found for a name wins. The walk
// stops as soon as every registered name has been seen, and its cost is
// bounded by the shadow tree size, never by the number of mutations.
func (e *Engine) resolveElements() {
	e.needsElementResolution = false
	e.elementResolutions++
	gen := e.elementResolutions

	pending := 0
	for _, rec := range e.records {
		if rec.hasSlots() {
			pending++
		}
	}

	visited := 0
	if pending > 0 {
		for slot := range e.tree.SlotElements() {
			visited++
			name, ok := e.members[slot.NodeID()]
			if !ok {
				// Not registered yet, or already unregistered while the
				// owning tree is mid-removal.
				continue
			}
			rec := e.records[name]
			if rec.resolvedIn == gen || !types.IsLive(slot) {
				continue
			}
			rec.resolvedIn = gen
			rec.setCanonical(slot)
			pending--
			if pending == 0 {
				break
			}
		}
	}

	for name, rec := range e.records {
		if rec.resolvedIn == gen {
			continue
		}
		if rec.canonical != nil && !types.IsLive(rec.canonical) {
			rec.canonical = nil
		}
		if rec.hasSlots() && rec.canonical == nil {
			e.logger.Debug("registered slot not found in shadow tree", "name", name, "count", rec.count)
		}
	}

	e.metrics.RecordElementResolution(visited)
}

// assign rebuilds every record's assigned-node list in one pass over the
// host's children, then reports every name whose observable assignment
// differs from the previous pass.
//
// A child joins its name's list only when the name has a canonical element;
// the default name always collects its children, whether or not a default
// slot renders them.
func (e *Engine) assign() {
	start := time.Now()
	e.assignmentPasses++

	bulk := e.bulkRemoval
	e.bulkRemoval = false

	for _, rec := range e.records {
		rec.assigned, rec.scratch = rec.scratch[:0], rec.assigned
	}
	clear(e.assignedTo)

	children := 0
	for child := range e.tree.HostChildren() {
		name := e.resolver.SlotNameFor(child)
		rec, ok := e.records[name]
		if !ok {
			continue
		}
		if name != types.DefaultSlotName && rec.canonical == nil {
			continue
		}
		rec.assigned = append(rec.assigned, child)
		e.assignedTo[child.NodeID()] = name
		children++
	}

	cleared := 0
	for name, rec := range e.records {
		previous := rec.scratch

		switch {
		case bulk:
			// Everything was torn down at once: no per-node diff.
			if len(previous) > 0 {
				cleared++
				e.markChanged(name, rec.target(), false)
			}
			if len(rec.assigned) > 0 {
				e.markChanged(name, rec.target(), false)
			}
		case !sameNodes(previous, rec.assigned):
			e.markChanged(name, rec.target(), false)
		}

		if !types.SameNode(rec.rendered, rec.canonical) && (len(previous) > 0 || len(rec.assigned) > 0) {
			e.markChanged(name, rec.target(), false)
		}

		rec.rendered = rec.canonical
		rec.previous = nil
		clear(previous)
		rec.scratch = previous[:0]
	}

	e.reportFallbacks()

	if bulk {
		e.logger.Debug("host children removed in bulk", "cleared_names", cleared, "remaining_children", children)
		e.metrics.RecordBulkRemoval(cleared)
	}
	if e.prune {
		e.pruneRecords()
	}

	e.metrics.RecordAssignmentPass(children, time.Since(start).Seconds())
}

// reportFallbacks marks the names of slots whose fallback content changed
// and that render no assigned nodes after this pass.
func (e *Engine) reportFallbacks() {
	for id, slot := range e.fallbacks {
		name, ok := e.members[id]
		if !ok {
			continue
		}
		if rec := e.records[name]; types.SameNode(rec.canonical, slot) && len(rec.assigned) > 0 {
			continue
		}
		e.markChanged(name, slot, true)
	}
	clear(e.fallbacks)
}

// pruneRecords drops records that hold neither slots nor nodes.
func (e *Engine) pruneRecords() {
	for name, rec := range e.records {
		if name == types.DefaultSlotName || rec.hasSlots() || len(rec.assigned) > 0 {
			continue
		}
		delete(e.records, name)
	}
}
