package slots

import (
	"errors"
	"fmt"
	"slices"

	"github.com/arloliu/shadowslot/types"
)

// CheckConsistency verifies every registry invariant and, when the
// assignment is up to date, every assignment invariant.
//
// It never resolves, so calling it does not disturb the instrumentation
// counters. Intended for tests and debugging tools.
//
// Returns:
//   - error: nil, or errors.Join of ErrConsistency-wrapped violations
func (e *Engine) CheckConsistency() error {
	errs := e.bookkeepingErrors()
	if e.resolvedVersion == e.mutationVersion {
		errs = append(errs, e.assignmentErrors()...)
	}

	return errors.Join(errs...)
}

func inconsistent(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{types.ErrConsistency}, args...)...)
}

func (e *Engine) bookkeepingErrors() []error {
	var errs []error

	counts := make(map[string]int, len(e.records))
	for id, name := range e.members {
		counts[name]++
		if _, ok := e.records[name]; !ok {
			errs = append(errs, inconsistent("slot %d registered under %q which has no record", id, name))
		}
	}

	for _, name := range e.Names() {
		rec := e.records[name]
		if rec.count != counts[name] {
			errs = append(errs, inconsistent("record %q counts %d slots, %d registered", name, rec.count, counts[name]))
		}
		if rec.count < 0 {
			errs = append(errs, inconsistent("record %q has negative count %d", name, rec.count))
		}
		if !rec.hasSlots() && rec.canonical != nil {
			errs = append(errs, inconsistent("record %q has a canonical slot but no registered slots", name))
		}
		if rec.canonical != nil {
			if registered, ok := e.members[rec.canonical.NodeID()]; !ok || registered != name {
				errs = append(errs, inconsistent("canonical slot %d of %q is not registered under it", rec.canonical.NodeID(), name))
			}
		}
	}

	return errs
}

func (e *Engine) assignmentErrors() []error {
	var errs []error

	seen := make(map[types.NodeID]string, len(e.assignedTo))
	for _, name := range e.Names() {
		rec := e.records[name]
		if name != types.DefaultSlotName && rec.canonical == nil && len(rec.assigned) > 0 {
			errs = append(errs, inconsistent("record %q has assigned nodes but no canonical slot", name))
		}
		for _, n := range rec.assigned {
			if other, dup := seen[n.NodeID()]; dup {
				errs = append(errs, inconsistent("node %d assigned to both %q and %q", n.NodeID(), other, name))
			}
			seen[n.NodeID()] = name
			if want := e.resolver.SlotNameFor(n); want != name {
				errs = append(errs, inconsistent("node %d assigned to %q but asks for %q", n.NodeID(), name, want))
			}
		}
	}

	// Every list must be a subsequence of host-child order.
	order := make(map[types.NodeID]int)
	i := 0
	for child := range e.tree.HostChildren() {
		order[child.NodeID()] = i
		i++
	}
	for _, name := range e.Names() {
		positions := make([]int, 0, len(e.records[name].assigned))
		for _, n := range e.records[name].assigned {
			pos, ok := order[n.NodeID()]
			if !ok {
				errs = append(errs, inconsistent("node %d assigned to %q is not a host child", n.NodeID(), name))
				continue
			}
			positions = append(positions, pos)
		}
		if !slices.IsSorted(positions) {
			errs = append(errs, inconsistent("assignment of %q is not in tree order", name))
		}
	}

	return errs
}
