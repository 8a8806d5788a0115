package testing

import (
	"slices"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/shadowslot/types"
)

// Assignment is the read side of a slot assignment.
//
// Both *shadowslot.SlotAssignment and the internal engine satisfy it.
type Assignment interface {
	AssignedSlot(node types.Node) (types.SlotElement, bool)
	AssignedNodes(slot types.SlotElement) ([]types.Node, bool)
	CheckConsistency() error
}

// Expected is the assignment recomputed from scratch.
type Expected struct {
	// Canonical maps every name with a live slot element to the first such
	// element in tree order.
	Canonical map[string]types.NodeID

	// Duplicates lists the live slot elements that are not canonical.
	Duplicates []types.NodeID

	// Nodes maps every name with a canonical element to the host children it
	// renders, in tree order. Names without children map to an empty list.
	Nodes map[string][]types.NodeID

	// SlotOf maps every assigned host child to its canonical slot element.
	SlotOf map[types.NodeID]types.NodeID

	// Unassigned lists host children whose name has no canonical element.
	Unassigned []types.NodeID
}

// Expect computes the assignment of tree the slow way: one walk over the
// slot elements, one walk over the host children, no incremental state.
//
// Parameters:
//   - tree: Shadow tree to compute the assignment of
//   - resolver: Slot-name policy for host children
//
// Returns:
//   - Expected: The reference assignment
func Expect(tree types.Tree, resolver types.NameResolver) Expected {
	exp := Expected{
		Canonical: make(map[string]types.NodeID),
		Nodes:     make(map[string][]types.NodeID),
		SlotOf:    make(map[types.NodeID]types.NodeID),
	}

	// Every slot the tree yields is in the shadow tree; liveness and the host's
	// place in the document do not matter.
	for slot := range tree.SlotElements() {
		if _, ok := exp.Canonical[slot.SlotName()]; ok {
			exp.Duplicates = append(exp.Duplicates, slot.NodeID())
			continue
		}
		exp.Canonical[slot.SlotName()] = slot.NodeID()
		exp.Nodes[slot.SlotName()] = []types.NodeID{}
	}

	for child := range tree.HostChildren() {
		name := resolver.SlotNameFor(child)
		slotID, ok := exp.Canonical[name]
		if !ok {
			exp.Unassigned = append(exp.Unassigned, child.NodeID())
			continue
		}
		exp.Nodes[name] = append(exp.Nodes[name], child.NodeID())
		exp.SlotOf[child.NodeID()] = slotID
	}

	return exp
}

// Visible returns the node list every name renders, keyed by name. Names
// without a canonical element render nothing and are omitted.
func (e Expected) Visible() map[string][]types.NodeID {
	out := make(map[string][]types.NodeID, len(e.Nodes))
	for name, ids := range e.Nodes {
		out[name] = slices.Clone(ids)
	}

	return out
}

// ChangedNames returns the sorted names whose rendered node list or
// canonical element differs between two reference assignments.
func ChangedNames(before, after Expected) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for name, ids := range before.Nodes {
		if !slices.Equal(ids, after.Nodes[name]) && (len(ids) > 0 || len(after.Nodes[name]) > 0) {
			add(name)
		}
	}
	for name, ids := range after.Nodes {
		if !slices.Equal(ids, before.Nodes[name]) && (len(ids) > 0 || len(before.Nodes[name]) > 0) {
			add(name)
		}
	}
	for name, id := range after.Canonical {
		if prev, ok := before.Canonical[name]; ok && prev != id && (len(before.Nodes[name]) > 0 || len(after.Nodes[name]) > 0) {
			add(name)
		}
	}
	slices.Sort(out)

	return out
}

// RequireMatchesOracle fails the test unless sa reports exactly the
// assignment Expect computes for tree, and passes its own consistency check.
//
// Every slot element of the tree and every host child is queried. On a
// mismatch the reference assignment is dumped with spew.
func RequireMatchesOracle(tb testing.TB, sa Assignment, tree types.Tree, resolver types.NameResolver) Expected {
	tb.Helper()

	exp := Expect(tree, resolver)
	dump := func() string { return spew.Sdump(exp) }

	for slot := range tree.SlotElements() {
		nodes, ok := sa.AssignedNodes(slot)
		want, canonical := exp.Canonical[slot.SlotName()]
		if !canonical || want != slot.NodeID() {
			require.Falsef(tb, ok, "slot %d (%q) is not canonical but has an assignment %v\n%s",
				slot.NodeID(), slot.SlotName(), ids(nodes), dump())

			continue
		}
		require.Truef(tb, ok, "canonical slot %d (%q) reports no assignment\n%s", slot.NodeID(), slot.SlotName(), dump())
		require.Equalf(tb, exp.Nodes[slot.SlotName()], ids(nodes),
			"slot %d (%q) assigned nodes\n%s", slot.NodeID(), slot.SlotName(), dump())
	}

	for child := range tree.HostChildren() {
		slot, ok := sa.AssignedSlot(child)
		want, assigned := exp.SlotOf[child.NodeID()]
		if !assigned {
			require.Falsef(tb, ok, "child %d should be unassigned\n%s", child.NodeID(), dump())
			continue
		}
		require.Truef(tb, ok, "child %d should be assigned to slot %d\n%s", child.NodeID(), want, dump())
		require.Equalf(tb, want, slot.NodeID(), "child %d assigned slot\n%s", child.NodeID(), dump())
	}

	require.NoError(tb, sa.CheckConsistency())

	return exp
}

// ids converts nodes to identities; an empty input gives an empty, non-nil
// slice so it compares equal to Expected.Nodes entries.
func ids(nodes []types.Node) []types.NodeID {
	out := make([]types.NodeID, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.NodeID())
	}

	return out
}
