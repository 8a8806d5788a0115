package types

import "iter"

// DefaultSlotName is the name of the default slot.
//
// Host children without a declared slot name, and text nodes, are
// distributed to the slot registered under this name.
const DefaultSlotName = ""

// NodeID is the stable identity of a node in the owning tree.
//
// IDs are used as map keys and list members, so the owning tree must never
// reuse an ID for a different node while the old one is still referenced.
type NodeID uint64

// Node is a light-tree or shadow-tree node known to the slot assignment.
type Node interface {
	// NodeID returns the node's stable identity.
	NodeID() NodeID
}

// SlotElement is a slot placeholder declared inside a shadow tree.
type SlotElement interface {
	Node

	// SlotName returns the slot's own name attribute.
	// An empty or absent name denotes the default slot.
	SlotName() string
}

// Liveness is optionally implemented by slot elements whose lifetime is
// managed by the owning tree.
//
// A canonical slot element that reports itself outside its shadow tree is
// treated exactly like an unresolved one: the registry never hands it out
// again and re-scans the shadow tree on the next resolution. Whether the
// shadow host is attached to a document plays no part.
type Liveness interface {
	// InShadowTree reports whether the element still belongs to a shadow tree.
	InShadowTree() bool
}

// Tree provides the traversal primitives the slot assignment needs from the
// owning shadow tree.
type Tree interface {
	// HostChildren yields the host's direct children in tree order.
	//
	// Only element and text children are yielded; comments and other node
	// kinds never take part in distribution.
	HostChildren() iter.Seq[Node]

	// SlotElements yields the slot elements of the shadow tree in depth-first
	// tree order. The walk must not descend into nested shadow trees.
	SlotElements() iter.Seq[SlotElement]
}

// IsLive reports whether a slot element reference can still be used.
//
// Nil references and elements reporting that they left their shadow tree are
// not live.
//
// Parameters:
//   - slot: Slot element reference to check (may be nil)
//
// Returns:
//   - bool: true if the element exists and is still in its shadow tree
func IsLive(slot SlotElement) bool {
	if slot == nil {
		return false
	}
	if l, ok := slot.(Liveness); ok {
		return l.InShadowTree()
	}

	return true
}

// SameNode reports whether two nodes share an identity. Nil nodes only match nil.
func SameNode(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.NodeID() == b.NodeID()
}
