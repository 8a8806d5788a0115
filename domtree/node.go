package domtree

import (
	"iter"
	"slices"

	"github.com/arloliu/shadowslot/types"
)

// Kind is the kind of a node.
type Kind int

const (
	// ElementNode is an element with a tag and attributes.
	ElementNode Kind = iota
	// TextNode carries character data.
	TextNode
	// CommentNode never takes part in distribution.
	CommentNode
	// ShadowRootNode is the root of a shadow tree attached to a host.
	ShadowRootNode
	// DocumentNode is the document root.
	DocumentNode
)

const (
	// SlotTag is the tag of slot elements.
	SlotTag = "slot"
	// SlotAttr is the attribute host children declare their slot name in.
	SlotAttr = "slot"
	// NameAttr is the attribute slot elements declare their name in.
	NameAttr = "name"
)

// Distributor receives the mutation hooks of one shadow root.
//
// *shadowslot.SlotAssignment satisfies it.
type Distributor interface {
	AddSlot(name string, slot types.SlotElement)
	RemoveSlot(name string, slot types.SlotElement, formerParent types.Node)
	RenameSlot(slot types.SlotElement, oldName, newName string)
	FallbackChanged(slot types.SlotElement)
	BeforeHostChildrenChange()
	WillRemoveAllHostChildren()
	HostChildChanged(child types.Node)
	HostChildSlotAttributeChanged(child types.Node, oldName, newName string)
}

// Node is a node of the tree.
type Node struct {
	id       types.NodeID
	kind     Kind
	tag      string
	text     string
	attrs    map[string]string
	parent   *Node
	children []*Node

	// shadow is the attached shadow root (hosts only).
	shadow *Node
	// host is the owning host (shadow roots only).
	host *Node
	// distributor receives hooks (shadow roots only).
	distributor Distributor
}

var (
	_ types.SlotElement    = (*Node)(nil)
	_ types.SlotAttributer = (*Node)(nil)
	_ types.Liveness       = (*Node)(nil)
	_ types.Tree           = (*Node)(nil)
)

// NodeID returns the node's stable identity.
func (n *Node) NodeID() types.NodeID { return n.id }

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Tag returns the element tag ("" for non-elements).
func (n *Node) Tag() string { return n.tag }

// Text returns the character data of text and comment nodes.
func (n *Node) Text() string { return n.text }

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// ShadowRoot returns the attached shadow root, or nil.
func (n *Node) ShadowRoot() *Node { return n.shadow }

// Host returns the host of a shadow root, or nil.
func (n *Node) Host() *Node { return n.host }

// IsSlot reports whether n is a slot element.
func (n *Node) IsSlot() bool {
	return n.kind == ElementNode && n.tag == SlotTag
}

// Attribute returns an attribute value and whether it is present.
func (n *Node) Attribute(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// SlotName returns a slot element's name attribute.
func (n *Node) SlotName() string {
	v, _ := n.Attribute(NameAttr)
	return v
}

// SlotAttribute returns the slot attribute of an element. Text nodes have none.
func (n *Node) SlotAttribute() (string, bool) {
	if n.kind != ElementNode {
		return "", false
	}

	return n.Attribute(SlotAttr)
}

// IsConnected reports whether n is attached to the document, directly or
// through shadow roots of connected hosts.
func (n *Node) IsConnected() bool {
	for cur := n; cur != nil; {
		switch cur.kind {
		case DocumentNode:
			return true
		case ShadowRootNode:
			cur = cur.host
		default:
			cur = cur.parent
		}
	}

	return false
}

// InShadowTree reports whether n is a descendant of a shadow root. It does
// not depend on the host being attached to the document.
func (n *Node) InShadowTree() bool {
	return n.ContainingShadowRoot() != nil
}

// ContainingShadowRoot returns the shadow root whose tree holds n, or nil.
func (n *Node) ContainingShadowRoot() *Node {
	for cur := n.parent; cur != nil; cur = cur.parent {
		if cur.kind == ShadowRootNode {
			return cur
		}
	}

	return nil
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}

	return false
}

// HostChildren yields the host's element and text children in tree order.
//
// Only meaningful on shadow roots.
func (n *Node) HostChildren() iter.Seq[types.Node] {
	return func(yield func(types.Node) bool) {
		if n.host == nil {
			return
		}
		for _, c := range n.host.children {
			if c.kind != ElementNode && c.kind != TextNode {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// SlotElements yields the slot elements under n in depth-first tree order.
//
// The walk never enters attached shadow roots, so nested shadow trees are
// not visited.
func (n *Node) SlotElements() iter.Seq[types.SlotElement] {
	return func(yield func(types.SlotElement) bool) {
		for d := range n.descendants() {
			if d.IsSlot() && !yield(d) {
				return
			}
		}
	}
}

// descendants yields n's descendants in tree order (not n itself).
func (n *Node) descendants() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		var walk func(*Node) bool
		walk = func(p *Node) bool {
			for _, c := range p.children {
				if !yield(c) || !walk(c) {
					return false
				}
			}

			return true
		}
		walk(n)
	}
}

// inclusiveSlots returns n itself (if a slot) and its slot descendants in tree order.
func (n *Node) inclusiveSlots() []*Node {
	var out []*Node
	if n.IsSlot() {
		out = append(out, n)
	}
	for d := range n.descendants() {
		if d.IsSlot() {
			out = append(out, d)
		}
	}

	return out
}
