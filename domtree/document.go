package domtree

import (
	"errors"
	"slices"

	"github.com/arloliu/shadowslot/types"
)

var (
	// ErrHierarchy is returned when an insertion would create a cycle or
	// attach a node somewhere it cannot live.
	ErrHierarchy = errors.New("hierarchy request error")

	// ErrNotFound is returned when a reference node is not a child of the parent.
	ErrNotFound = errors.New("node not found")

	// ErrShadowAttached is returned when a host already has a shadow root.
	ErrShadowAttached = errors.New("shadow root already attached")
)

// Document creates nodes and hands out their identities.
type Document struct {
	root   *Node
	body   *Node
	nextID types.NodeID
}

// NewDocument creates a document with a body element.
func NewDocument() *Document {
	d := &Document{}
	d.root = d.newNode(DocumentNode, "")
	d.body = d.CreateElement("body")
	d.root.children = []*Node{d.body}
	d.body.parent = d.root

	return d
}

// Root returns the document node.
func (d *Document) Root() *Node { return d.root }

// Body returns the body element.
func (d *Document) Body() *Node { return d.body }

func (d *Document) newNode(kind Kind, tag string) *Node {
	d.nextID++

	return &Node{id: d.nextID, kind: kind, tag: tag}
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) *Node {
	n := d.newNode(ElementNode, tag)
	n.attrs = make(map[string]string)

	return n
}

// CreateText creates a detached text node.
func (d *Document) CreateText(text string) *Node {
	n := d.newNode(TextNode, "")
	n.text = text

	return n
}

// CreateComment creates a detached comment node.
func (d *Document) CreateComment(text string) *Node {
	n := d.newNode(CommentNode, "")
	n.text = text

	return n
}

// CreateSlot creates a detached slot element. An empty name creates a
// default slot without a name attribute.
func (d *Document) CreateSlot(name string) *Node {
	n := d.CreateElement(SlotTag)
	if name != "" {
		n.attrs[NameAttr] = name
	}

	return n
}

// AttachShadow attaches a new shadow root to host.
//
// Returns:
//   - *Node: The shadow root (implements types.Tree)
//   - error: ErrShadowAttached if host already has one, ErrHierarchy if host is not an element
func (d *Document) AttachShadow(host *Node) (*Node, error) {
	if host.kind != ElementNode {
		return nil, ErrHierarchy
	}
	if host.shadow != nil {
		return nil, ErrShadowAttached
	}
	root := d.newNode(ShadowRootNode, "")
	root.host = host
	host.shadow = root

	return root, nil
}

// SetDistributor wires the slot assignment of a shadow root.
func (n *Node) SetDistributor(dist Distributor) {
	n.distributor = dist
}

// Distributor returns the slot assignment wired to a shadow root, or nil.
func (n *Node) Distributor() Distributor {
	return n.distributor
}

// hostDistributor returns the distributor of the shadow root attached to n
// when n is a shadow host.
func (n *Node) hostDistributor() Distributor {
	if n.shadow == nil {
		return nil
	}

	return n.shadow.distributor
}

// treeDistributor returns the distributor of the shadow tree n lives in.
func (n *Node) treeDistributor() (Distributor, *Node) {
	var root *Node
	if n.kind == ShadowRootNode {
		root = n
	} else {
		root = n.ContainingShadowRoot()
	}
	if root == nil || root.distributor == nil {
		return nil, nil
	}

	return root.distributor, root
}

func distributes(n *Node) bool {
	return n.kind == ElementNode || n.kind == TextNode
}

// AppendChild appends child to n, detaching it from its previous parent.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertBefore(child, nil)
}

// InsertBefore inserts child before ref (append when ref is nil).
func (n *Node) InsertBefore(child, ref *Node) error {
	if child.kind == DocumentNode || child.kind == ShadowRootNode || child.Contains(n) {
		return ErrHierarchy
	}
	if ref != nil && ref.parent != n {
		return ErrNotFound
	}
	if child == ref {
		return nil
	}
	if child.parent != nil {
		if err := child.parent.RemoveChild(child); err != nil {
			return err
		}
	}

	if dist := n.hostDistributor(); dist != nil && distributes(child) {
		dist.BeforeHostChildrenChange()
	}

	idx := len(n.children)
	if ref != nil {
		idx = slices.Index(n.children, ref)
	}
	n.children = slices.Insert(n.children, idx, child)
	child.parent = n

	if dist, _ := n.treeDistributor(); dist != nil {
		for _, slot := range child.inclusiveSlots() {
			dist.AddSlot(slot.SlotName(), slot)
		}
		if n.IsSlot() {
			dist.FallbackChanged(n)
		}
	}

	return nil
}

// RemoveChild detaches child from n.
func (n *Node) RemoveChild(child *Node) error {
	idx := slices.Index(n.children, child)
	if idx < 0 {
		return ErrNotFound
	}

	if dist := n.hostDistributor(); dist != nil && distributes(child) {
		dist.BeforeHostChildrenChange()
	}

	n.children = slices.Delete(n.children, idx, idx+1)
	child.parent = nil

	if dist, _ := n.treeDistributor(); dist != nil {
		for _, slot := range child.inclusiveSlots() {
			dist.RemoveSlot(slot.SlotName(), slot, n)
		}
		if n.IsSlot() {
			dist.FallbackChanged(n)
		}
	}

	return nil
}

// RemoveAllChildren detaches every child of n in one operation.
//
// On a shadow host the slot assignment is told once, up front, and no
// per-child hook runs.
func (n *Node) RemoveAllChildren() {
	if len(n.children) == 0 {
		return
	}
	if dist := n.hostDistributor(); dist != nil {
		dist.WillRemoveAllHostChildren()
	}

	removed := n.children
	n.children = nil
	for _, c := range removed {
		c.parent = nil
	}

	if dist, _ := n.treeDistributor(); dist != nil {
		for _, c := range removed {
			for _, slot := range c.inclusiveSlots() {
				dist.RemoveSlot(slot.SlotName(), slot, n)
			}
		}
		if n.IsSlot() {
			dist.FallbackChanged(n)
		}
	}
}

// SetAttribute sets an element attribute and runs the slot hooks it implies.
func (n *Node) SetAttribute(name, value string) {
	if n.kind != ElementNode {
		return
	}
	old, had := n.attrs[name]
	if had && old == value {
		return
	}
	n.attrs[name] = value
	n.attributeChanged(name, old, value)
}

// RemoveAttribute removes an element attribute and runs the slot hooks it implies.
func (n *Node) RemoveAttribute(name string) {
	old, had := n.attrs[name]
	if !had {
		return
	}
	delete(n.attrs, name)
	n.attributeChanged(name, old, "")
}

func (n *Node) attributeChanged(name, oldValue, newValue string) {
	if n.IsSlot() && name == NameAttr {
		if dist, _ := n.treeDistributor(); dist != nil && oldValue != newValue {
			dist.RenameSlot(n, oldValue, newValue)
		}
	}

	if n.parent == nil {
		return
	}
	dist := n.parent.hostDistributor()
	if dist == nil {
		return
	}
	if name == SlotAttr {
		dist.HostChildSlotAttributeChanged(n, oldValue, newValue)
		return
	}
	dist.HostChildChanged(n)
}
