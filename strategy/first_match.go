package strategy

import "github.com/arloliu/shadowslot/types"

// FirstMatch routes the first host child matching a predicate to one named
// slot and every other child to the default slot.
//
// This is how a disclosure widget distributes its content: the first summary
// child is rendered by the summary slot, any later summary children fall
// into the body with the rest.
type FirstMatch struct {
	tree  types.Tree
	name  string
	match func(types.Node) bool
}

var _ types.NameResolver = (*FirstMatch)(nil)

// NewFirstMatch creates a first-match policy.
//
// Parameters:
//   - tree: Shadow tree whose host children are searched for the first match
//   - name: Slot name the first matching child asks for
//   - match: Predicate selecting candidate children
//
// Returns:
//   - *FirstMatch: Initialized policy
//
// Example:
//
//	summary := strategy.NewFirstMatch(root, "summary", func(n types.Node) bool {
//	    el, ok := n.(*domtree.Node)
//	    return ok && el.Tag() == "summary"
//	})
func NewFirstMatch(tree types.Tree, name string, match func(types.Node) bool) *FirstMatch {
	return &FirstMatch{tree: tree, name: name, match: match}
}

// SlotNameFor returns the policy's name for the first matching child and the
// default slot name for everything else.
func (f *FirstMatch) SlotNameFor(child types.Node) string {
	if !f.match(child) {
		return types.DefaultSlotName
	}
	for c := range f.tree.HostChildren() {
		if !f.match(c) {
			continue
		}
		if c.NodeID() == child.NodeID() {
			return f.name
		}

		break
	}

	return types.DefaultSlotName
}
