package slots

import "github.com/arloliu/shadowslot/types"

// pendingChange is the coalesced state of one changed name.
type pendingChange struct {
	target types.SlotElement
	pinned bool // target was chosen explicitly and must not be replaced
}

// coalescer accumulates the names whose observable assignment changed since
// the last drain. Marking a name any number of times yields one entry.
type coalescer struct {
	pending map[string]pendingChange
}

func newCoalescer() *coalescer {
	return &coalescer{pending: make(map[string]pendingChange)}
}

func (c *coalescer) mark(name string, target types.SlotElement, pinned bool) {
	cur, ok := c.pending[name]
	switch {
	case !ok:
		c.pending[name] = pendingChange{target: target, pinned: pinned}
	case pinned && !cur.pinned:
		c.pending[name] = pendingChange{target: target, pinned: true}
	case cur.target == nil && target != nil:
		cur.target = target
		c.pending[name] = cur
	}
}

func (c *coalescer) size() int {
	return len(c.pending)
}

// take returns the accumulated changes and resets the coalescer.
func (c *coalescer) take() map[string]pendingChange {
	if len(c.pending) == 0 {
		return nil
	}
	p := c.pending
	c.pending = make(map[string]pendingChange, len(p))

	return p
}
