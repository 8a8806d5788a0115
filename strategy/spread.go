package strategy

import (
	"github.com/arloliu/shadowslot/internal/hash"
	"github.com/arloliu/shadowslot/types"
)

// Spread distributes children that do not name a slot over a fixed set of
// slots using a consistent hash ring keyed by node identity.
//
// Children that carry a non-empty slot attribute keep it. Text children are
// spread like unnamed elements.
type Spread struct {
	ring         *hash.Ring
	explicit     *Attribute
	virtualNodes int
	hashSeed     uint64
}

var _ types.NameResolver = (*Spread)(nil)

// SpreadOption configures a Spread policy.
type SpreadOption func(*Spread)

// NewSpread creates a spread policy over names.
//
// Parameters:
//   - names: Slot names to spread over (e.g. column slots)
//   - opts: Optional configuration (WithVirtualNodes, WithHashSeed)
//
// Returns:
//   - *Spread: Initialized policy
//   - error: ErrNoNames if names is empty
//
// Example:
//
//	policy, err := strategy.NewSpread([]string{"col-0", "col-1", "col-2"},
//	    strategy.WithVirtualNodes(64),
//	)
func NewSpread(names []string, opts ...SpreadOption) (*Spread, error) {
	if len(names) == 0 {
		return nil, ErrNoNames
	}

	s := &Spread{
		explicit:     NewAttribute(),
		virtualNodes: 150,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ring = hash.NewRing(names, s.virtualNodes, s.hashSeed)

	return s, nil
}

// WithVirtualNodes sets the number of ring points per slot name.
//
// Higher values give a smoother spread at the cost of memory (default: 150).
func WithVirtualNodes(n int) SpreadOption {
	return func(s *Spread) {
		if n > 0 {
			s.virtualNodes = n
		}
	}
}

// WithHashSeed sets the ring's hash seed.
func WithHashSeed(seed uint64) SpreadOption {
	return func(s *Spread) {
		s.hashSeed = seed
	}
}

// Names returns the names the policy spreads over.
func (s *Spread) Names() []string {
	return s.ring.Names()
}

// SlotNameFor returns the child's explicit slot name, or its ring position.
func (s *Spread) SlotNameFor(child types.Node) string {
	if name := s.explicit.SlotNameFor(child); name != types.DefaultSlotName {
		return name
	}

	return s.ring.NameFor(child.NodeID())
}
