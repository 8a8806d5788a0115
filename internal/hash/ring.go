// Package hash places slot names on a consistent hash ring.
package hash

import (
	"cmp"
	"encoding/binary"
	"slices"

	"github.com/zeebo/xxh3"

	"github.com/arloliu/shadowslot/types"
)

// Ring maps node identities to slot names with consistent hashing.
//
// Adding or removing a name only moves the nodes that hashed next to it, so
// spread layouts keep most children in place when a column is added.
type Ring struct {
	// points contains every virtual point on the ring, sorted by hash
	points []point

	// names holds the unique names on the ring in insertion order
	names []string

	seed uint64
}

type point struct {
	hash uint64
	name string
}

// NewRing creates a ring of names.
//
// Parameters:
//   - names: Slot names to place on the ring (duplicates are ignored)
//   - virtualNodes: Points per name (higher = smoother distribution)
//   - seed: Hash seed (0 = unseeded)
//
// Returns:
//   - *Ring: Initialized ring
//
// Example:
//
//	ring := hash.NewRing([]string{"col-0", "col-1", "col-2"}, 64, 0)
//	name := ring.NameFor(child.NodeID())
func NewRing(names []string, virtualNodes int, seed uint64) *Ring {
	r := &Ring{seed: seed}

	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		r.names = append(r.names, n)
	}

	r.points = make([]point, 0, len(r.names)*virtualNodes)
	for _, n := range r.names {
		r.addName(n, virtualNodes)
	}
	slices.SortFunc(r.points, func(a, b point) int {
		return cmp.Compare(a.hash, b.hash)
	})

	return r
}

// NameFor returns the name responsible for a node, or "" on an empty ring.
func (r *Ring) NameFor(id types.NodeID) string {
	if len(r.points) == 0 {
		return ""
	}

	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(id))

	return r.nameByHash(xxh3.HashSeed(b[:], r.seed))
}

// NameForKey returns the name responsible for an arbitrary string key.
func (r *Ring) NameForKey(key string) string {
	if len(r.points) == 0 {
		return ""
	}

	return r.nameByHash(xxh3.HashStringSeed(key, r.seed))
}

// Names returns a copy of the names on the ring.
func (r *Ring) Names() []string {
	return slices.Clone(r.names)
}

// Size returns the total number of points on the ring.
func (r *Ring) Size() int {
	return len(r.points)
}

func (r *Ring) addName(name string, virtualNodes int) {
	h := xxh3.HashStringSeed(name, r.seed)
	for i := range virtualNodes {
		var ib [8]byte
		binary.LittleEndian.PutUint64(ib[:], uint64(i)) //nolint:gosec
		r.points = append(r.points, point{hash: xxh3.HashSeed(ib[:], h), name: name})
	}
}

// nameByHash returns the owner of the first point at or after target,
// wrapping around to the first point.
func (r *Ring) nameByHash(target uint64) string {
	idx, _ := slices.BinarySearchFunc(r.points, target, func(p point, t uint64) int {
		return cmp.Compare(p.hash, t)
	})
	if idx >= len(r.points) {
		idx = 0
	}

	return r.points[idx].name
}
