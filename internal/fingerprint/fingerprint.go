// Package fingerprint computes compact digests of slot assignments.
package fingerprint

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/xxh3"

	"github.com/arloliu/shadowslot/types"
)

const (
	tagNoCanonical uint64 = iota
	tagCanonical
)

// Digest accumulates an order-sensitive xxh3 digest.
//
// Each fed value uses the running hash as the seed for the next one, so the
// digest changes when the same members appear in a different order.
type Digest struct {
	h uint64
}

// New creates a digest with the given seed.
func New(seed uint64) *Digest {
	return &Digest{h: seed}
}

// WriteName folds a slot name into the digest.
func (d *Digest) WriteName(name string) {
	d.h = xxh3.HashStringSeed(name, d.h)
	// Length separator so ("ab","") and ("a","b") never collide structurally.
	d.writeUint(uint64(len(name)))
}

// WriteNode folds a node identity into the digest.
func (d *Digest) WriteNode(id types.NodeID) {
	d.writeUint(uint64(id))
}

// WriteRecord folds one slot record into the digest: its name, its canonical
// element (nil when there is none) and its assigned nodes. A tag and the
// list length separate the fields, so the canonical element never reads as
// an assigned node.
func (d *Digest) WriteRecord(name string, canonical types.Node, nodes []types.Node) {
	d.WriteName(name)
	if canonical == nil {
		d.writeUint(tagNoCanonical)
	} else {
		d.writeUint(tagCanonical)
		d.WriteNode(canonical.NodeID())
	}
	d.writeUint(uint64(len(nodes)))
	for _, n := range nodes {
		d.WriteNode(n.NodeID())
	}
}

// Sum returns the current digest value.
func (d *Digest) Sum() uint64 {
	return d.h
}

func (d *Digest) writeUint(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	d.h = xxh3.HashSeed(b[:], d.h)
}

// Nodes returns the digest of one ordered assignment list.
//
// Parameters:
//   - name: Slot name owning the list
//   - nodes: Assigned nodes in tree order
//
// Returns:
//   - uint64: Order-sensitive digest of (name, nodes)
func Nodes(name string, nodes []types.Node) uint64 {
	d := New(0)
	d.WriteName(name)
	d.writeUint(uint64(len(nodes)))
	for _, n := range nodes {
		d.WriteNode(n.NodeID())
	}

	return d.Sum()
}

// NameKey returns a NATS-safe key fragment for an arbitrary slot name.
//
// Slot names are opaque, case-sensitive strings that may contain characters
// not allowed in KV keys or subjects, so they are hashed to 16 hex digits.
// The default slot maps to the literal "default".
//
// Parameters:
//   - name: Slot name
//
// Returns:
//   - string: Key fragment matching [0-9a-f]{16} or "default"
func NameKey(name string) string {
	if name == types.DefaultSlotName {
		return "default"
	}

	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxh3.HashString(name))

	return hex.EncodeToString(b[:])
}
