package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testNode struct {
	id     NodeID
	name   string
	inTree bool
}

func (n *testNode) NodeID() NodeID     { return n.id }
func (n *testNode) SlotName() string   { return n.name }
func (n *testNode) InShadowTree() bool { return n.inTree }

type plainSlot struct{ id NodeID }

func (s plainSlot) NodeID() NodeID   { return s.id }
func (s plainSlot) SlotName() string { return "" }

func TestIsLive(t *testing.T) {
	t.Run("nil is not live", func(t *testing.T) {
		require.False(t, IsLive(nil))
	})

	t.Run("element outside its shadow tree is not live", func(t *testing.T) {
		require.False(t, IsLive(&testNode{id: 1}))
		require.True(t, IsLive(&testNode{id: 1, inTree: true}))
	})

	t.Run("element without liveness is live", func(t *testing.T) {
		require.True(t, IsLive(plainSlot{id: 7}))
	})
}

func TestSameNode(t *testing.T) {
	a := &testNode{id: 1}
	b := &testNode{id: 1}
	c := &testNode{id: 2}

	require.True(t, SameNode(a, b))
	require.False(t, SameNode(a, c))
	require.False(t, SameNode(a, nil))
	require.True(t, SameNode(nil, nil))
}

func TestNameResolverFunc(t *testing.T) {
	r := NameResolverFunc(func(child Node) string {
		if child.NodeID() == 1 {
			return "header"
		}

		return DefaultSlotName
	})

	require.Equal(t, "header", r.SlotNameFor(&testNode{id: 1}))
	require.Equal(t, DefaultSlotName, r.SlotNameFor(&testNode{id: 2}))
}

func TestStatsStale(t *testing.T) {
	require.False(t, Stats{MutationVersion: 3, ResolvedVersion: 3}.Stale())
	require.True(t, Stats{MutationVersion: 4, ResolvedVersion: 3}.Stale())
}

func TestNotificationSlotID(t *testing.T) {
	id, ok := Notification{Name: "x"}.SlotID()
	require.False(t, ok)
	require.Zero(t, id)

	id, ok = Notification{Name: "x", Slot: plainSlot{id: 9}}.SlotID()
	require.True(t, ok)
	require.Equal(t, NodeID(9), id)
}
