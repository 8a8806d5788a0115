package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/shadowslot/domtree"
	"github.com/arloliu/shadowslot/strategy"
	"github.com/arloliu/shadowslot/types"
)

func buildTree(t *testing.T) (*domtree.Document, *domtree.Node, *domtree.Node) {
	t.Helper()

	doc := domtree.NewDocument()
	host := doc.CreateElement("x-card")
	require.NoError(t, doc.Body().AppendChild(host))
	root, err := doc.AttachShadow(host)
	require.NoError(t, err)

	return doc, host, root
}

func TestExpect(t *testing.T) {
	doc, host, root := buildTree(t)

	wrapper := doc.CreateElement("div")
	first := doc.CreateSlot("a")
	second := doc.CreateSlot("a")
	def := doc.CreateSlot("")
	require.NoError(t, root.AppendChild(wrapper))
	require.NoError(t, wrapper.AppendChild(first))
	require.NoError(t, root.AppendChild(second))
	require.NoError(t, root.AppendChild(def))

	c1 := doc.CreateElement("span")
	c1.SetAttribute(domtree.SlotAttr, "a")
	c2 := doc.CreateText("text")
	c3 := doc.CreateElement("span")
	c3.SetAttribute(domtree.SlotAttr, "missing")
	for _, c := range []*domtree.Node{c1, c2, c3} {
		require.NoError(t, host.AppendChild(c))
	}

	exp := Expect(root, strategy.NewAttribute())

	require.Equal(t, map[string]types.NodeID{"a": first.NodeID(), "": def.NodeID()}, exp.Canonical)
	require.Equal(t, []types.NodeID{second.NodeID()}, exp.Duplicates)
	require.Equal(t, []types.NodeID{c1.NodeID()}, exp.Nodes["a"])
	require.Equal(t, []types.NodeID{c2.NodeID()}, exp.Nodes[""])
	require.Equal(t, []types.NodeID{c3.NodeID()}, exp.Unassigned)
	require.Equal(t, first.NodeID(), exp.SlotOf[c1.NodeID()])
}

func TestChangedNames(t *testing.T) {
	before := Expected{
		Canonical: map[string]types.NodeID{"a": 1, "b": 2, "c": 3},
		Nodes:     map[string][]types.NodeID{"a": {10}, "b": {}, "c": {11, 12}},
	}
	after := Expected{
		Canonical: map[string]types.NodeID{"a": 4, "b": 5, "c": 3},
		Nodes:     map[string][]types.NodeID{"a": {10}, "b": {}, "c": {12, 11}},
	}

	// "a" changed canonical element, "b" is empty on both sides, "c" reordered.
	require.Equal(t, []string{"a", "c"}, ChangedNames(before, after))
	require.Empty(t, ChangedNames(after, after))
}

func TestExpected_Visible(t *testing.T) {
	exp := Expected{Nodes: map[string][]types.NodeID{"a": {1}}}

	visible := exp.Visible()
	visible["a"][0] = 9

	require.Equal(t, types.NodeID(1), exp.Nodes["a"][0])
}
