package slots

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/shadowslot/domtree"
	"github.com/arloliu/shadowslot/internal/logger"
	"github.com/arloliu/shadowslot/types"
)

// fixture is a host with an attached shadow root whose mutation hooks feed
// an engine. The host is in the document unless built with newDetachedFixture.
type fixture struct {
	t      testing.TB
	doc    *domtree.Document
	host   *domtree.Node
	root   *domtree.Node
	engine *Engine
	log    *logger.TestLogger
}

func newFixture(t testing.TB, configure ...func(*Config)) *fixture {
	t.Helper()
	return buildFixture(t, true, configure)
}

// newDetachedFixture builds the shadow tree on a host that was never
// inserted into the document.
func newDetachedFixture(t testing.TB, configure ...func(*Config)) *fixture {
	t.Helper()
	return buildFixture(t, false, configure)
}

func buildFixture(t testing.TB, attach bool, configure []func(*Config)) *fixture {
	t.Helper()

	doc := domtree.NewDocument()
	host := doc.CreateElement("x-host")
	if attach {
		require.NoError(t, doc.Body().AppendChild(host))
	}
	root, err := doc.AttachShadow(host)
	require.NoError(t, err)

	log := logger.NewTest(t)
	cfg := &Config{Tree: root, Logger: log, ConsistencyChecks: true}
	for _, fn := range configure {
		fn(cfg)
	}

	engine, err := New(cfg)
	require.NoError(t, err)
	root.SetDistributor(engine)

	return &fixture{t: t, doc: doc, host: host, root: root, engine: engine, log: log}
}

// slot appends a slot element named name to parent (the shadow root if nil).
func (f *fixture) slot(name string, parent *domtree.Node) *domtree.Node {
	f.t.Helper()
	if parent == nil {
		parent = f.root
	}
	s := f.doc.CreateSlot(name)
	require.NoError(f.t, parent.AppendChild(s))

	return s
}

// child appends an element host child asking for name ("" = no attribute).
func (f *fixture) child(name string) *domtree.Node {
	f.t.Helper()
	c := f.doc.CreateElement("span")
	if name != "" {
		c.SetAttribute(domtree.SlotAttr, name)
	}
	require.NoError(f.t, f.host.AppendChild(c))

	return c
}

func (f *fixture) assigned(slot *domtree.Node) []types.NodeID {
	f.t.Helper()
	nodes, ok := f.engine.AssignedNodes(slot)
	require.True(f.t, ok, "slot %d has no assignment", slot.NodeID())

	return nodeIDs(nodes)
}

func (f *fixture) requireConsistent() {
	f.t.Helper()
	require.NoError(f.t, f.engine.CheckConsistency())
	require.Empty(f.t, f.log.Entries("WARN"))
}

func idsOf(nodes ...*domtree.Node) []types.NodeID {
	out := make([]types.NodeID, len(nodes))
	for i, n := range nodes {
		out[i] = n.NodeID()
	}

	return out
}
