package slots

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/shadowslot/domtree"
	"github.com/arloliu/shadowslot/internal/fingerprint"
	"github.com/arloliu/shadowslot/types"
)

func TestNew(t *testing.T) {
	t.Run("requires a tree", func(t *testing.T) {
		_, err := New(&Config{})
		require.ErrorIs(t, err, types.ErrTreeRequired)
	})

	t.Run("starts stale with the default record", func(t *testing.T) {
		f := newFixture(t)

		stats := f.engine.Stats()
		require.True(t, stats.Stale())
		require.Equal(t, 1, stats.Records)
		require.Equal(t, []string{types.DefaultSlotName}, f.engine.Names())
	})
}

func TestEngine_DefaultAssignment(t *testing.T) {
	f := newFixture(t)

	c1 := f.child("")
	text := f.doc.CreateText("hello")
	require.NoError(t, f.host.AppendChild(text))
	named := f.child("x")

	_, ok := f.engine.AssignedSlot(c1)
	require.False(t, ok, "no default slot element yet")

	def := f.slot("", nil)

	slot, ok := f.engine.AssignedSlot(c1)
	require.True(t, ok)
	require.Equal(t, def.NodeID(), slot.NodeID())
	require.Equal(t, idsOf(c1, text), f.assigned(def))

	_, ok = f.engine.AssignedSlot(named)
	require.False(t, ok, "no slot named x")

	_, ok = f.engine.AssignedSlot(nil)
	require.False(t, ok)

	f.requireConsistent()
}

func TestEngine_FirstInTreeOrderWins(t *testing.T) {
	t.Run("registration order does not matter", func(t *testing.T) {
		f := newFixture(t)
		c := f.child("x")
		a := f.slot("x", nil)
		b := f.slot("x", nil)

		require.Equal(t, 2, f.engine.SlotCount("x"))
		canonical, ok := f.engine.CanonicalSlot("x")
		require.True(t, ok)
		require.Equal(t, a.NodeID(), canonical.NodeID())
		require.Equal(t, idsOf(c), f.assigned(a))

		_, ok = f.engine.AssignedNodes(b)
		require.False(t, ok, "non-canonical duplicates never receive nodes")

		early := f.doc.CreateSlot("x")
		require.NoError(t, f.root.InsertBefore(early, a))

		canonical, ok = f.engine.CanonicalSlot("x")
		require.True(t, ok)
		require.Equal(t, early.NodeID(), canonical.NodeID())
		require.Equal(t, 3, f.engine.SlotCount("x"))

		require.NoError(t, f.root.RemoveChild(early))
		require.NoError(t, f.root.RemoveChild(a))

		canonical, ok = f.engine.CanonicalSlot("x")
		require.True(t, ok)
		require.Equal(t, b.NodeID(), canonical.NodeID())
		require.Equal(t, 1, f.engine.SlotCount("x"))
		require.Equal(t, idsOf(c), f.assigned(b))

		slot, ok := f.engine.AssignedSlot(c)
		require.True(t, ok)
		require.Equal(t, b.NodeID(), slot.NodeID())

		f.requireConsistent()
	})

	t.Run("depth first", func(t *testing.T) {
		f := newFixture(t)
		wrapper := f.doc.CreateElement("div")
		require.NoError(t, f.root.AppendChild(wrapper))
		later := f.slot("x", nil)
		nested := f.slot("x", wrapper)

		canonical, ok := f.engine.CanonicalSlot("x")
		require.True(t, ok)
		require.Equal(t, nested.NodeID(), canonical.NodeID())

		_, ok = f.engine.AssignedNodes(later)
		require.False(t, ok)
	})

	t.Run("nested shadow trees are not searched", func(t *testing.T) {
		f := newFixture(t)
		inner := f.doc.CreateElement("x-inner")
		require.NoError(t, f.root.AppendChild(inner))
		innerRoot, err := f.doc.AttachShadow(inner)
		require.NoError(t, err)
		require.NoError(t, innerRoot.AppendChild(f.doc.CreateSlot("x")))

		require.Zero(t, f.engine.SlotCount("x"))
		_, ok := f.engine.CanonicalSlot("x")
		require.False(t, ok)
	})

	t.Run("subtree insertion registers every slot", func(t *testing.T) {
		f := newFixture(t)
		wrapper := f.doc.CreateElement("div")
		first := f.doc.CreateSlot("x")
		second := f.doc.CreateSlot("x")
		require.NoError(t, wrapper.AppendChild(first))
		require.NoError(t, wrapper.AppendChild(second))
		require.NoError(t, f.root.AppendChild(wrapper))

		require.Equal(t, 2, f.engine.SlotCount("x"))
		canonical, ok := f.engine.CanonicalSlot("x")
		require.True(t, ok)
		require.Equal(t, first.NodeID(), canonical.NodeID())

		require.NoError(t, f.root.RemoveChild(wrapper))
		require.Zero(t, f.engine.SlotCount("x"))
		f.requireConsistent()
	})
}

func TestEngine_Rename(t *testing.T) {
	f := newFixture(t)
	ca := f.child("a")
	cb := f.child("b")
	e := f.slot("a", nil)

	require.Equal(t, []string{"a"}, f.engine.DrainChangedNames())
	require.Equal(t, idsOf(ca), f.assigned(e))

	e.SetAttribute(domtree.NameAttr, "b")

	require.Zero(t, f.engine.SlotCount("a"))
	require.Equal(t, 1, f.engine.SlotCount("b"))
	_, ok := f.engine.CanonicalSlot("a")
	require.False(t, ok)
	require.Equal(t, []string{"a", "b"}, f.engine.DrainChangedNames())

	require.Equal(t, idsOf(cb), f.assigned(e))
	_, ok = f.engine.AssignedSlot(ca)
	require.False(t, ok)

	t.Run("removing the name attribute renames to default", func(t *testing.T) {
		e.RemoveAttribute(domtree.NameAttr)

		require.Zero(t, f.engine.SlotCount("b"))
		require.Equal(t, 1, f.engine.SlotCount(types.DefaultSlotName))
		require.Equal(t, []string{"", "b"}, f.engine.DrainChangedNames())
		require.Empty(t, f.assigned(e))
	})

	f.requireConsistent()
}

func TestEngine_BulkRemoval(t *testing.T) {
	for _, n := range []int{1, 10, 500} {
		t.Run(fmt.Sprintf("children=%d", n), func(t *testing.T) {
			f := newFixture(t)
			sx := f.slot("x", nil)
			sy := f.slot("y", nil)
			f.slot("z", nil)
			def := f.slot("", nil)

			want := make(map[string]struct{})
			names := []string{"x", "y", ""}
			for i := range n {
				name := names[i%len(names)]
				f.child(name)
				want[name] = struct{}{}
			}
			require.NotEmpty(t, f.engine.DrainChangedNames())
			before := f.engine.Stats()

			f.host.RemoveAllChildren()

			changed := f.engine.DrainChangedNames()
			after := f.engine.Stats()

			require.Len(t, changed, len(want))
			for _, name := range changed {
				require.Contains(t, want, name)
			}
			require.NotContains(t, changed, "z")

			// One hook call and one pass, whatever the number of children.
			require.Equal(t, before.MutationVersion+1, after.MutationVersion)
			require.Equal(t, before.AssignmentPasses+1, after.AssignmentPasses)

			for _, s := range []*domtree.Node{sx, sy, def} {
				require.Empty(t, f.assigned(s))
			}
			require.Empty(t, f.engine.DrainChangedNames())
			f.requireConsistent()
		})
	}

	t.Run("insertion after remove-all falls back to diffing", func(t *testing.T) {
		f := newFixture(t)
		sx := f.slot("x", nil)
		f.child("x")
		f.child("y")
		f.engine.DrainChangedNames()

		f.host.RemoveAllChildren()
		c := f.child("x")

		require.Equal(t, []string{"x"}, f.engine.DrainChangedNames())
		require.Equal(t, idsOf(c), f.assigned(sx))
	})
}

func TestEngine_IdempotentResolution(t *testing.T) {
	f := newFixture(t)
	s := f.slot("x", nil)
	c := f.child("x")

	f.assigned(s)
	first := f.engine.Stats()
	require.False(t, first.Stale())

	f.assigned(s)
	f.engine.AssignedSlot(c)
	f.engine.CanonicalSlot("x")
	f.engine.Fingerprint()
	f.engine.DrainChangedNames()

	second := f.engine.Stats()
	require.Equal(t, first.ElementResolutions, second.ElementResolutions)
	require.Equal(t, first.AssignmentPasses, second.AssignmentPasses)

	t.Run("a batch of mutations costs one resolution", func(t *testing.T) {
		for range 20 {
			f.slot("y", nil)
		}
		require.True(t, f.engine.Stats().Stale())
		before := f.engine.Stats()

		f.engine.CanonicalSlot("y")
		f.engine.CanonicalSlot("y")
		after := f.engine.Stats()

		require.Equal(t, before.ElementResolutions+1, after.ElementResolutions)
		require.Equal(t, before.AssignmentPasses+1, after.AssignmentPasses)
	})
}

func TestEngine_OrderPreservation(t *testing.T) {
	f := newFixture(t)
	s := f.slot("s", nil)
	c1, c2, c3 := f.child(""), f.child(""), f.child("")

	for _, c := range []*domtree.Node{c3, c1, c2} {
		c.SetAttribute(domtree.SlotAttr, "s")
	}

	require.Equal(t, idsOf(c1, c2, c3), f.assigned(s))

	t.Run("reorder counts as a change", func(t *testing.T) {
		f.engine.DrainChangedNames()
		require.NoError(t, f.host.InsertBefore(c3, c1))

		require.Equal(t, []string{"s"}, f.engine.DrainChangedNames())
		require.Equal(t, idsOf(c3, c1, c2), f.assigned(s))
	})
}

func TestEngine_Coalescing(t *testing.T) {
	f := newFixture(t)
	c := f.child("s")
	require.Empty(t, f.engine.DrainChangedNames())

	s := f.slot("s", nil)
	s.SetAttribute(domtree.NameAttr, "t")
	s.SetAttribute(domtree.NameAttr, "s")

	batch := f.engine.DrainNotifications()
	require.Len(t, batch, 2)

	require.Equal(t, "s", batch[0].Name)
	require.Equal(t, s.NodeID(), batch[0].Slot.NodeID())
	require.Equal(t, idsOf(c), batch[0].Nodes)

	require.Equal(t, "t", batch[1].Name)
	require.Equal(t, s.NodeID(), batch[1].Slot.NodeID(), "dispatched at the element that left the name")
	require.Empty(t, batch[1].Nodes)

	require.Empty(t, f.engine.DrainChangedNames())
	require.Zero(t, f.engine.Stats().PendingNotifications)
}

func TestEngine_FallbackChanged(t *testing.T) {
	t.Run("reported while the slot renders nothing", func(t *testing.T) {
		f := newFixture(t)
		s := f.slot("x", nil)
		f.engine.DrainChangedNames()

		require.NoError(t, s.AppendChild(f.doc.CreateText("fallback")))

		batch := f.engine.DrainNotifications()
		require.Len(t, batch, 1)
		require.Equal(t, "x", batch[0].Name)
		require.Equal(t, s.NodeID(), batch[0].Slot.NodeID())
	})

	t.Run("ignored while the slot renders nodes", func(t *testing.T) {
		f := newFixture(t)
		s := f.slot("x", nil)
		f.child("x")
		f.engine.DrainChangedNames()

		require.NoError(t, s.AppendChild(f.doc.CreateText("fallback")))

		require.Empty(t, f.engine.DrainChangedNames())
	})

	t.Run("duplicate is the dispatch target", func(t *testing.T) {
		f := newFixture(t)
		f.slot("x", nil)
		dup := f.slot("x", nil)
		c := f.child("x")
		f.engine.DrainChangedNames()

		require.NoError(t, dup.AppendChild(f.doc.CreateText("fallback")))

		batch := f.engine.DrainNotifications()
		require.Len(t, batch, 1)
		require.Equal(t, dup.NodeID(), batch[0].Slot.NodeID())
		require.Equal(t, idsOf(c), batch[0].Nodes)
	})

	t.Run("unregistered slot is ignored", func(t *testing.T) {
		f := newFixture(t)
		f.engine.FallbackChanged(f.doc.CreateSlot("x"))
		require.Empty(t, f.engine.DrainChangedNames())
	})

	t.Run("edits are deferred until a read", func(t *testing.T) {
		f := newFixture(t)
		s := f.slot("x", nil)
		for range 50 {
			f.child("")
		}
		f.engine.DrainChangedNames()

		passes := f.engine.Stats().AssignmentPasses
		for range 100 {
			require.NoError(t, s.AppendChild(f.doc.CreateText("fallback")))
			f.child("")
		}
		require.Equal(t, passes, f.engine.Stats().AssignmentPasses)

		batch := f.engine.DrainNotifications()
		require.Equal(t, passes+1, f.engine.Stats().AssignmentPasses)
		require.Len(t, batch, 2)
		require.Equal(t, types.DefaultSlotName, batch[0].Name)
		require.Len(t, batch[0].Nodes, 150)
		require.Equal(t, "x", batch[1].Name)
		require.Equal(t, s.NodeID(), batch[1].Slot.NodeID())
	})
}

func TestEngine_UnregisterUnknownIsNoop(t *testing.T) {
	f := newFixture(t)
	s := f.slot("a", nil)
	stray := f.doc.CreateSlot("a")

	f.engine.RemoveSlot("a", stray, nil)
	f.engine.RemoveSlot("b", s, f.root)

	require.Equal(t, 1, f.engine.SlotCount("a"))
	require.Zero(t, f.engine.SlotCount("b"))
	canonical, ok := f.engine.CanonicalSlot("a")
	require.True(t, ok)
	require.Equal(t, s.NodeID(), canonical.NodeID())
	f.requireConsistent()
}

func TestEngine_DuplicateRegistration(t *testing.T) {
	f := newFixture(t)
	s := f.slot("a", nil)

	f.engine.AddSlot("a", s)
	f.engine.AddSlot("b", s)

	require.Equal(t, 1, f.engine.SlotCount("a"))
	require.Zero(t, f.engine.SlotCount("b"))
	require.Len(t, f.log.Entries("WARN"), 2)
	require.NoError(t, f.engine.CheckConsistency())
}

func TestEngine_DidChangeSlot(t *testing.T) {
	f := newFixture(t)
	f.engine.DrainChangedNames()

	f.engine.DidChangeSlot(types.DefaultSlotName)
	f.engine.DidChangeSlot("unknown")

	require.Equal(t, []string{""}, f.engine.DrainChangedNames())
}

func TestEngine_HostChildChanged(t *testing.T) {
	f := newFixture(t)
	c := f.child("")
	f.slot("", nil)
	f.engine.DrainChangedNames()
	before := f.engine.Stats().MutationVersion

	c.SetAttribute("class", "highlight")

	require.Equal(t, before+1, f.engine.Stats().MutationVersion)
	require.Empty(t, f.engine.DrainChangedNames())
}

func TestEngine_EveryHookBumpsOnce(t *testing.T) {
	f := newFixture(t)
	s := f.slot("a", nil)
	c := f.child("")

	hooks := map[string]func(){
		"AddSlot":                       func() { f.engine.AddSlot("x", f.doc.CreateSlot("x")) },
		"RemoveSlot":                    func() { f.engine.RemoveSlot("zz", s, nil) },
		"RenameSlot":                    func() { f.engine.RenameSlot(f.doc.CreateSlot("q"), "q", "r") },
		"FallbackChanged":               func() { f.engine.FallbackChanged(s) },
		"BeforeHostChildrenChange":      f.engine.BeforeHostChildrenChange,
		"WillRemoveAllHostChildren":     f.engine.WillRemoveAllHostChildren,
		"HostChildChanged":              func() { f.engine.HostChildChanged(c) },
		"HostChildSlotAttributeChanged": func() { f.engine.HostChildSlotAttributeChanged(c, "", "a") },
		"DidChangeSlot":                 func() { f.engine.DidChangeSlot("a") },
	}

	for name, hook := range hooks {
		t.Run(name, func(t *testing.T) {
			before := f.engine.Stats().MutationVersion
			hook()
			require.Equal(t, before+1, f.engine.Stats().MutationVersion)
		})
	}
}

func TestEngine_DisabledNotifications(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.DisableNotifications = true })
	s := f.slot("x", nil)
	c := f.child("x")
	require.NoError(t, s.AppendChild(f.doc.CreateText("fallback")))

	require.Empty(t, f.engine.DrainChangedNames())
	require.Equal(t, idsOf(c), f.assigned(s))
}

func TestEngine_PruneEmptyRecords(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		f := newFixture(t, func(c *Config) { c.PruneEmptyRecords = true })
		s := f.slot("tmp", nil)
		_, ok := f.engine.CanonicalSlot("tmp")
		require.True(t, ok)

		require.NoError(t, f.root.RemoveChild(s))
		_, ok = f.engine.CanonicalSlot("tmp")
		require.False(t, ok)

		require.Equal(t, []string{types.DefaultSlotName}, f.engine.Names())
		f.requireConsistent()
	})

	t.Run("disabled keeps records", func(t *testing.T) {
		f := newFixture(t)
		s := f.slot("tmp", nil)
		require.NoError(t, f.root.RemoveChild(s))
		f.engine.CanonicalSlot("tmp")

		require.Equal(t, []string{types.DefaultSlotName, "tmp"}, f.engine.Names())
		info, ok := f.engine.Describe("tmp")
		require.True(t, ok)
		require.True(t, info.FirstSeen, "resolved once, then cleared")
		require.Nil(t, info.Canonical)
	})
}

func TestEngine_DetachedHost(t *testing.T) {
	f := newDetachedFixture(t)
	first := f.slot("x", nil)
	second := f.slot("x", nil)
	c := f.child("x")
	d := f.child("")

	require.Equal(t, idsOf(c), f.assigned(first))
	_, ok := f.engine.AssignedNodes(second)
	require.False(t, ok, "duplicate renders nothing")
	slot, ok := f.engine.AssignedSlot(d)
	require.True(t, ok)
	require.Nil(t, slot, "no default slot element yet")

	stats := f.engine.Stats()
	require.False(t, stats.Stale())
	for range 3 {
		require.Equal(t, idsOf(c), f.assigned(first))
		_, _ = f.engine.CanonicalSlot("x")
		_ = f.engine.Fingerprint()
	}
	after := f.engine.Stats()
	require.Equal(t, stats.ElementResolutions, after.ElementResolutions)
	require.Equal(t, stats.AssignmentPasses, after.AssignmentPasses)

	require.NoError(t, f.root.RemoveChild(first))
	require.Equal(t, idsOf(c), f.assigned(second))

	require.NoError(t, f.doc.Body().AppendChild(f.host))
	require.Equal(t, idsOf(c), f.assigned(second), "inserting the host changes nothing")
	f.requireConsistent()
}

func TestEngine_CanonicalLeftShadowTree(t *testing.T) {
	f := newFixture(t)
	first := f.slot("x", nil)
	second := f.slot("x", nil)
	c := f.child("x")
	require.Equal(t, idsOf(c), f.assigned(first))

	// The owning tree drops the element without unregistering it.
	f.root.SetDistributor(nil)
	require.NoError(t, f.root.RemoveChild(first))
	f.root.SetDistributor(f.engine)

	resolutions := f.engine.Stats().ElementResolutions
	canonical, ok := f.engine.CanonicalSlot("x")
	require.True(t, ok, "idle reads do not rescan")
	require.Equal(t, first.NodeID(), canonical.NodeID())
	require.Equal(t, resolutions, f.engine.Stats().ElementResolutions)

	f.engine.HostChildChanged(c)

	canonical, ok = f.engine.CanonicalSlot("x")
	require.True(t, ok)
	require.Equal(t, second.NodeID(), canonical.NodeID())
	require.Equal(t, idsOf(c), f.assigned(second))
	require.Equal(t, resolutions+1, f.engine.Stats().ElementResolutions)
}

func TestEngine_Describe(t *testing.T) {
	f := newFixture(t)
	a := f.slot("x", nil)
	f.slot("x", nil)
	c := f.child("x")

	info, ok := f.engine.Describe("x")
	require.True(t, ok)
	require.Equal(t, "x", info.Name)
	require.Equal(t, 2, info.Count)
	require.True(t, info.Duplicated)
	require.True(t, info.FirstSeen)
	require.Equal(t, a.NodeID(), info.Canonical.NodeID())
	require.Equal(t, idsOf(c), info.Assigned)

	_, ok = f.engine.Describe("missing")
	require.False(t, ok)
}

func TestEngine_Fingerprint(t *testing.T) {
	f := newFixture(t)
	f.slot("s", nil)
	c1, c2 := f.child("s"), f.child("s")

	initial := f.engine.Fingerprint()
	require.Equal(t, initial, f.engine.Fingerprint())

	require.NoError(t, f.host.InsertBefore(c2, c1))
	reordered := f.engine.Fingerprint()
	require.NotEqual(t, initial, reordered)

	require.NoError(t, f.host.InsertBefore(c1, c2))
	require.Equal(t, initial, f.engine.Fingerprint())
}

func TestEngine_FingerprintSeparatesCanonicalFromNodes(t *testing.T) {
	f := newFixture(t)
	s := f.slot("x", nil)
	c := f.child("x")

	want := fingerprint.New(0)
	want.WriteRecord("x", s, []types.Node{c})
	require.Equal(t, want.Sum(), f.engine.Fingerprint())

	// The same IDs with the canonical element read as an assigned node.
	flat := fingerprint.New(0)
	flat.WriteRecord("x", nil, []types.Node{s, c})
	require.NotEqual(t, flat.Sum(), f.engine.Fingerprint())
}

func TestEngine_CheckConsistency(t *testing.T) {
	f := newFixture(t)
	f.slot("x", nil)
	f.child("x")
	require.NoError(t, f.engine.CheckConsistency())

	f.engine.records["x"].count = 3

	err := f.engine.CheckConsistency()
	require.Error(t, err)
	require.ErrorIs(t, err, types.ErrConsistency)

	t.Run("checked mutations log the violation", func(t *testing.T) {
		f.engine.DidChangeSlot("x")
		f.engine.AddSlot("y", f.doc.CreateSlot("y"))

		require.NotEmpty(t, f.log.Entries("WARN"))
	})

	t.Run("assignment errors", func(t *testing.T) {
		g := newFixture(t)
		s := g.slot("x", nil)
		c1, c2 := g.child("x"), g.child("x")
		g.assigned(s)

		g.engine.records["x"].assigned = []types.Node{c2, c1}

		err := g.engine.CheckConsistency()
		require.ErrorIs(t, err, types.ErrConsistency)
		require.Contains(t, err.Error(), "not in tree order")

		var joined interface{ Unwrap() []error }
		require.True(t, errors.As(err, &joined))
	})
}
