// Package shadowslot distributes the children of a shadow host to the slot
// elements of its shadow tree.
//
// A shadow tree declares named slots; the host's children ask for a slot by
// name. shadowslot keeps, for every name, the canonical slot element (the
// first in tree order when a name is declared more than once) and the
// ordered list of host children rendered through it. Mutations of either
// tree are reported through cheap hooks; the assignment is recomputed
// lazily, once per batch of mutations, on the next query. Every name whose
// observable assignment changed is coalesced into exactly one slotchange
// notification per drain.
//
// # Quick Start
//
//	doc := domtree.NewDocument()
//	host := doc.CreateElement("x-card")
//	doc.Body().AppendChild(host)
//	root, _ := doc.AttachShadow(host)
//
//	sa, err := shadowslot.New(root, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	root.SetDistributor(sa)
//
//	title := doc.CreateSlot("title")
//	root.AppendChild(title)
//
//	h := doc.CreateElement("h2")
//	h.SetAttribute("slot", "title")
//	host.AppendChild(h)
//
//	nodes, _ := sa.AssignedNodes(title) // [h]
//	names := sa.DrainChangedNames()     // ["title"]
//
// # Key Features
//
//   - Lazy resolution: mutations only bump a version; queries resolve once
//   - Duplicate slot names: the first element in tree order wins
//   - Bulk removal fast path: removing every host child clears each name
//     without re-walking the shadow tree
//   - Coalesced notifications with a dispatch target per name
//   - Pluggable name policies (package strategy)
//   - Dispatchers for hooks, in-process subscribers, NATS subjects and
//     JetStream KV snapshots (package notify)
//
// # Ownership
//
// A SlotAssignment belongs to exactly one shadow tree and is driven by the
// goroutine that mutates that tree. Directory creates assignments lazily for
// many roots and is safe for concurrent use across documents.
//
// # Configuration
//
// See Config for options. DefaultConfig enables notifications and leaves
// record pruning and consistency checks off. LoadConfig reads the same
// structure from YAML.
package shadowslot
