// Package domtree is a small in-memory document tree that owns shadow roots
// and drives slot assignment the way a document implementation does.
//
// It implements every collaborator contract the slot assignment needs:
// stable node identity, tree-order traversal of host children and of a
// shadow tree's slot elements (without entering nested shadow trees), the
// slot attribute of host children, and element connectivity. Every
// structural mutation calls the matching hook on the shadow root's
// Distributor before or after it happens.
//
// The package is used by the tests, the slotsim command and the examples;
// it is not meant to be a general DOM.
//
// Example:
//
//	doc := domtree.NewDocument()
//	host := doc.CreateElement("x-card")
//	doc.Body().AppendChild(host)
//
//	root, _ := doc.AttachShadow(host)
//	sa, _ := shadowslot.New(root, nil)
//	root.SetDistributor(sa)
//
//	root.AppendChild(doc.CreateSlot("title"))
//	h := doc.CreateElement("h2")
//	h.SetAttribute("slot", "title")
//	host.AppendChild(h)
package domtree
